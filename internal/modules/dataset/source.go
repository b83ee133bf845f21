package dataset

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source supplies the raw bytes of a dataset
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads a dataset from the local filesystem
type FileSource struct {
	Path string
}

// Name returns the file path
func (s FileSource) Name() string {
	return s.Path
}

// Fetch reads the whole file
func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

// S3Config configures access to an S3-compatible object store
type S3Config struct {
	Region          string
	Endpoint        string // empty for AWS; set for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectDownloader is the subset of the transfer manager used by S3Source
type ObjectDownloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Source downloads a dataset object from a bucket
type S3Source struct {
	Bucket     string
	Key        string
	downloader ObjectDownloader
}

// NewS3Source builds an S3 client from cfg and returns a source for bucket/key
func NewS3Source(ctx context.Context, bucket, key string, cfg S3Config) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3SourceWithDownloader(bucket, key, manager.NewDownloader(client)), nil
}

// NewS3SourceWithDownloader wires a source to an existing downloader
func NewS3SourceWithDownloader(bucket, key string, d ObjectDownloader) *S3Source {
	return &S3Source{Bucket: bucket, Key: key, downloader: d}
}

// Name returns the s3:// URI; its extension selects the parser
func (s *S3Source) Name() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// Fetch downloads the object into memory
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.Name(), err)
	}
	return buf.Bytes(), nil
}

// NewSource resolves a dataset location: a local path or s3://bucket/key
func NewSource(ctx context.Context, location string, cfg S3Config) (Source, error) {
	if !strings.HasPrefix(location, "s3://") {
		return FileSource{Path: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset location %q: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || path.Ext(key) == "" {
		return nil, fmt.Errorf("dataset location %q must be s3://bucket/key.ext", location)
	}
	return NewS3Source(ctx, u.Host, key, cfg)
}
