package dataset

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/events"
)

// ReloadListener is notified after a changed snapshot has been swapped in
type ReloadListener interface {
	DatasetReloaded(ctx context.Context, ds *Dataset) error
}

// ReloadResult describes the outcome of a reload
type ReloadResult struct {
	Info    Info `json:"dataset"`
	Changed bool `json:"changed"`
	// ListenerErrors lists listeners that failed after the snapshot was swapped in
	ListenerErrors []string `json:"listener_errors,omitempty"`
}

// Service owns the current snapshot and reloads it from its source
type Service struct {
	loader    *Loader
	source    Source
	store     *Store
	repo      *Repository
	events    *events.Manager
	log       zerolog.Logger
	mu        sync.Mutex
	listeners []ReloadListener
}

// NewService creates a dataset service. repo and eventManager may be nil.
func NewService(loader *Loader, source Source, store *Store, repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		loader: loader,
		source: source,
		store:  store,
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("service", "dataset").Logger(),
	}
}

// AddListener registers a listener for changed snapshots
func (s *Service) AddListener(l ReloadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Current returns the current snapshot
func (s *Service) Current() (*Dataset, error) {
	return s.store.Current()
}

// History returns the recent load history, or nothing without a repository
func (s *Service) History(ctx context.Context, limit int) ([]LoadRecord, error) {
	if s.repo == nil {
		return []LoadRecord{}, nil
	}
	return s.repo.Recent(ctx, limit)
}

// Reload loads the source and swaps the snapshot in when its content changed.
// On failure the previous snapshot stays current. Listener failures do not fail
// the reload; they are reported in ListenerErrors.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.loader.Load(ctx, s.source)
	if err != nil {
		s.emitFailure(err)
		return ReloadResult{}, err
	}

	if prev, err := s.store.Current(); err == nil && prev.Fingerprint == ds.Fingerprint {
		s.log.Debug().Str("fingerprint", ds.Fingerprint).Msg("Dataset unchanged")
		return ReloadResult{Info: prev.Info(), Changed: false}, nil
	}

	result := ReloadResult{Info: ds.Info(), Changed: true}
	for _, err := range s.install(ctx, ds) {
		result.ListenerErrors = append(result.ListenerErrors, err.Error())
	}
	return result, nil
}

// Install swaps in an already prepared snapshot, as Reload does for a changed source
func (s *Service) Install(ctx context.Context, ds *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.install(ctx, ds)...)
}

func (s *Service) install(ctx context.Context, ds *Dataset) []error {
	s.store.Swap(ds)

	if s.repo != nil {
		if err := s.repo.Record(ctx, ds); err != nil {
			s.log.Error().Err(err).Str("snapshot_id", ds.ID).Msg("Failed to record dataset load")
		}
	}

	var errs []error
	for _, l := range s.listeners {
		if err := l.DatasetReloaded(ctx, ds); err != nil {
			s.log.Error().Err(err).Msg("Dataset reload listener failed")
			errs = append(errs, err)
		}
	}

	if s.events != nil {
		s.events.EmitTyped("dataset", &events.DatasetReloadedData{
			SnapshotID:  ds.ID,
			Source:      ds.Source,
			Fingerprint: ds.Fingerprint,
			Rows:        len(ds.Records),
			Warnings:    len(ds.Warnings),
			Changed:     true,
		})
	}

	s.log.Info().
		Str("snapshot_id", ds.ID).
		Int("rows", len(ds.Records)).
		Msg("Dataset snapshot installed")

	return errs
}

func (s *Service) emitFailure(err error) {
	s.log.Error().Err(err).Str("source", s.source.Name()).Msg("Dataset reload failed")
	if s.events == nil {
		return
	}

	data := &events.DatasetLoadFailedData{Source: s.source.Name(), Error: err.Error()}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		data.MissingColumns = schemaErr.Missing
	}
	s.events.EmitTyped("dataset", data)
}
