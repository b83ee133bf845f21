package backtest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/aristath/propensity/internal/events"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/profile"
)

// DatasetProvider returns the current dataset snapshot
type DatasetProvider interface {
	Current() (*dataset.Dataset, error)
}

// ServiceOptions configures the backtest service
type ServiceOptions struct {
	TopN         int
	HoldingYears int
}

// Service computes backtests over the current snapshot and caches them
type Service struct {
	datasets DatasetProvider
	cache    Cache
	events   *events.Manager
	opts     ServiceOptions
	group    singleflight.Group
	log      zerolog.Logger
}

// NewService creates a backtest service. eventManager may be nil.
func NewService(datasets DatasetProvider, cache Cache, eventManager *events.Manager, opts ServiceOptions, log zerolog.Logger) *Service {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.HoldingYears <= 0 {
		opts.HoldingYears = DefaultHoldingYears
	}
	return &Service{
		datasets: datasets,
		cache:    cache,
		events:   eventManager,
		opts:     opts,
		log:      log.With().Str("service", "backtest").Logger(),
	}
}

// HoldingYears returns the configured holding period used by Summarize
func (s *Service) HoldingYears() int {
	return s.opts.HoldingYears
}

// Backtest returns the outcome for cat over the current snapshot, from the
// cache when possible. Concurrent identical requests share one computation.
func (s *Service) Backtest(ctx context.Context, cat profile.Category) (*Outcome, error) {
	if !cat.Valid() {
		return nil, profile.ErrUnknownCategory
	}
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	return s.backtest(ctx, ds, cat)
}

func (s *Service) backtest(ctx context.Context, ds *dataset.Dataset, cat profile.Category) (*Outcome, error) {
	key := Key{Fingerprint: ds.Fingerprint, Category: cat}

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key.String()).Msg("Backtest cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do(key.String(), func() (interface{}, error) {
		outcome := Run(ds, cat, Options{TopN: s.opts.TopN})

		for _, w := range outcome.Warnings {
			s.log.Debug().Str("code", w.Code).Str("category", cat.Code()).Msg(w.Message)
		}
		if err := s.cache.Put(ctx, key, outcome); err != nil {
			s.log.Warn().Err(err).Str("key", key.String()).Msg("Backtest cache write failed")
		}

		if s.events != nil {
			s.events.EmitTyped("backtest", &events.BacktestComputedData{
				Category:        cat.Code(),
				Fingerprint:     ds.Fingerprint,
				Years:           len(outcome.Years),
				Recommendations: len(outcome.Recommendations),
			})
		}
		return outcome, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Outcome), nil
}

// Recommendations returns the latest-year recommendations for an eligible category
func (s *Service) Recommendations(ctx context.Context, cat profile.Category) ([]Recommendation, error) {
	if err := profile.CheckEligible(cat); err != nil {
		return nil, err
	}
	outcome, err := s.Backtest(ctx, cat)
	if err != nil {
		return nil, err
	}
	return outcome.Recommendations, nil
}

// Purge drops every cached outcome
func (s *Service) Purge(ctx context.Context, reason string) (int64, error) {
	removed, err := s.cache.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge backtest cache: %w", err)
	}
	if s.events != nil {
		s.events.EmitTyped("backtest", &events.CachePurgedData{Reason: reason, Removed: removed})
	}
	s.log.Info().Int64("removed", removed).Str("reason", reason).Msg("Backtest cache purged")
	return removed, nil
}

// Warm computes and caches the outcome of every eligible category for ds
func (s *Service) Warm(ctx context.Context, ds *dataset.Dataset) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range profile.Categories() {
		if profile.CheckEligible(cat) != nil {
			continue
		}
		cat := cat
		g.Go(func() error {
			_, err := s.backtest(gctx, ds, cat)
			return err
		})
	}
	return g.Wait()
}

// DatasetReloaded drops outcomes of other snapshots and warms the new one.
// Outcomes already cached for ds survive, so a restart on unchanged data
// starts warm.
func (s *Service) DatasetReloaded(ctx context.Context, ds *dataset.Dataset) error {
	removed, err := s.cache.DeleteStale(ctx, ds.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to invalidate backtest cache: %w", err)
	}
	if removed > 0 {
		if s.events != nil {
			s.events.EmitTyped("backtest", &events.CachePurgedData{Reason: "dataset_reloaded", Removed: removed})
		}
		s.log.Info().Int64("removed", removed).Str("fingerprint", ds.Fingerprint).Msg("Stale backtest outcomes removed")
	}
	return s.Warm(ctx, ds)
}
