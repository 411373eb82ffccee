package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"chooser-bench/internal/alerting"
	"chooser-bench/internal/config"
	"chooser-bench/internal/marketdata"
	"chooser-bench/internal/pricing"
	"chooser-bench/internal/scheduler"
	"chooser-bench/internal/storage"
)

// SeriesLoader supplies a fresh feature table on each tick; the collectors
// upstream append new trading days between runs.
type SeriesLoader func() (*marketdata.Series, error)

// Service orchestrates the revaluation loop: reload data, price the latest
// trading day with both methods, persist, and alert on model divergence.
type Service struct {
	scheduler  *scheduler.Scheduler
	loader     SeriesLoader
	store      storage.ValuationStore
	alertStore storage.AlertStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	option    config.OptionConfig
	pricerCfg config.PricingConfig
	policy    pricing.ExercisePolicy
	threshold float64
	channels  []string
	alertsOn  bool
	locker    storage.AdvisoryLocker
	lockKey   int64
}

// New constructs the revaluation service.
func New(cfg *config.Config, sched *scheduler.Scheduler, loader SeriesLoader, store storage.ValuationStore, alertStore storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	threshold := 0.0
	if cfg.Alerting.Enabled && cfg.Alerting.DivergencePct > 0 {
		threshold = cfg.Alerting.DivergencePct
	}

	return &Service{
		scheduler:  sched,
		loader:     loader,
		store:      store,
		alertStore: alertStore,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		option:     cfg.Option,
		pricerCfg:  cfg.Pricing,
		policy:     cfg.ExercisePolicy(),
		threshold:  threshold,
		channels:   cfg.Alerting.Channels,
		alertsOn:   cfg.Alerting.Enabled,
		locker:     locker,
		lockKey:    cfg.Monitor.AdvisoryLockKey,
	}
}

// Run begins the aligned revaluation loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessBucket)
}

// ProcessBucket revalues the latest trading day for a single time bucket.
func (s *Service) ProcessBucket(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeBucket(ctx, bucket)
}

func (s *Service) executeBucket(ctx context.Context, bucket time.Time) error {
	series, err := s.loader()
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	if series.Len() == 0 {
		return fmt.Errorf("series is empty")
	}
	if s.option.FallbackRate >= 0 {
		if filled := series.FillMissingRates(s.option.FallbackRate); filled > 0 {
			s.logger.Warn().Int("rows", filled).Float64("rate", s.option.FallbackRate).Msg("filled missing rates with fallback")
		}
	}

	latest := series.Len() - 1
	snap, err := series.Snapshot(latest, s.option.Strike, s.option.T1Years, s.option.T2Years, s.option.DividendYield)
	if err != nil {
		return fmt.Errorf("snapshot latest row: %w", err)
	}

	mc := pricing.MonteCarloPricer{Paths: s.pricerCfg.Paths, Seed: s.pricerCfg.Seed, Policy: s.policy}
	mcResult, err := mc.Price(snap)
	if err != nil {
		return fmt.Errorf("monte carlo valuation: %w", err)
	}

	analytic, err := pricing.RubinsteinPrice(snap)
	if err != nil {
		return fmt.Errorf("analytic valuation: %w", err)
	}

	divergence := 0.0
	if analytic != 0 {
		divergence = (mcResult.Price - analytic) / analytic * 100
		if divergence < 0 {
			divergence = -divergence
		}
	}

	date := series.Row(latest).Date
	if s.store != nil {
		rec := storage.ValuationRecord{
			Bucket:        bucket,
			ValuationDate: date,
			Spot:          decimal.NewFromFloat(snap.Spot),
			Strike:        decimal.NewFromFloat(snap.Strike),
			Sigma:         decimal.NewFromFloat(snap.Sigma),
			Rate:          decimal.NewFromFloat(snap.Rate),
			MCPrice:       decimal.NewFromFloat(mcResult.Price),
			MCStdErr:      decimal.NewFromFloat(mcResult.StdErr),
			CallRatio:     decimal.NewFromFloat(mcResult.CallRatio),
			AnalyticPrice: decimal.NewFromFloat(analytic),
			Policy:        s.policy.String(),
			Paths:         mcResult.Paths,
			Status:        "complete",
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.store.UpsertValuation(ctx, rec); err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("failed to upsert valuation")
		}
	}

	s.logger.Info().Time("bucket", bucket).
		Time("valuation_date", date).
		Float64("mc_price", mcResult.Price).
		Float64("analytic_price", analytic).
		Float64("divergence_pct", divergence).
		Msg("valuation recorded")

	if s.alertsOn && s.notifier != nil && s.threshold > 0 && divergence > s.threshold {
		note := alerting.Notification{
			Bucket:        bucket,
			ValuationDate: date,
			Spot:          decimal.NewFromFloat(snap.Spot),
			MCPrice:       decimal.NewFromFloat(mcResult.Price),
			AnalyticPrice: decimal.NewFromFloat(analytic),
			DivergencePct: decimal.NewFromFloat(divergence),
			ThresholdPct:  decimal.NewFromFloat(s.threshold),
			Policy:        s.policy.String(),
			Channels:      s.channels,
		}
		if s.alertStore != nil {
			alert := storage.DivergenceAlert{
				Bucket:        bucket,
				DivergencePct: decimal.NewFromFloat(divergence),
				ThresholdPct:  decimal.NewFromFloat(s.threshold),
				Channels:      s.channels,
			}
			if _, err := s.alertStore.InsertDivergenceAlert(ctx, alert); err != nil {
				s.logger.Error().Err(err).Time("bucket", bucket).Msg("failed to persist divergence alert")
			}
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("failed to dispatch divergence alert")
		}
	}

	return nil
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
