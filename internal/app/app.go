package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chooser-bench/internal/alerting"
	"chooser-bench/internal/backtest"
	"chooser-bench/internal/config"
	"chooser-bench/internal/marketdata"
	"chooser-bench/internal/pricing"
	"chooser-bench/internal/scheduler"
	"chooser-bench/internal/service"
	"chooser-bench/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// loadSeries reads the processed dataset and applies the boundary-layer
// fallback rate so the pricing core only ever sees complete rows.
func (a *App) loadSeries() (*marketdata.Series, error) {
	series, err := marketdata.LoadCSV(a.Config.Data.DatasetPath)
	if err != nil {
		return nil, err
	}
	if a.Config.Option.FallbackRate >= 0 {
		if filled := series.FillMissingRates(a.Config.Option.FallbackRate); filled > 0 {
			a.Logger.Warn().Int("rows", filled).
				Float64("rate", a.Config.Option.FallbackRate).
				Msg("filled missing treasury rates with fallback")
		}
	}
	return series, nil
}

// newPricer resolves the configured valuation method.
func (a *App) newPricer() pricing.Pricer {
	if a.Config.Pricing.Method == "analytic" {
		return pricing.AnalyticPricer{}
	}
	return pricing.MonteCarloPricer{
		Paths:  a.Config.Pricing.Paths,
		Seed:   a.Config.Pricing.Seed,
		Policy: a.Config.ExercisePolicy(),
	}
}

func (a *App) backtestParams() backtest.Params {
	opt := a.Config.Option
	return backtest.Params{
		Strike:        opt.Strike,
		T1Years:       opt.T1Years,
		T2Years:       opt.T2Years,
		T1Offset:      opt.T1OffsetDays,
		T2Offset:      opt.T2OffsetDays,
		DividendYield: opt.DividendYield,
		Policy:        a.Config.ExercisePolicy(),
	}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running revaluation service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Monitor.Interval,
		AlignToStart: a.Config.Monitor.AlignToBucket,
	}, a.Logger)

	notifier := a.newNotifier()

	var valuationStore storage.ValuationStore
	var alertStore storage.AlertStore
	if store != nil {
		valuationStore = store
		alertStore = store
	}

	svc := service.New(a.Config, sched, a.loadSeries, valuationStore, alertStore, notifier, a.Logger)

	a.Logger.Info().Msg("starting revaluation service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("revaluation service stopped")
	return nil
}

// PriceOptions configure a one-off valuation. An empty Date prices the most
// recent trading day in the dataset.
type PriceOptions struct {
	Date string
}

// BacktestOptions bound the backtest window; zero values mean the whole
// dataset.
type BacktestOptions struct {
	From *time.Time
	To   *time.Time
}

// ExportOptions hold parameters for exporting the backtest sample.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// SimulateOptions override the scenario for an ad-hoc path simulation.
type SimulateOptions struct {
	Spot  float64
	Sigma float64
	Rate  float64
	Paths int
}
