package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertValuationSQL = `INSERT INTO valuations (
        bucket_ts,
        valuation_date,
        spot,
        strike,
        sigma,
        rate,
        mc_price,
        mc_stderr,
        call_ratio,
        analytic_price,
        policy,
        paths,
        status,
        error
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
    )
    ON CONFLICT (bucket_ts) DO UPDATE
    SET
        valuation_date = EXCLUDED.valuation_date,
        spot           = EXCLUDED.spot,
        strike         = EXCLUDED.strike,
        sigma          = EXCLUDED.sigma,
        rate           = EXCLUDED.rate,
        mc_price       = EXCLUDED.mc_price,
        mc_stderr      = EXCLUDED.mc_stderr,
        call_ratio     = EXCLUDED.call_ratio,
        analytic_price = EXCLUDED.analytic_price,
        policy         = EXCLUDED.policy,
        paths          = EXCLUDED.paths,
        status         = EXCLUDED.status,
        error          = EXCLUDED.error;`

	listRecentValuationsSQL = `SELECT
        bucket_ts,
        valuation_date,
        spot,
        strike,
        sigma,
        rate,
        mc_price,
        mc_stderr,
        call_ratio,
        analytic_price,
        policy,
        paths,
        status,
        error,
        created_at
    FROM valuations
    ORDER BY bucket_ts DESC
    LIMIT $1;`

	countValuationsSQL = `SELECT COUNT(*) FROM valuations;`

	insertDivergenceAlertSQL = `INSERT INTO divergence_alerts (
        bucket_ts,
        divergence_pct,
        threshold_pct,
        channels
    ) VALUES (
        $1,$2,$3,$4
    )
    ON CONFLICT (bucket_ts) DO UPDATE
    SET divergence_pct = EXCLUDED.divergence_pct,
        threshold_pct  = EXCLUDED.threshold_pct,
        channels       = EXCLUDED.channels
    RETURNING id, bucket_ts, divergence_pct, threshold_pct, channels, created_at;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ValuationStore defines operations for valuation persistence.
type ValuationStore interface {
	UpsertValuation(ctx context.Context, rec ValuationRecord) error
	ListRecentValuations(ctx context.Context, limit int) ([]ValuationRecord, error)
	CountValuations(ctx context.Context) (int64, error)
}

// AlertStore defines operations for divergence-alert auditing.
type AlertStore interface {
	InsertDivergenceAlert(ctx context.Context, alert DivergenceAlert) (DivergenceAlert, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to valuations and divergence alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// unlock is best effort; the connection release cleans up regardless
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertValuation persists or updates a valuation record.
func (s *Store) UpsertValuation(ctx context.Context, rec ValuationRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	var errMsg interface{}
	if rec.Error != nil {
		errMsg = *rec.Error
	}

	_, execErr := pool.Exec(ctx, upsertValuationSQL,
		rec.Bucket,
		rec.ValuationDate,
		rec.Spot.String(),
		rec.Strike.String(),
		rec.Sigma.String(),
		rec.Rate.String(),
		rec.MCPrice.String(),
		rec.MCStdErr.String(),
		rec.CallRatio.String(),
		rec.AnalyticPrice.String(),
		rec.Policy,
		rec.Paths,
		rec.Status,
		errMsg,
	)
	if execErr != nil {
		return fmt.Errorf("upsert valuation: %w", execErr)
	}
	return nil
}

// ListRecentValuations lists the most recent valuations ordered by descending bucket.
func (s *Store) ListRecentValuations(ctx context.Context, limit int) ([]ValuationRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentValuationsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent valuations: %w", queryErr)
	}
	defer rows.Close()

	records := make([]ValuationRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanValuation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountValuations counts stored valuations.
func (s *Store) CountValuations(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countValuationsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count valuations: %w", scanErr)
	}
	return count, nil
}

// InsertDivergenceAlert persists an alert emission.
func (s *Store) InsertDivergenceAlert(ctx context.Context, alert DivergenceAlert) (DivergenceAlert, error) {
	pool, err := s.getPool()
	if err != nil {
		return DivergenceAlert{}, err
	}

	row := pool.QueryRow(ctx, insertDivergenceAlertSQL,
		alert.Bucket,
		alert.DivergencePct.String(),
		alert.ThresholdPct.String(),
		alert.Channels,
	)

	var rec DivergenceAlert
	var divergenceStr, thresholdStr string
	if scanErr := row.Scan(
		&rec.ID,
		&rec.Bucket,
		&divergenceStr,
		&thresholdStr,
		&rec.Channels,
		&rec.CreatedAt,
	); scanErr != nil {
		return DivergenceAlert{}, fmt.Errorf("insert divergence alert: %w", scanErr)
	}

	var convErr error
	rec.DivergencePct, convErr = decimal.NewFromString(divergenceStr)
	if convErr != nil {
		return DivergenceAlert{}, fmt.Errorf("parse divergence pct: %w", convErr)
	}
	rec.ThresholdPct, convErr = decimal.NewFromString(thresholdStr)
	if convErr != nil {
		return DivergenceAlert{}, fmt.Errorf("parse threshold pct: %w", convErr)
	}

	return rec, nil
}

func scanValuation(rows pgx.Rows) (ValuationRecord, error) {
	var (
		rec    ValuationRecord
		strs   [8]string
		errMsg *string
	)
	decimals := [8]*decimal.Decimal{
		&rec.Spot, &rec.Strike, &rec.Sigma, &rec.Rate,
		&rec.MCPrice, &rec.MCStdErr, &rec.CallRatio, &rec.AnalyticPrice,
	}

	if err := rows.Scan(
		&rec.Bucket,
		&rec.ValuationDate,
		&strs[0], &strs[1], &strs[2], &strs[3],
		&strs[4], &strs[5], &strs[6], &strs[7],
		&rec.Policy,
		&rec.Paths,
		&rec.Status,
		&errMsg,
		&rec.CreatedAt,
	); err != nil {
		return ValuationRecord{}, err
	}

	for i := 0; i < 8; i++ {
		parsed, err := decimal.NewFromString(strs[i])
		if err != nil {
			return ValuationRecord{}, fmt.Errorf("parse valuation column %d: %w", i, err)
		}
		*decimals[i] = parsed
	}
	rec.Error = errMsg

	return rec, nil
}
