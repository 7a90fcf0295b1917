package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

const (
	tableRuns       = "extraction_runs"
	DefaultRunLimit = 50
	MaxRunLimit     = 500
	sqliteTimeFmt   = "2006-01-02T15:04:05.000000000Z07:00"
)

var runColumns = []string{
	"id", "source", "content_hash", "contract_number", "customer_name",
	"payment_method", "status", "confidence_score", "processing_ms", "record", "created_at",
}

// RunFilter narrows ListRuns. Zero values mean "any".
type RunFilter struct {
	Limit         int
	PaymentMethod string
	Status        constants.RunStatus
}

type RunRepository interface {
	SaveRun(ctx context.Context, run *entity.ExtractionRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*entity.ExtractionRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*entity.ExtractionRun, error)
	FindByHash(ctx context.Context, hash string) (*entity.ExtractionRun, error)
	CountRuns(ctx context.Context) (int, error)
}

type runRepo struct {
	store *Store
}

func NewRunRepository(store *Store) RunRepository {
	return &runRepo{store: store}
}

// ContentHash is the hex sha256 of the concatenated inputs of a run.
func ContentHash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RunFromRecord prepares a run row for rec. The record is stored as JSON.
func RunFromRecord(source, hash string, rec *entity.ContractRecord, status constants.RunStatus) (*entity.ExtractionRun, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return &entity.ExtractionRun{
		ID:              uuid.New(),
		Source:          source,
		ContentHash:     hash,
		ContractNumber:  rec.Contract.ContractNumber,
		CustomerName:    rec.Customer.Name,
		PaymentMethod:   string(rec.Payment.Method),
		Status:          status,
		ConfidenceScore: rec.ConfidenceScore,
		ProcessingMS:    int64(rec.ProcessingTimeSeconds * 1000),
		Record:          b,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (r *runRepo) SaveRun(ctx context.Context, run *entity.ExtractionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	var record any
	if len(run.Record) > 0 {
		record = string(run.Record)
	}

	b := entsql.Dialect(r.store.dialect)
	query, args := b.Insert(tableRuns).
		Columns(runColumns...).
		Values(
			run.ID.String(),
			run.Source,
			run.ContentHash,
			nullable(run.ContractNumber),
			nullable(run.CustomerName),
			run.PaymentMethod,
			string(run.Status),
			run.ConfidenceScore,
			run.ProcessingMS,
			record,
			r.timeArg(run.CreatedAt),
		).
		Query()

	var res sql.Result
	if err := r.store.drv.Exec(ctx, query, args, &res); err != nil {
		r.store.logger.Error("store.run.save_failed", "run_id", run.ID, "err", err)
		return common.NewAppError("STORE_ERROR", "save run", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	r.store.logger.Info("store.run.saved",
		"run_id", run.ID,
		"source", run.Source,
		"status", string(run.Status),
	)
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, id uuid.UUID) (*entity.ExtractionRun, error) {
	b := entsql.Dialect(r.store.dialect)
	sel := b.Select(runColumns...).
		From(b.Table(tableRuns)).
		Where(entsql.EQ("id", id.String())).
		Limit(1)
	runs, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, common.NewAppError("RUN_NOT_FOUND", "run "+id.String(), common.ErrNotFound)
	}
	return runs[0], nil
}

func (r *runRepo) ListRuns(ctx context.Context, filter RunFilter) ([]*entity.ExtractionRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	if limit > MaxRunLimit {
		limit = MaxRunLimit
	}

	b := entsql.Dialect(r.store.dialect)
	sel := b.Select(runColumns...).From(b.Table(tableRuns))
	var preds []*entsql.Predicate
	if filter.PaymentMethod != "" {
		preds = append(preds, entsql.EQ("payment_method", filter.PaymentMethod))
	}
	if filter.Status != "" {
		preds = append(preds, entsql.EQ("status", string(filter.Status)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("created_at")).Limit(limit)
	return r.query(ctx, sel)
}

func (r *runRepo) FindByHash(ctx context.Context, hash string) (*entity.ExtractionRun, error) {
	b := entsql.Dialect(r.store.dialect)
	sel := b.Select(runColumns...).
		From(b.Table(tableRuns)).
		Where(entsql.EQ("content_hash", hash)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1)
	runs, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, common.NewAppError("RUN_NOT_FOUND", "content hash "+hash, common.ErrNotFound)
	}
	return runs[0], nil
}

func (r *runRepo) CountRuns(ctx context.Context) (int, error) {
	b := entsql.Dialect(r.store.dialect)
	query, args := b.Select(entsql.Count("*")).From(b.Table(tableRuns)).Query()
	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		return 0, common.NewAppError("STORE_ERROR", "count runs", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func (r *runRepo) query(ctx context.Context, sel *entsql.Selector) ([]*entity.ExtractionRun, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		return nil, common.NewAppError("STORE_ERROR", "query runs", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.ExtractionRun
	for rows.Next() {
		var (
			id, status     string
			contract, name sql.NullString
			record         []byte
			createdAt      any
			run            entity.ExtractionRun
		)
		if err := rows.Scan(
			&id, &run.Source, &run.ContentHash, &contract, &name,
			&run.PaymentMethod, &status, &run.ConfidenceScore, &run.ProcessingMS,
			&record, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("scan run id %q: %w", id, err)
		}
		run.ID = parsed
		run.Status = constants.RunStatus(status)
		if contract.Valid {
			run.ContractNumber = &contract.String
		}
		if name.Valid {
			run.CustomerName = &name.String
		}
		if len(record) > 0 {
			run.Record = json.RawMessage(record)
		}
		if run.CreatedAt, err = scanTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}

func (r *runRepo) timeArg(t time.Time) any {
	if r.store.dialect == dialect.SQLite {
		return t.UTC().Format(sqliteTimeFmt)
	}
	return t.UTC()
}

func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseStoredTime(t)
	case []byte:
		return parseStoredTime(string(t))
	case nil:
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("scan created_at: unexpected %T", v)
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeFmt, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("scan created_at: unparseable %q", s)
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
