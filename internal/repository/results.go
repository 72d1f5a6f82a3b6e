package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

// SaveResult upserts a result by report ID.
func (s *Store) SaveResult(ctx context.Context, r entity.ReportResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	q, args := s.builder().Insert(CreditReportsTable.Name).
		Columns("id", "source", "content_hash", "method", "pages", "bureau", "format",
			"total_violations", "total_impact", "created_at", "payload").
		Values(r.ReportID, r.Source, r.ContentHash, r.Method, r.Pages, string(r.Report.Bureau), r.Report.Format,
			r.Analysis.TotalViolations, r.Analysis.TotalImpact, r.CreatedAt.UTC(), string(payload)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := s.drv.DB().ExecContext(ctx, q, args...); err != nil {
		s.logger.Error("credit_report save failed", "report_id", r.ReportID, "err", err)
		return dbError("save result", err)
	}
	s.logger.Info("credit_report saved", "report_id", r.ReportID, "violations", r.Analysis.TotalViolations)
	return nil
}

// GetResult loads one result by report ID.
func (s *Store) GetResult(ctx context.Context, reportID uuid.UUID) (entity.ReportResult, error) {
	q, args := s.builder().Select("payload").
		From(entsql.Table(CreditReportsTable.Name)).
		Where(entsql.EQ("id", reportID)).
		Query()
	r, err := s.scanOne(ctx, q, args)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ReportResult{}, fmt.Errorf("report %s: %w", reportID, common.ErrNotFound)
	}
	return r, err
}

// FindByHash returns the newest result for a content hash.
func (s *Store) FindByHash(ctx context.Context, contentHash string) (entity.ReportResult, bool, error) {
	q, args := s.builder().Select("payload").
		From(entsql.Table(CreditReportsTable.Name)).
		Where(entsql.EQ("content_hash", contentHash)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1).
		Query()
	r, err := s.scanOne(ctx, q, args)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ReportResult{}, false, nil
	}
	if err != nil {
		return entity.ReportResult{}, false, err
	}
	return r, true, nil
}

// ListResults returns up to limit results, newest first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]entity.ReportResult, error) {
	if limit <= 0 {
		limit = 50
	}
	q, args := s.builder().Select("payload").
		From(entsql.Table(CreditReportsTable.Name)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("id")).
		Limit(limit).
		Query()
	rows, err := s.drv.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, dbError("list results", err)
	}
	defer rows.Close()

	var out []entity.ReportResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, dbError("scan result", err)
		}
		r, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list results", err)
	}
	return out, nil
}

func (s *Store) scanOne(ctx context.Context, q string, args []any) (entity.ReportResult, error) {
	var payload []byte
	if err := s.drv.DB().QueryRowContext(ctx, q, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ReportResult{}, err
		}
		return entity.ReportResult{}, dbError("load result", err)
	}
	return decodeResult(payload)
}

func decodeResult(payload []byte) (entity.ReportResult, error) {
	var r entity.ReportResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return entity.ReportResult{}, fmt.Errorf("decode stored result: %w", err)
	}
	return r, nil
}

func dbError(op string, err error) error {
	return common.NewAppError("DATABASE_ERROR", op, fmt.Errorf("%w: %w", common.ErrDatabase, err))
}
