package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

func (s *Store) StartJob(ctx context.Context, job entity.ReportJob) error {
	q, args := s.builder().Insert(ReportJobsTable.Name).
		Columns("id", "source", "content_hash", "status", "started_at").
		Values(job.ID, job.Source, job.ContentHash, string(job.Status), job.StartedAt.UTC()).
		Query()
	if _, err := s.drv.DB().ExecContext(ctx, q, args...); err != nil {
		s.logger.Error("report_job start failed", "job_id", job.ID, "err", err)
		return dbError("start job", err)
	}
	s.logger.Debug("report_job started", "job_id", job.ID, "source", job.Source)
	return nil
}

func (s *Store) FinishJob(ctx context.Context, job entity.ReportJob) error {
	u := s.builder().Update(ReportJobsTable.Name).
		Set("status", string(job.Status)).
		Where(entsql.EQ("id", job.ID))
	if job.FinishedAt != nil {
		u.Set("finished_at", job.FinishedAt.UTC())
	}
	if job.ErrorMessage != nil {
		u.Set("error_message", *job.ErrorMessage)
	}
	q, args := u.Query()

	res, err := s.drv.DB().ExecContext(ctx, q, args...)
	if err != nil {
		s.logger.Error("report_job finish failed", "job_id", job.ID, "err", err)
		return dbError("finish job", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("job %s: %w", job.ID, common.ErrNotFound)
	}
	if job.Status == constants.JobStatusFailed {
		s.logger.Warn("report_job finished (FAILED)", "job_id", job.ID)
	} else {
		s.logger.Info("report_job finished", "job_id", job.ID, "status", job.Status)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (entity.ReportJob, error) {
	q, args := s.builder().Select("source", "content_hash", "status", "error_message", "started_at", "finished_at").
		From(entsql.Table(ReportJobsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		job      = entity.ReportJob{ID: id}
		status   string
		errMsg   sql.NullString
		finished sql.NullTime
	)
	err := s.drv.DB().QueryRowContext(ctx, q, args...).
		Scan(&job.Source, &job.ContentHash, &status, &errMsg, &job.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ReportJob{}, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return entity.ReportJob{}, dbError("load job", err)
	}
	job.Status = constants.JobStatus(status)
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	return job, nil
}
