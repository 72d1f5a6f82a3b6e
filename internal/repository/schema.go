package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// CreditReportsColumns holds the columns for the "credit_reports" table.
	CreditReportsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "source", Type: field.TypeString, Size: 2048},
		{Name: "content_hash", Type: field.TypeString, Size: 64},
		{Name: "method", Type: field.TypeString, Size: 16},
		{Name: "pages", Type: field.TypeInt, Default: 0},
		{Name: "bureau", Type: field.TypeString, Size: 16},
		{Name: "format", Type: field.TypeString, Size: 64},
		{Name: "total_violations", Type: field.TypeInt, Default: 0},
		{Name: "total_impact", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "payload", Type: field.TypeJSON},
	}
	// CreditReportsTable holds the schema information for the "credit_reports" table.
	CreditReportsTable = &schema.Table{
		Name:       "credit_reports",
		Columns:    CreditReportsColumns,
		PrimaryKey: []*schema.Column{CreditReportsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "creditreport_content_hash", Unique: false, Columns: []*schema.Column{CreditReportsColumns[2]}},
			{Name: "creditreport_created_at", Unique: false, Columns: []*schema.Column{CreditReportsColumns[9]}},
		},
	}

	// ReportJobsColumns holds the columns for the "report_jobs" table.
	ReportJobsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "source", Type: field.TypeString, Size: 2048},
		{Name: "content_hash", Type: field.TypeString, Size: 64},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "error_message", Type: field.TypeString, Nullable: true, SchemaType: map[string]string{dialect.Postgres: "text"}},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime, Nullable: true},
	}
	// ReportJobsTable holds the schema information for the "report_jobs" table.
	ReportJobsTable = &schema.Table{
		Name:       "report_jobs",
		Columns:    ReportJobsColumns,
		PrimaryKey: []*schema.Column{ReportJobsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reportjob_status", Unique: false, Columns: []*schema.Column{ReportJobsColumns[3]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CreditReportsTable,
		ReportJobsTable,
	}
)

// Migrate creates or updates the tables. It is additive: columns and indexes are never dropped.
func (s *Store) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		s.logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	s.logger.Info("schema migrated", "tables", len(Tables))
	return nil
}
