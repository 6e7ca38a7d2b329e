package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/accountabro/backend/internal/model"
)

var (
	ErrReportNotFound = errors.New("report not found")
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	ByID(ctx context.Context, id string) (*model.Report, error)
}

type reportRepository struct {
	db sqlx.ExtContext
}

func NewReportRepository(db sqlx.ExtContext) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, reporter_id, reported_id, match_id, reason, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, report.ID, report.ReporterID, report.ReportedID, report.MatchID,
		report.Reason, report.Details, report.CreatedAt)
	return err
}

func (r *reportRepository) ByID(ctx context.Context, id string) (*model.Report, error) {
	report := &model.Report{}
	err := sqlx.GetContext(ctx, r.db, report, `SELECT * FROM reports WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}
