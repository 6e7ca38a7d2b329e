package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/markdown"
	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/storage"
	"github.com/accountabro/backend/internal/validation"
)

const (
	MaxReportReasonLength  = 80
	MaxReportDetailsLength = 2000
	ReportedEndReason      = "reported"
)

// ReportService records reports against match partners. Moderation happens
// elsewhere; this only writes the record and its side effects.
type ReportService struct {
	store    *repository.Store
	archive  storage.Archive
	renderer *markdown.Parser
	clock    Clock
}

// NewReportService creates the service. archive may be nil.
func NewReportService(store *repository.Store, archive storage.Archive, clock Clock) *ReportService {
	return &ReportService{store: store, archive: archive, renderer: markdown.NewParser(), clock: clock}
}

type ReportInput struct {
	MatchID    string
	ReporterID string
	ReportedID string
	Reason     string
	Details    string
	// EndMatch ends the match with reason "reported" in the same transaction.
	EndMatch bool
}

// Evidence is the archived snapshot of a report and its match.
type Evidence struct {
	Report      *model.Report    `json:"report"`
	DetailsHTML string           `json:"details_html,omitempty"`
	Match       *model.Match     `json:"match,omitempty"`
	CheckIns    []*model.CheckIn `json:"checkins,omitempty"`
	ArchivedAt  time.Time        `json:"archived_at"`
}

// Report records the report and blocks the reported profile for the reporter.
// Both profiles must be members when a match is given.
func (s *ReportService) Report(ctx context.Context, in ReportInput) (*model.Report, error) {
	if in.ReporterID == in.ReportedID {
		return nil, fmt.Errorf("%w: cannot report yourself", validation.ErrInvalid)
	}
	reason := validation.Normalize(in.Reason)
	if err := validation.ValidateRequired("reason", reason, MaxReportReasonLength); err != nil {
		return nil, err
	}
	details := validation.Normalize(in.Details)
	if err := validation.ValidateText("details", details, MaxReportDetailsLength); err != nil {
		return nil, err
	}

	var report *model.Report
	var evidence Evidence

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		now := s.clock.Now()
		report = &model.Report{
			ID:         uuid.New().String(),
			ReporterID: in.ReporterID,
			ReportedID: in.ReportedID,
			Reason:     reason,
			Details:    details,
			CreatedAt:  now,
		}

		var match *model.Match
		if in.MatchID != "" {
			var err error
			match, err = loadMatch(ctx, r, in.MatchID)
			if err != nil {
				return err
			}
			if _, ok := match.Member(in.ReporterID); !ok {
				return ErrNotAMember
			}
			if !slices.Contains(match.Partners(in.ReporterID), in.ReportedID) {
				return ErrNotAMember
			}
			report.MatchID = &match.ID
		}

		if err := r.Reports.Create(ctx, report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		if match != nil && in.EndMatch && match.IsActive() {
			if err := endInTx(ctx, r, match, ReportedEndReason, now); err != nil {
				return err
			}
		}

		if err := blockInTx(ctx, r, in.ReporterID, in.ReportedID, s.clock); err != nil {
			return err
		}

		evidence = Evidence{Report: report, Match: match, ArchivedAt: now}
		if match != nil {
			checkIns, err := r.CheckIns.ByMatch(ctx, match.ID)
			if err != nil {
				return fmt.Errorf("failed to load check-ins: %w", err)
			}
			evidence.CheckIns = checkIns
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("report recorded",
		"report_id", report.ID,
		"reporter_id", report.ReporterID,
		"reported_id", report.ReportedID,
		"match_ended", in.EndMatch && evidence.Match != nil,
	)

	s.archiveEvidence(ctx, evidence)
	return report, nil
}

// EvidenceKey is where the snapshot of a report is archived.
func EvidenceKey(report *model.Report) string {
	return fmt.Sprintf("reports/%s/%s.json", report.CreatedAt.UTC().Format("2006/01"), report.ID)
}

// archiveEvidence is best effort: the report is already committed.
func (s *ReportService) archiveEvidence(ctx context.Context, evidence Evidence) {
	if s.archive == nil {
		return
	}

	html, err := s.renderer.ParseString(evidence.Report.Details)
	if err != nil {
		slog.Warn("failed to render report details", "error", err, "report_id", evidence.Report.ID)
	}
	evidence.DetailsHTML = html

	body, err := json.Marshal(evidence)
	if err != nil {
		slog.Error("failed to encode report evidence", "error", err, "report_id", evidence.Report.ID)
		return
	}

	if err := s.archive.Put(ctx, EvidenceKey(evidence.Report), body, "application/json"); err != nil {
		slog.Error("failed to archive report evidence", "error", err, "report_id", evidence.Report.ID)
	}
}
