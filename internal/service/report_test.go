package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/validation"
)

func TestReport_EndsMatchBlocksAndArchives(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	match := env.pair(t, p1, p2, gym)

	_, err := env.ledger.RecordCheckIn(env.ctx, CheckInInput{MatchID: match.ID, ProfileID: p2.ID, Date: "2025-03-05", Result: "did_it"})
	require.NoError(t, err)

	report, err := env.reports.Report(env.ctx, ReportInput{
		MatchID:    match.ID,
		ReporterID: p1.ID,
		ReportedID: p2.ID,
		Reason:     "harassment",
		Details:    "rude **messages**",
		EndMatch:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, report.MatchID)
	assert.Equal(t, match.ID, *report.MatchID)

	stored, err := env.store.Reports.ByID(env.ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "harassment", stored.Reason)

	ended, err := env.lifecycle.Get(env.ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusEnded, ended.Status)
	assert.Equal(t, ReportedEndReason, ended.EndReason)

	ok, err := env.safety.IsEligiblePair(env.ctx, p2.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	body, err := env.archive.Get(env.ctx, EvidenceKey(report))
	require.NoError(t, err)

	var evidence Evidence
	require.NoError(t, json.Unmarshal(body, &evidence))
	assert.Equal(t, report.ID, evidence.Report.ID)
	require.NotNil(t, evidence.Match)
	assert.Equal(t, model.MatchStatusEnded, evidence.Match.Status)
	assert.Len(t, evidence.CheckIns, 1)
	assert.Contains(t, evidence.DetailsHTML, "<strong>messages</strong>")
}

func TestReport_KeepsMatchWhenNotEnding(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	match := env.pair(t, p1, p2, gym)

	_, err := env.reports.Report(env.ctx, ReportInput{MatchID: match.ID, ReporterID: p1.ID, ReportedID: p2.ID, Reason: "spam"})
	require.NoError(t, err)

	stored, err := env.lifecycle.Get(env.ctx, match.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())
}

func TestReport_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	gym := env.category(t, "gym")
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")
	outsider := env.profile(t, "outsider")
	match := env.pair(t, p1, p2, gym)

	_, err := env.reports.Report(env.ctx, ReportInput{ReporterID: p1.ID, ReportedID: p1.ID, Reason: "x"})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = env.reports.Report(env.ctx, ReportInput{ReporterID: p1.ID, ReportedID: p2.ID})
	assert.ErrorIs(t, err, validation.ErrInvalid, "reason is required")

	_, err = env.reports.Report(env.ctx, ReportInput{MatchID: match.ID, ReporterID: p1.ID, ReportedID: outsider.ID, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = env.reports.Report(env.ctx, ReportInput{MatchID: match.ID, ReporterID: outsider.ID, ReportedID: p1.ID, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = env.reports.Report(env.ctx, ReportInput{MatchID: "missing", ReporterID: p1.ID, ReportedID: p2.ID, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, env.archive.Keys())
}

type failingArchive struct{}

func (failingArchive) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

func (failingArchive) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("bucket unavailable")
}

func TestReport_ArchiveFailureDoesNotFailReport(t *testing.T) {
	env := newTestEnv(t)
	reports := NewReportService(env.store, failingArchive{}, env.clock)
	p1 := env.profile(t, "p1")
	p2 := env.profile(t, "p2")

	report, err := reports.Report(env.ctx, ReportInput{ReporterID: p1.ID, ReportedID: p2.ID, Reason: "spam"})
	require.NoError(t, err)
	assert.Nil(t, report.MatchID)
}
