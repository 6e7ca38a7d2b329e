package handler

import (
	"net/http"

	"github.com/accountabro/backend/internal/ctxkeys"
	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/service"
)

type MatchHandler struct {
	lifecycle *service.LifecycleService
	ledger    *service.LedgerService
	reports   *service.ReportService
}

func NewMatchHandler(lifecycle *service.LifecycleService, ledger *service.LedgerService, reports *service.ReportService) *MatchHandler {
	return &MatchHandler{
		lifecycle: lifecycle,
		ledger:    ledger,
		reports:   reports,
	}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", model.MatchStatusActive, model.MatchStatusEnded:
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "status must be active or ended"})
		return
	}

	matches, err := h.lifecycle.ForProfile(r.Context(), ctxkeys.ProfileID(r.Context()), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	match, err := h.lifecycle.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, ok := match.Member(ctxkeys.ProfileID(r.Context())); !ok {
		writeError(w, r, service.ErrNotAMember)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

type endMatchRequest struct {
	Reason string `json:"reason" validate:"max=120"`
}

func (h *MatchHandler) End(w http.ResponseWriter, r *http.Request) {
	var req endMatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	match, err := h.lifecycle.End(r.Context(), r.PathValue("id"), ctxkeys.ProfileID(r.Context()), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

type addMemberRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
}

// AddMember lets an existing member invite another profile into a group.
func (h *MatchHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	matchID := r.PathValue("id")
	match, err := h.lifecycle.Get(r.Context(), matchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, ok := match.Member(ctxkeys.ProfileID(r.Context())); !ok {
		writeError(w, r, service.ErrNotAMember)
		return
	}

	match, err = h.lifecycle.AddMember(r.Context(), matchID, req.ProfileID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

type checkInRequest struct {
	Date   string `json:"date"`
	Result string `json:"result" validate:"required"`
	Note   string `json:"note" validate:"max=280"`
}

func (h *MatchHandler) RecordCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	checkIn, err := h.ledger.RecordCheckIn(r.Context(), service.CheckInInput{
		MatchID:   r.PathValue("id"),
		ProfileID: ctxkeys.ProfileID(r.Context()),
		Date:      req.Date,
		Result:    req.Result,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkIn)
}

func (h *MatchHandler) CheckIns(w http.ResponseWriter, r *http.Request) {
	checkIns, err := h.ledger.CheckIns(r.Context(), r.PathValue("id"), ctxkeys.ProfileID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkIns)
}

// Progress reports weekly completion and streak for the caller, or for
// ?profile= when it names another member.
func (h *MatchHandler) Progress(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.ProfileID(r.Context())
	subject := r.URL.Query().Get("profile")
	if subject == "" {
		subject = caller
	}

	matchID := r.PathValue("id")
	if subject != caller {
		match, err := h.lifecycle.Get(r.Context(), matchID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, ok := match.Member(caller); !ok {
			writeError(w, r, service.ErrNotAMember)
			return
		}
	}

	progress, err := h.ledger.Progress(r.Context(), matchID, subject, r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

type reportRequest struct {
	ReportedID string `json:"reported_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=80"`
	Details    string `json:"details" validate:"max=2000"`
	EndMatch   bool   `json:"end_match"`
}

func (h *MatchHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reports.Report(r.Context(), service.ReportInput{
		MatchID:    r.PathValue("id"),
		ReporterID: ctxkeys.ProfileID(r.Context()),
		ReportedID: req.ReportedID,
		Reason:     req.Reason,
		Details:    req.Details,
		EndMatch:   req.EndMatch,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
