package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/validation"
)

const MaxNoteLength = 280

// Civil dates up to UTC+14 are already current somewhere.
const maxZoneOffset = 14 * time.Hour

// LedgerService records daily check-ins and derives progress from them. The
// ledger is append-only; progress is computed on read.
type LedgerService struct {
	store *repository.Store
	clock Clock
}

func NewLedgerService(store *repository.Store, clock Clock) *LedgerService {
	return &LedgerService{store: store, clock: clock}
}

type CheckInInput struct {
	MatchID   string
	ProfileID string
	// Date is YYYY-MM-DD. Empty means today in the profile's timezone.
	Date   string
	Result string
	Note   string
}

type WeeklyProgress struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Target    int    `json:"target"`
	Completed int    `json:"completed"`
	Partial   int    `json:"partial"`
	Missed    int    `json:"missed"`
	Met       bool   `json:"met"`
}

type Progress struct {
	MatchID   string         `json:"match_id"`
	ProfileID string         `json:"profile_id"`
	AsOf      string         `json:"as_of"`
	Week      WeeklyProgress `json:"week"`
	Streak    int            `json:"streak"`
}

func (s *LedgerService) RecordCheckIn(ctx context.Context, in CheckInInput) (*model.CheckIn, error) {
	result := strings.ToLower(strings.TrimSpace(in.Result))
	if !model.ValidCheckInResult(result) {
		return nil, ErrInvalidResult
	}

	note := validation.Normalize(in.Note)
	if validation.Length(note) > MaxNoteLength {
		return nil, ErrNoteTooLong
	}

	var checkIn *model.CheckIn
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		match, err := loadMatch(ctx, r, in.MatchID)
		if err != nil {
			return err
		}
		if !match.IsActive() {
			return ErrMatchClosed
		}

		member, ok := match.Member(in.ProfileID)
		if !ok {
			return ErrNotAMember
		}

		now := s.clock.Now()
		loc, err := profileLocation(ctx, r, in.ProfileID)
		if err != nil {
			return err
		}
		date := in.Date
		if date == "" {
			date = now.In(loc).Format(model.DateLayout)
		}
		day, err := parseDate(date)
		if err != nil {
			return err
		}
		if day.After(now.Add(maxZoneOffset)) {
			return ErrInvalidDate
		}
		// Joining counts from the member's local calendar day.
		if member.JoinedAt.In(loc).Format(model.DateLayout) > date {
			return ErrNotAMember
		}

		checkIn = &model.CheckIn{
			ID:          uuid.New().String(),
			MatchID:     match.ID,
			ProfileID:   in.ProfileID,
			CategoryID:  match.CategoryID,
			CheckinDate: date,
			Result:      result,
			Note:        note,
			CreatedAt:   now,
		}
		err = r.CheckIns.Create(ctx, checkIn)
		if errors.Is(err, repository.ErrDuplicateCheckIn) {
			return ErrDuplicateCheckIn
		}
		if err != nil {
			return fmt.Errorf("failed to record check-in: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("check-in recorded",
		"match_id", checkIn.MatchID,
		"profile_id", checkIn.ProfileID,
		"date", checkIn.CheckinDate,
		"result", checkIn.Result,
	)
	return checkIn, nil
}

// CheckIns lists a match's check-ins, newest date first. A non-empty
// profileID must be a member of the match.
func (s *LedgerService) CheckIns(ctx context.Context, matchID, profileID string) ([]*model.CheckIn, error) {
	match, err := loadMatch(ctx, s.store.Repos, matchID)
	if err != nil {
		return nil, err
	}
	if profileID != "" {
		if _, ok := match.Member(profileID); !ok {
			return nil, ErrNotAMember
		}
	}

	checkIns, err := s.store.CheckIns.ByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	if checkIns == nil {
		checkIns = []*model.CheckIn{}
	}
	return checkIns, nil
}

// WeeklyProgress counts the member's results in the ISO week (Monday to
// Sunday) containing asOf against their weekly target. Only did_it counts
// towards the target.
func (s *LedgerService) WeeklyProgress(ctx context.Context, matchID, profileID, asOf string) (*WeeklyProgress, error) {
	match, day, err := s.memberAt(ctx, matchID, profileID, asOf)
	if err != nil {
		return nil, err
	}
	return s.weekly(ctx, match, profileID, day)
}

// CurrentStreak counts consecutive did_it days ending at asOf. When asOf has
// no check-in yet the count starts the day before, so an unfinished today
// does not reset the streak.
func (s *LedgerService) CurrentStreak(ctx context.Context, matchID, profileID, asOf string) (int, error) {
	_, day, err := s.memberAt(ctx, matchID, profileID, asOf)
	if err != nil {
		return 0, err
	}
	return s.streak(ctx, matchID, profileID, day)
}

// Progress combines weekly progress and streak. Empty asOf means today in
// the profile's timezone.
func (s *LedgerService) Progress(ctx context.Context, matchID, profileID, asOf string) (*Progress, error) {
	if asOf == "" {
		loc, err := profileLocation(ctx, s.store.Repos, profileID)
		if err != nil {
			return nil, err
		}
		asOf = s.clock.Now().In(loc).Format(model.DateLayout)
	}

	match, day, err := s.memberAt(ctx, matchID, profileID, asOf)
	if err != nil {
		return nil, err
	}

	week, err := s.weekly(ctx, match, profileID, day)
	if err != nil {
		return nil, err
	}
	streak, err := s.streak(ctx, matchID, profileID, day)
	if err != nil {
		return nil, err
	}

	return &Progress{
		MatchID:   matchID,
		ProfileID: profileID,
		AsOf:      asOf,
		Week:      *week,
		Streak:    streak,
	}, nil
}

func (s *LedgerService) memberAt(ctx context.Context, matchID, profileID, asOf string) (*model.Match, time.Time, error) {
	day, err := parseDate(asOf)
	if err != nil {
		return nil, time.Time{}, err
	}
	match, err := loadMatch(ctx, s.store.Repos, matchID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if _, ok := match.Member(profileID); !ok {
		return nil, time.Time{}, ErrNotAMember
	}
	return match, day, nil
}

func (s *LedgerService) weekly(ctx context.Context, match *model.Match, profileID string, day time.Time) (*WeeklyProgress, error) {
	// time.Weekday has Sunday = 0; shift so Monday starts the week.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)

	checkIns, err := s.store.CheckIns.ByMember(ctx, match.ID, profileID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}

	target := model.DefaultTargetPerWeek
	goal, err := s.store.Goals.ByProfileCategory(ctx, profileID, match.CategoryID)
	switch {
	case err == nil:
		target = goal.TargetPerWeek
	case !errors.Is(err, repository.ErrGoalNotFound):
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}

	progress := &WeeklyProgress{
		WeekStart: formatDate(start),
		WeekEnd:   formatDate(end),
		Target:    target,
	}
	for _, c := range checkIns {
		switch c.Result {
		case model.CheckInDidIt:
			progress.Completed++
		case model.CheckInPartial:
			progress.Partial++
		case model.CheckInMissed:
			progress.Missed++
		}
	}
	progress.Met = progress.Completed >= target
	return progress, nil
}

func (s *LedgerService) streak(ctx context.Context, matchID, profileID string, day time.Time) (int, error) {
	checkIns, err := s.store.CheckIns.ByMember(ctx, matchID, profileID, "0001-01-01", formatDate(day))
	if err != nil {
		return 0, fmt.Errorf("failed to load check-ins: %w", err)
	}

	results := make(map[string]string, len(checkIns))
	for _, c := range checkIns {
		results[c.CheckinDate] = c.Result
	}

	if _, ok := results[formatDate(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for results[formatDate(day)] == model.CheckInDidIt {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// profileLocation is the profile's timezone, falling back to UTC when the
// zone is unknown.
func profileLocation(ctx context.Context, r repository.Repos, profileID string) (*time.Location, error) {
	profile, err := r.Profiles.ByID(ctx, profileID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		return time.UTC, nil
	}
	return loc, nil
}

func parseDate(s string) (time.Time, error) {
	day, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(model.DateLayout)
}
