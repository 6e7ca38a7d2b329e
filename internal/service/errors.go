package service

import (
	"errors"

	"github.com/accountabro/backend/internal/validation"
)

// Caller-correctable precondition failures. Anything else returned by a
// service is an infrastructure failure.
var (
	ErrDuplicateRequest   = errors.New("profile already has a pending request in this category")
	ErrProfileUnavailable = errors.New("profile is not available for matching")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrMatchClosed        = errors.New("match is closed")
	ErrAlreadyEnded       = errors.New("match already ended")
	ErrNotAMember         = errors.New("profile is not a member of this match")
	ErrDuplicateCheckIn   = errors.New("check-in already recorded for this date")

	ErrInvalidResult  = errors.New("result must be did_it, partial or missed")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD and not in the future")
	ErrReasonTooLong  = errors.New("reason is too long")
	ErrNoteTooLong    = errors.New("note is too long")
	ErrMatchFull      = errors.New("match is full")
	ErrAlreadyMember  = errors.New("profile is already a member of this match")
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrBlockedMember  = errors.New("profile is blocked by a member of this match")
	ErrInvalidTarget  = errors.New("target per week must be between 1 and 14")
	ErrInvalidVisible = errors.New("visibility must be private or partner")
	ErrDuplicateSlug  = errors.New("category slug already exists")
	ErrProfileExists  = errors.New("profile already exists")
)

// errPairTaken signals a lost pairing race. It never leaves the engine.
var errPairTaken = errors.New("pair no longer claimable")

var preconditions = []error{
	ErrDuplicateRequest,
	ErrProfileUnavailable,
	ErrNotFound,
	ErrInvalidState,
	ErrMatchClosed,
	ErrAlreadyEnded,
	ErrNotAMember,
	ErrDuplicateCheckIn,
	ErrInvalidResult,
	ErrInvalidDate,
	ErrReasonTooLong,
	ErrNoteTooLong,
	ErrMatchFull,
	ErrAlreadyMember,
	ErrSelfBlock,
	ErrBlockedMember,
	ErrInvalidTarget,
	ErrInvalidVisible,
	ErrDuplicateSlug,
	ErrProfileExists,
	validation.ErrInvalid,
}

// IsPrecondition reports whether err is a caller-correctable failure.
func IsPrecondition(err error) bool {
	for _, target := range preconditions {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
