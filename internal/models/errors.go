package models

import "errors"

var (
	// ErrValidation marks rejected input: empty text, bad rating, missing fields.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a conditional write that lost a race, e.g. a claim on
	// a request another translator already took.
	ErrConflict = errors.New("conflicting update")

	// ErrAlreadyDecided marks a decide call on a recharge record that is no
	// longer pending. Surfaced instead of re-crediting.
	ErrAlreadyDecided = errors.New("recharge already decided")

	// ErrAlreadyRated marks a second rating attempt; ratings are write-once.
	ErrAlreadyRated = errors.New("request already rated")

	// ErrQuotaExhausted marks a debit attempt with no remaining quota.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrUnavailable marks a store that could not be reached in time.
	ErrUnavailable = errors.New("store unavailable")

	// ErrProvider marks a failed AI-translation provider call.
	ErrProvider = errors.New("translation provider error")
)
