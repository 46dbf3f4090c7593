package service

import "errors"

var (
	// ErrNotFound means the referenced order or house does not exist.
	ErrNotFound = errors.New("not_found")
	// ErrForbidden means the actor is neither buyer nor seller of the order.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition means the action is not legal from the order's
	// current status, or the actor is not allowed to perform it. Nothing is
	// written.
	ErrInvalidTransition = errors.New("invalid_transition")
	// ErrStoreConflict means a concurrent transition committed first; the
	// whole call was rolled back and can be retried.
	ErrStoreConflict = errors.New("store_conflict")
	// ErrHouseUnavailable means the house is not open for purchase.
	ErrHouseUnavailable = errors.New("house_unavailable")
	// ErrAlreadyReferred means the user already has a recorded referrer.
	ErrAlreadyReferred = errors.New("already_referred")
)
