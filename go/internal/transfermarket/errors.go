package transfermarket

import "errors"

var (
	// ErrInsufficientBudget rejects an offer whose fee exceeds the acting
	// club's budget minus its committed open offers.
	ErrInsufficientBudget = errors.New("insufficient transfer budget")
	// ErrOfferLimitReached rejects a new offer for a player who already has
	// the maximum concurrent pending offers.
	ErrOfferLimitReached = errors.New("pending offer limit reached")
	// ErrOfferExists rejects a duplicate offer from the same club.
	ErrOfferExists = errors.New("offer already exists")
	// ErrRosterFull rejects a signing that would exceed the roster cap.
	ErrRosterFull = errors.New("roster at capacity")
)
