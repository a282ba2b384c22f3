package engine

import "errors"

// Failure values returned by engine operations. All of them leave state
// exactly as it was before the call; none are fatal.
var (
	// ErrInsufficientFunds signals a debit that would push the balance
	// negative without allowNegative.
	ErrInsufficientFunds = errors.New("insufficient points")

	// ErrNotFound covers entities that do not exist or do not belong to the
	// requesting user, including already-terminal challenges and goals.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOffer rejects challenge creation outside the enumerated
	// (days, wager) offer set.
	ErrInvalidOffer = errors.New("invalid challenge offer")

	// ErrInvalidInput rejects malformed arguments, such as a non-positive
	// session duration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrChallengeActive rejects a second concurrent challenge.
	ErrChallengeActive = errors.New("challenge already active")

	// ErrNotConfigured means rate or goal is unset; derived computations
	// refuse to run instead of reporting nonsense.
	ErrNotConfigured = errors.New("profile not configured")

	// ErrFreezeCap rejects freeze purchases at the inventory cap.
	ErrFreezeCap = errors.New("freeze inventory full")
)
