package booking

import "github.com/iliyamo/court-reservation/internal/model"

// CanTransition reports whether the state machine permits moving a
// reservation from one status to another.
//
//	PENDING   -> CONFIRMED   payment confirmation only
//	PENDING   -> FINISHED    passive sweep once the interval elapsed
//	PENDING   -> CANCELLED   explicit cancel
//	CONFIRMED -> CANCELLED   explicit cancel
//	CANCELLED -> PENDING     explicit reactivation, re-checked for conflicts
//
// Everything else, including any transition out of FINISHED, is
// rejected. Self-transitions are not permitted either; callers must not
// re-apply a state they are already in.
func CanTransition(from, to model.Status) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusConfirmed || to == model.StatusFinished || to == model.StatusCancelled
	case model.StatusConfirmed:
		return to == model.StatusCancelled
	case model.StatusCancelled:
		return to == model.StatusPending
	default:
		return false
	}
}

// transition validates and returns the target status, or
// ErrInvalidTransition when the move is not legal.
func transition(from, to model.Status) (model.Status, error) {
	if !CanTransition(from, to) {
		return "", ErrInvalidTransition
	}
	return to, nil
}
