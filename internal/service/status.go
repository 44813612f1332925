package service

import "marketplace-service/internal/models"

// validNext is the allowed-transition table. Adding a state is a data
// change here, not a control-flow change in the engine.
var validNext = map[models.Status]map[models.Status]bool{
	models.StatusPending:    {models.StatusAccepted: true, models.StatusRejected: true, models.StatusCancelled: true},
	models.StatusAccepted:   {models.StatusProcessing: true, models.StatusCancelled: true},
	models.StatusProcessing: {models.StatusShipped: true, models.StatusCancelled: true},
	models.StatusShipped:    {models.StatusCompleted: true, models.StatusCancelled: true},
	models.StatusCompleted:  {},
	models.StatusRejected:   {},
	models.StatusCancelled:  {},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to models.Status) bool {
	return validNext[from][to]
}

// KnownStatus reports whether s is a status the table knows about.
func KnownStatus(s models.Status) bool {
	_, ok := validNext[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s models.Status) bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

// RestoresStock reports whether the from -> to transition releases the
// order's reserved quantity back to catalog stock. Stock is decremented
// once at creation and released only on a path that ends without
// fulfillment; advancing toward completion never touches it.
func RestoresStock(from, to models.Status) bool {
	if to != models.StatusRejected && to != models.StatusCancelled {
		return false
	}
	return !IsTerminal(from)
}
