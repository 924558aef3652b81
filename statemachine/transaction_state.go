package statemachine

import (
	"slices"
	"strings"

	"foodpos-api/models"

	"github.com/cockroachdb/errors"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.TransactionStatus `json:"from"`
	To    models.TransactionStatus `json:"to"`
	Actor models.UserRole          `json:"actor"`
}

// edge is one outgoing arrow of a status and the roles allowed to follow it
type edge struct {
	to     models.TransactionStatus
	actors []models.UserRole
}

// statuses lists every sale status in lifecycle order
var statuses = []models.TransactionStatus{
	models.TransactionCompleted,
	models.TransactionRefunded,
}

// lifecycle maps a status to its outgoing edges. A status with no entry is terminal.
var lifecycle = map[models.TransactionStatus][]edge{
	// refund restores stock
	models.TransactionCompleted: {{to: models.TransactionRefunded, actors: []models.UserRole{models.RoleAdmin}}},
}

// ValidTransitionsFrom returns the statuses reachable from status by any role
func ValidTransitionsFrom(status models.TransactionStatus) []models.TransactionStatus {
	edges := lifecycle[status]
	nexts := make([]models.TransactionStatus, 0, len(edges))
	for _, e := range edges {
		nexts = append(nexts, e.to)
	}
	return nexts
}

// CanTransition checks if actor may move a sale from one status to another
func CanTransition(from, to models.TransactionStatus, actor models.UserRole) error {
	i := slices.IndexFunc(lifecycle[from], func(e edge) bool { return e.to == to })
	if i >= 0 && slices.Contains(lifecycle[from][i].actors, actor) {
		return nil
	}
	return errors.Newf(
		"invalid transition: %s → %s is not allowed for %s. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from),
	)
}

func describeValidFrom(status models.TransactionStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions flattens the lifecycle into one row per status, target and role
func GetAllTransitions() []Transition {
	var all []Transition
	for _, from := range statuses {
		for _, e := range lifecycle[from] {
			for _, actor := range e.actors {
				all = append(all, Transition{From: from, To: e.to, Actor: actor})
			}
		}
	}
	return all
}
