package task

import "github.com/BruksfildServices01/dealer-crm/internal/httperr"

type Type string

const TypeN1Reminder Type = "n_minus_1_reminder"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Tasks only ever move forward.
var transitionMap = map[Status][]Status{
	StatusPending:   {StatusCompleted},
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := transitionMap[s]
	return ok
}

// ValidateTransition checks from -> to is allowed.
func ValidateTransition(from, to Status) error {
	for _, next := range transitionMap[from] {
		if next == to {
			return nil
		}
	}
	return httperr.ErrValidation("invalid_task_transition", "task cannot move from "+string(from)+" to "+string(to))
}
