package failure

import (
	"time"

	"github.com/google/uuid"
)

// Operation names the persistence step that failed.
type Operation string

const (
	OperationLoad         Operation = "load"
	OperationSave         Operation = "save"
	OperationDelete       Operation = "delete"
	OperationOpeningValue Operation = "update_opening_value"
	OperationSeed         Operation = "seed"
)

// Event records one persistence failure that was absorbed instead of surfaced.
type Event struct {
	EventID    uuid.UUID `json:"event_id" bson:"event_id"`
	Entity     string    `json:"entity" bson:"entity"`
	Operation  Operation `json:"operation" bson:"operation"`
	UserID     string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Backend    string    `json:"backend" bson:"backend"`
	Kind       string    `json:"kind" bson:"kind"`
	Message    string    `json:"message" bson:"message"`
	Items      int       `json:"items,omitempty" bson:"items,omitempty"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)
