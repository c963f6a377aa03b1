package shared

import "fmt"

// Violation explains why a destructive operation was refused. It is a value,
// not an error: callers check for it before deleting.
type Violation struct {
	Entity     string `json:"entity"`
	ID         string `json:"id"`
	Reason     string `json:"reason"`
	Dependency string `json:"dependency"`
	Dependents int    `json:"dependents"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s cannot be deleted: %s", v.Entity, v.ID, v.Reason)
}
