// Package shared holds the value types every ledger entity builds on.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every persisted ledger entity through Base.
type Entity interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetCreatedAt() time.Time
	SetCreatedAt(t time.Time)
	SetUpdatedAt(t time.Time)
}

// Base carries the identity and audit timestamps assigned by the repository.
type Base struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) GetID() uuid.UUID { return b.ID }
func (b *Base) SetID(id uuid.UUID) { b.ID = id }
func (b *Base) GetCreatedAt() time.Time { return b.CreatedAt }
func (b *Base) SetCreatedAt(t time.Time) { b.CreatedAt = t }
func (b *Base) SetUpdatedAt(t time.Time) { b.UpdatedAt = t }
