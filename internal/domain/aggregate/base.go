package aggregate

import (
	"fmt"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
)

// Aggregate is implemented by every persisted root. Stores use the
// version for optimistic concurrency: a save succeeds only when the stored
// version equals the version the aggregate was loaded with.
type Aggregate interface {
	GetID() string
	GetVersion() int
	SetVersion(int)
}

// Base carries identity, version and timestamps for an aggregate root.
type Base struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBase(id string) Base {
	now := time.Now().UTC()
	return Base{ID: id, CreatedAt: now, UpdatedAt: now}
}

func (b *Base) GetID() string    { return b.ID }
func (b *Base) GetVersion() int  { return b.Version }
func (b *Base) SetVersion(v int) { b.Version = v }

// Touch records a mutation.
func (b *Base) Touch() { b.UpdatedAt = time.Now().UTC() }

// CheckVersion returns ErrConcurrentModification when the stored version
// moved since the aggregate was loaded.
func CheckVersion(kind, id string, stored, loaded int) error {
	if stored != loaded {
		return fmt.Errorf("%w: %s %s has version %d, expected %d",
			domainerr.ErrConcurrentModification, kind, id, stored, loaded)
	}
	return nil
}
