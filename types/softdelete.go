package types

import "time"

// SoftDelete marks a record hidden without physically removing it.
// Embedded by every soft-deletable entity.
type SoftDelete struct {
	// IsDeleted hides the record from default listings when true.
	IsDeleted bool `json:"is_deleted" db:"is_deleted"`

	// DeletedAt is set when the record is soft-deleted and cleared on restore.
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// MarkDeleted flags the record as deleted at the given time.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &now
}

// Restore clears the deletion flag and timestamp.
func (s *SoftDelete) Restore() {
	s.IsDeleted = false
	s.DeletedAt = nil
}
