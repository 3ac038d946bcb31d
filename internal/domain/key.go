package domain

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Key addresses exactly one record of one owner. Every single-record read or
// write goes through a Key, so a record owned by someone else is simply absent.
type Key struct {
	OwnerID uuid.UUID
	ID      uuid.UUID
}

// Scope groups the siblings a position is relative to: all lists of an owner,
// or the tasks of one list of an owner.
type Scope struct {
	OwnerID uuid.UUID
	ListID  uuid.UUID // uuid.Nil for the owner's lists
}

func ListScope(ownerID uuid.UUID) Scope {
	return Scope{OwnerID: ownerID}
}

func TaskScope(ownerID, listID uuid.UUID) Scope {
	return Scope{OwnerID: ownerID, ListID: listID}
}

// ParseID reports whether s is a usable record identifier. s must be the
// bare identifier; surrounding whitespace makes it invalid.
func ParseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// NormalizeTitle folds a title for case-insensitive uniqueness checks.
func NormalizeTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}
