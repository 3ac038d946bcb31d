package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is an ordered container of tasks owned by a single user.
type List struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lists_owner_title,priority:1"`
	Title     string    `gorm:"not null"`
	TitleKey  string    `gorm:"not null;uniqueIndex:idx_lists_owner_title,priority:2"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.TitleKey = NormalizeTitle(l.Title)
	return nil
}
