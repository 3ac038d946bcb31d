package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task belongs to one list of its owner. Title uniqueness is enforced per
// owner, not per list.
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tasks_owner_title,priority:1;index:idx_tasks_owner_list,priority:1"`
	ListID      uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_owner_list,priority:2"`
	Title       string    `gorm:"not null"`
	TitleKey    string    `gorm:"not null;uniqueIndex:idx_tasks_owner_title,priority:2"`
	Description string    `gorm:"not null"`
	Position    int       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.TitleKey = NormalizeTitle(t.Title)
	return nil
}
