package note

import (
	"time"
)

// Note is a minimal owned resource, the reference consumer of the generic
// CRUD engine: search, filtering, pagination and per-object permissions all
// run through the same configuration every other resource would use.
type Note struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Note      string    `gorm:"column:note;not null" json:"note"`
	UserID    int64     `gorm:"column:user_id;index" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated"`
}

func (Note) TableName() string {
	return "notes"
}

type CreateNoteDTO struct {
	Note string `json:"note" validate:"required,max=2000"`
}

type UpdateNoteDTO struct {
	Note string `json:"note" validate:"required,max=2000"`
}

type NoteOutput struct {
	ID      int64     `json:"id"`
	Note    string    `json:"note"`
	UserID  int64     `json:"userId"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

func ToOutput(n *Note) NoteOutput {
	return NoteOutput{
		ID:      n.ID,
		Note:    n.Note,
		UserID:  n.UserID,
		Created: n.CreatedAt,
		Updated: n.UpdatedAt,
	}
}
