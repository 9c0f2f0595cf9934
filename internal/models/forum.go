package models

import (
	"time"

	"github.com/google/uuid"
)

// Area is a top-level forum category. Areas are seeded (cmd/seed) and never
// mutated by the forum service itself.
type Area struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// Thread is a titled discussion inside an area. A thread is created together
// with its first message in one transaction and is never edited or deleted
// afterwards.
type Thread struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	AreaID    int64     `gorm:"not null;index" json:"area_id"`
	CreatedAt time.Time `json:"created_at"`

	Area Area `gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE" json:"-"`
}

type Message struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ThreadID int64  `gorm:"not null;index" json:"thread_id"`
	// UserID is nil for anonymous authorship (permitted when a thread is
	// opened by a visitor without a session user).
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`

	Thread Thread `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}
