package forum

import "time"

// Topic is a forum theme. Its position in the hierarchy is not stored on the
// row; it lives only in the closure table (see TopicRelation).
type Topic struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"column:title;not null" json:"title"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Topic) TableName() string { return "topic" }
