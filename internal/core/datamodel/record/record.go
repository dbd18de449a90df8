package record

import "time"

// Record is one stored entity: a card or a payment serialized as JSON.
type Record struct {
	Collection string    `gorm:"column:collection;primaryKey;size:32"`
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	Data       string    `gorm:"column:data;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "records"
}
