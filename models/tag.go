package models

import "time"

// Tag represents a temperament label derived from upstream breed metadata.
// Table: tags
// Name keeps the casing the provider sent; lookups compare case-insensitively,
// so "Playful" and "playful" resolve to the same row.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index:idx_tags_name" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tags_created_at" json:"created_at"`

	CatTags []CatTag `gorm:"foreignKey:TagID" json:"cat_tags,omitempty"`
}

func (Tag) TableName() string { return "tags" }

// TagFilter represents filter criteria for tag queries
type TagFilter struct {
	ID            *uint
	Name          *string // matched case-insensitively
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
