// Package models contains the database entities for the cat catalog.
package models

import "time"

// Cat represents a single catalog entry fetched from the upstream image API.
// Table: cats
// external_id is the upstream provider's identifier and the natural dedup key;
// it carries a unique index so concurrent ingestion runs cannot double-insert.
// Rows are insert-only; nothing updates or deletes a cat after creation.
type Cat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"size:255;not null;uniqueIndex:uk_cats_external_id" json:"external_id"`
	Width      int       `gorm:"not null" json:"width"`
	Height     int       `gorm:"not null" json:"height"`
	Image      []byte    `gorm:"type:bytea" json:"image,omitempty"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_cats_created_at" json:"created_at"`

	CatTags []CatTag `gorm:"foreignKey:CatID;constraint:OnDelete:CASCADE" json:"cat_tags,omitempty"`
}

func (Cat) TableName() string { return "cats" }

// CatFilter represents filter criteria for cat queries
type CatFilter struct {
	ID            *uint
	ExternalID    *string
	TagName       *string // matched case-insensitively against associated tag names
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
