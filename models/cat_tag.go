package models

// CatTag is the association between a cat and a tag.
// Table: cat_tags
// The composite primary key (cat_id, tag_id) guarantees a cat is never tagged
// with the same tag twice, even when the upstream temperament string repeats
// a token.
type CatTag struct {
	CatID uint `gorm:"primaryKey;autoIncrement:false" json:"cat_id"`
	TagID uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`

	Cat *Cat `gorm:"foreignKey:CatID;constraint:OnDelete:CASCADE" json:"cat,omitempty"`
	Tag *Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

func (CatTag) TableName() string { return "cat_tags" }
