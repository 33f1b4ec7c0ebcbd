// Package testing provides test utilities and database setup for testing the catalog service
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/nekomata/nekomata/models"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCat creates a cat with a random external identifier and a small image payload
func (tf *TestFixtures) CreateTestCat() (*models.Cat, error) {
	cat := &models.Cat{
		ExternalID: fmt.Sprintf("cat_%s", uuid.New().String()[:8]),
		Width:      640,
		Height:     480,
		Image:      []byte{0x89, 0x50, 0x4E, 0x47},
	}

	if err := tf.DB.DB.Create(cat).Error; err != nil {
		return nil, fmt.Errorf("failed to create test cat: %w", err)
	}

	return cat, nil
}

// CreateTestCatWithExternalID creates a cat with a fixed external identifier
func (tf *TestFixtures) CreateTestCatWithExternalID(externalID string) (*models.Cat, error) {
	cat := &models.Cat{
		ExternalID: externalID,
		Width:      640,
		Height:     480,
		Image:      []byte{0x89, 0x50, 0x4E, 0x47},
	}

	if err := tf.DB.DB.Create(cat).Error; err != nil {
		return nil, fmt.Errorf("failed to create test cat %s: %w", externalID, err)
	}

	return cat, nil
}

// CreateTestTag creates a tag with the given name
func (tf *TestFixtures) CreateTestTag(name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name}

	if err := tf.DB.DB.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tag %s: %w", name, err)
	}

	return tag, nil
}

// TagCat associates a cat with a tag
func (tf *TestFixtures) TagCat(catID, tagID uint) (*models.CatTag, error) {
	catTag := &models.CatTag{CatID: catID, TagID: tagID}

	if err := tf.DB.DB.Create(catTag).Error; err != nil {
		return nil, fmt.Errorf("failed to associate cat %d with tag %d: %w", catID, tagID, err)
	}

	return catTag, nil
}

// CreateTaggedCat creates a cat associated with the given tag names,
// reusing tags that already exist under a different casing.
func (tf *TestFixtures) CreateTaggedCat(tagNames ...string) (*models.Cat, error) {
	cat, err := tf.CreateTestCat()
	if err != nil {
		return nil, err
	}

	for _, name := range tagNames {
		var tag models.Tag
		err := tf.DB.DB.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error
		if err != nil {
			tag = models.Tag{Name: name}
			if err := tf.DB.DB.Create(&tag).Error; err != nil {
				return nil, fmt.Errorf("failed to create tag %s: %w", name, err)
			}
		}

		if _, err := tf.TagCat(cat.ID, tag.ID); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

// CreateMultipleTestCats creates n cats with distinct external identifiers
func (tf *TestFixtures) CreateMultipleTestCats(n int) ([]*models.Cat, error) {
	cats := make([]*models.Cat, 0, n)
	for i := 0; i < n; i++ {
		cat := &models.Cat{
			ExternalID: fmt.Sprintf("cat_%d_%06d", i, rand.Intn(1000000)),
			Width:      320 + i,
			Height:     240 + i,
			Image:      []byte{0xFF, 0xD8, 0xFF},
		}
		if err := tf.DB.DB.Create(cat).Error; err != nil {
			return nil, fmt.Errorf("failed to create cat %d: %w", i, err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}
