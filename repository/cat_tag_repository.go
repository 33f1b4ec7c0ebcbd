package repository

import (
	"context"
	"fmt"

	"github.com/nekomata/nekomata/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatTagRepositoryImpl implements CatTagRepository interface
type CatTagRepositoryImpl struct {
	*BaseRepository[models.CatTag, struct{}]
}

// NewCatTagRepository creates a new cat-tag association repository
func NewCatTagRepository(db *gorm.DB) CatTagRepository {
	return &CatTagRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CatTag, struct{}](db),
	}
}

// SaveIgnoreConflict inserts an association, ignoring the composite primary
// key conflict. Returns false when the (cat_id, tag_id) pair already exists,
// which covers duplicate temperament tokens within one breed string.
func (r *CatTagRepositoryImpl) SaveIgnoreConflict(ctx context.Context, catTag *models.CatTag) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cat_id"}, {Name: "tag_id"}},
		DoNothing: true,
	}).Create(catTag)
	if res.Error != nil {
		err = fmt.Errorf("failed to save cat-tag association: %w", res.Error)
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// ListByCat retrieves all associations for a cat with tags preloaded
func (r *CatTagRepositoryImpl) ListByCat(ctx context.Context, catID uint) ([]*models.CatTag, error) {
	db := r.getDB(ctx)
	var rows []*models.CatTag
	err := db.Preload("Tag").
		Where("cat_id = ?", catID).
		Order("tag_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list associations for cat %d: %w", catID, err)
	}
	return rows, nil
}

// Count returns the total number of associations
func (r *CatTagRepositoryImpl) Count(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.CatTag{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
