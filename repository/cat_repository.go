package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nekomata/nekomata/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatRepositoryImpl implements CatRepository interface
type CatRepositoryImpl struct {
	*BaseRepository[models.Cat, models.CatFilter]
}

// NewCatRepository creates a new cat repository
func NewCatRepository(db *gorm.DB) CatRepository {
	return &CatRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Cat, models.CatFilter](db),
	}
}

// ByIDWithTags retrieves a cat by ID with its tag associations preloaded
func (r *CatRepositoryImpl) ByIDWithTags(ctx context.Context, id uint) (*models.Cat, error) {
	db := r.getDB(ctx)
	var row models.Cat
	err := db.Preload("CatTags").
		Preload("CatTags.Tag").
		First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cat by ID %d: %w", id, err)
	}
	return &row, nil
}

// ByExternalID retrieves a cat by the upstream provider's identifier
func (r *CatRepositoryImpl) ByExternalID(ctx context.Context, externalID string) (*models.Cat, error) {
	db := r.getDB(ctx)
	var row models.Cat
	err := db.Where("external_id = ?", externalID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cat by external ID %s: %w", externalID, err)
	}
	return &row, nil
}

// ExistsByExternalID checks whether a cat with the given external ID is already stored
func (r *CatRepositoryImpl) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.Cat{}).Where("external_id = ?", externalID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check cat existence for external ID %s: %w", externalID, err)
	}
	return count > 0, nil
}

// SaveIgnoreConflict inserts a cat, ignoring the unique index on external_id.
// Returns false when another row with the same external_id already exists.
func (r *CatRepositoryImpl) SaveIgnoreConflict(ctx context.Context, cat *models.Cat) (bool, error) {
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
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(cat)
	if res.Error != nil {
		err = fmt.Errorf("failed to save cat: %w", res.Error)
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// ListPage returns one page of cats ordered by id ascending. The ordering is
// the documented stable sort required for pagination correctness. When tagName
// is set, only cats holding an association to a tag with that name
// (case-insensitive) are returned.
func (r *CatRepositoryImpl) ListPage(ctx context.Context, page, pageSize int, tagName *string) ([]*models.Cat, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Cat{})

	if tagName != nil && *tagName != "" {
		query = query.
			Joins("JOIN cat_tags ct ON ct.cat_id = cats.id").
			Joins("JOIN tags t ON t.id = ct.tag_id").
			Where("LOWER(t.name) = LOWER(?)", *tagName).
			Distinct()
	}

	var rows []*models.Cat
	err := query.
		Order("cats.id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cats: %w", err)
	}
	return rows, nil
}

// ListWithTags returns cats ordered by id ascending with tag associations
// preloaded, for export and batch reads.
func (r *CatRepositoryImpl) ListWithTags(ctx context.Context, limit, offset int) ([]*models.Cat, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Cat{}).
		Preload("CatTags").
		Preload("CatTags.Tag").
		Order("cats.id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Cat
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list cats with tags: %w", err)
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CatRepositoryImpl) applyFilter(query *gorm.DB, filter models.CatFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("cats.id = ?", *filter.ID)
	}
	if filter.ExternalID != nil {
		query = query.Where("cats.external_id = ?", *filter.ExternalID)
	}
	if filter.TagName != nil {
		query = query.
			Joins("JOIN cat_tags ct ON ct.cat_id = cats.id").
			Joins("JOIN tags t ON t.id = ct.tag_id").
			Where("LOWER(t.name) = LOWER(?)", *filter.TagName).
			Distinct()
	}
	if filter.CreatedAfter != nil {
		query = query.Where("cats.created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("cats.created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves cats based on filter criteria
func (r *CatRepositoryImpl) ByFilter(ctx context.Context, filter models.CatFilter, orderBy string, limit, offset int) ([]*models.Cat, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Cat{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "cats.id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Cat
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of cats matching the filter
func (r *CatRepositoryImpl) Count(ctx context.Context, filter models.CatFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Cat{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any cat matching the filter exists
func (r *CatRepositoryImpl) Exists(ctx context.Context, filter models.CatFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
