package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nekomata/nekomata/models"
	"gorm.io/gorm"
)

// TagRepositoryImpl implements TagRepository interface
type TagRepositoryImpl struct {
	*BaseRepository[models.Tag, models.TagFilter]
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &TagRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tag, models.TagFilter](db),
	}
}

// ByNameFold retrieves a tag by name, comparing case-insensitively.
// The stored casing is preserved; only the lookup folds case.
func (r *TagRepositoryImpl) ByNameFold(ctx context.Context, name string) (*models.Tag, error) {
	db := r.getDB(ctx)
	var row models.Tag
	err := db.Where("LOWER(name) = LOWER(?)", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find tag by name %q: %w", name, err)
	}
	return &row, nil
}

// FindOrCreate returns the tag with the given name (case-insensitive match) or
// inserts a new one carrying the received casing. The boolean reports whether
// a row was created.
func (r *TagRepositoryImpl) FindOrCreate(ctx context.Context, name string) (*models.Tag, bool, error) {
	tag, err := r.ByNameFold(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if tag != nil {
		return tag, false, nil
	}

	tag = &models.Tag{Name: name}
	if err := r.Save(ctx, tag); err != nil {
		return nil, false, err
	}
	return tag, true, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TagRepositoryImpl) applyFilter(query *gorm.DB, filter models.TagFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("LOWER(name) = LOWER(?)", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves tags based on filter criteria
func (r *TagRepositoryImpl) ByFilter(ctx context.Context, filter models.TagFilter, orderBy string, limit, offset int) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Tag
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of tags matching the filter
func (r *TagRepositoryImpl) Count(ctx context.Context, filter models.TagFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any tag matching the filter exists
func (r *TagRepositoryImpl) Exists(ctx context.Context, filter models.TagFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
