// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/nekomata/nekomata/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CatRepository defines operations for cats
type CatRepository interface {
	Repository[models.Cat, models.CatFilter]
	ByIDWithTags(ctx context.Context, id uint) (*models.Cat, error)
	ByExternalID(ctx context.Context, externalID string) (*models.Cat, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	// SaveIgnoreConflict inserts a cat and reports false when a row with the
	// same external_id already exists. The unique index makes this race-safe
	// under concurrent ingestion runs.
	SaveIgnoreConflict(ctx context.Context, cat *models.Cat) (bool, error)
	ListPage(ctx context.Context, page, pageSize int, tagName *string) ([]*models.Cat, error)
	ListWithTags(ctx context.Context, limit, offset int) ([]*models.Cat, error)
}

// TagRepository defines operations for tags
type TagRepository interface {
	Repository[models.Tag, models.TagFilter]
	ByNameFold(ctx context.Context, name string) (*models.Tag, error)
	FindOrCreate(ctx context.Context, name string) (*models.Tag, bool, error)
}

// CatTagRepository defines operations for cat-tag associations
type CatTagRepository interface {
	SaveIgnoreConflict(ctx context.Context, catTag *models.CatTag) (bool, error)
	ListByCat(ctx context.Context, catID uint) ([]*models.CatTag, error)
	Count(ctx context.Context) (int64, error)
}
