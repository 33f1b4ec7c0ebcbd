package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nekomata/nekomata/app/dto"
	"github.com/nekomata/nekomata/config"
	"github.com/nekomata/nekomata/logger"
	"github.com/nekomata/nekomata/repository"
	"github.com/nekomata/nekomata/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// CatalogFlow defines read operations over the stored catalog
type CatalogFlow interface {
	GetCat(ctx context.Context, id uint) (*dto.GetCatResponse, error)
	ListCats(ctx context.Context, req *dto.ListCatsRequest, metadata *ClientMetadata) (*dto.ListCatsResponse, error)
	ExportCats(ctx context.Context) ([]byte, error)
}

// CatalogFlowImpl implements CatalogFlow
type CatalogFlowImpl struct {
	catRepo     repository.CatRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
	log         zerolog.Logger
}

// NewCatalogFlow creates a new catalog flow instance. rc may be nil, which
// disables the read-through cache.
func NewCatalogFlow(catRepo repository.CatRepository, rc *redis.Client, cacheConfig *config.CacheConfig) CatalogFlow {
	return &CatalogFlowImpl{
		catRepo:     catRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
		log:         logger.For("catalog"),
	}
}

// GetCat returns one cat by surrogate id with its tag names. A miss is
// ErrCatNotFound, never a store failure. The store is insert-only, so a
// cached hit can never be stale.
func (f *CatalogFlowImpl) GetCat(ctx context.Context, id uint) (*dto.GetCatResponse, error) {
	cacheKey := fmt.Sprintf("%s%d", utils.CatCacheKeyPrefix, id)

	if f.cacheEnabled() {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.CatDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &dto.GetCatResponse{Message: "Cat retrieved successfully", Cat: cached}, nil
			}
		}
	}

	cat, err := f.catRepo.ByIDWithTags(ctx, id)
	if err != nil {
		return nil, NewBusinessError("STORE_UNAVAILABLE", "Failed to look up cat", err)
	}
	if cat == nil {
		return nil, NewBusinessErrorf("CAT_NOT_FOUND", "Cat %d not found", ErrCatNotFound, id)
	}

	catDTO := ToCatDTO(*cat)

	if f.cacheEnabled() {
		if bs, err := json.Marshal(catDTO); err == nil {
			if err := f.rc.Set(ctx, cacheKey, bs, f.cacheConfig.TTL).Err(); err != nil {
				f.log.Warn().Err(err).Uint("cat_id", id).Msg("failed to cache cat")
			}
		}
	}

	return &dto.GetCatResponse{Message: "Cat retrieved successfully", Cat: catDTO}, nil
}

// ListCats returns one page of cats ordered by id ascending, optionally
// restricted to cats carrying the given tag (case-insensitive). An empty page
// is a normal outcome, never an error.
func (f *CatalogFlowImpl) ListCats(ctx context.Context, req *dto.ListCatsRequest, metadata *ClientMetadata) (*dto.ListCatsResponse, error) {
	if req.Page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	if req.PageSize < 1 || req.PageSize > utils.MaxPageSize {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	var tagFilter *string
	if tag := strings.TrimSpace(req.Tag); tag != "" {
		tagFilter = &tag
	}

	rows, err := f.catRepo.ListPage(ctx, req.Page, req.PageSize, tagFilter)
	if err != nil {
		return nil, NewBusinessError("STORE_UNAVAILABLE", "Failed to list cats", err)
	}

	cats := make([]dto.CatDTO, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, ToCatDTO(*row))
	}

	return &dto.ListCatsResponse{
		Message: "Cats retrieved successfully",
		Page:    req.Page,
		Cats:    cats,
	}, nil
}

const exportPageSize = 500

// ExportCats renders the whole catalog as an xlsx workbook for back-office
// use. Image bytes stay out of the sheet; only metadata and tag names go in.
func (f *CatalogFlowImpl) ExportCats(ctx context.Context) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Cats"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, NewBusinessError("EXPORT_FAILED", "Failed to prepare workbook", err)
	}

	headers := []string{"ID", "External ID", "Width", "Height", "Tags", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, h); err != nil {
			return nil, NewBusinessError("EXPORT_FAILED", "Failed to write workbook header", err)
		}
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		cats, err := f.catRepo.ListWithTags(ctx, exportPageSize, offset)
		if err != nil {
			return nil, NewBusinessError("STORE_UNAVAILABLE", "Failed to read cats for export", err)
		}
		if len(cats) == 0 {
			break
		}

		for _, cat := range cats {
			catDTO := ToCatDTO(*cat)
			values := []any{
				catDTO.ID,
				catDTO.ExternalID,
				catDTO.Width,
				catDTO.Height,
				strings.Join(catDTO.Tags, ", "),
				catDTO.CreatedAt,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := file.SetCellValue(sheet, cell, v); err != nil {
					return nil, NewBusinessError("EXPORT_FAILED", "Failed to write workbook row", err)
				}
			}
			row++
		}

		if len(cats) < exportPageSize {
			break
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXPORT_FAILED", "Failed to serialize workbook", err)
	}

	f.log.Info().Int("rows", row-2).Msg("catalog exported")
	return buf.Bytes(), nil
}

func (f *CatalogFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled
}
