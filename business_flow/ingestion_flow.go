package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/nekomata/nekomata/app/dto"
	"github.com/nekomata/nekomata/app/services"
	"github.com/nekomata/nekomata/logger"
	"github.com/nekomata/nekomata/models"
	"github.com/nekomata/nekomata/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	// Ingestion run outcomes partitioned by result
	ingestionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"},
	)

	// Per-item outcomes across all runs
	ingestionItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_items_total",
			Help: "Total number of upstream items processed by outcome",
		},
		[]string{"outcome"},
	)

	ingestionTagsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_tags_created_total",
			Help: "Total number of new tags created during ingestion",
		},
	)
)

// IngestionFlow defines the pipeline that pulls cats from the upstream
// provider into the store.
type IngestionFlow interface {
	RunIngestion(ctx context.Context) (*dto.IngestionSummary, error)
}

// IngestionFlowImpl implements IngestionFlow
type IngestionFlowImpl struct {
	catRepo    repository.CatRepository
	tagRepo    repository.TagRepository
	catTagRepo repository.CatTagRepository
	client     services.CatAPIClient
	db         *gorm.DB
	log        zerolog.Logger
}

// NewIngestionFlow creates a new ingestion flow instance
func NewIngestionFlow(
	catRepo repository.CatRepository,
	tagRepo repository.TagRepository,
	catTagRepo repository.CatTagRepository,
	client services.CatAPIClient,
	db *gorm.DB,
) IngestionFlow {
	return &IngestionFlowImpl{
		catRepo:    catRepo,
		tagRepo:    tagRepo,
		catTagRepo: catTagRepo,
		client:     client,
		db:         db,
		log:        logger.For("ingestion"),
	}
}

// RunIngestion executes one ingestion run: a single bounded list call,
// then per item an idempotency check, an image download, and one transaction
// covering the cat row, its tags, and their associations.
//
// Failure policy: a failed image download isolates that item (no rows are
// written for it, the run continues); a store failure aborts the run, with
// all previously committed items intact. The list call is never retried here;
// the scheduler owns retry policy.
func (f *IngestionFlowImpl) RunIngestion(ctx context.Context) (*dto.IngestionSummary, error) {
	runID := uuid.New().String()
	log := f.log.With().Str("run_id", runID).Logger()

	items, err := f.client.ListImages(ctx)
	if err != nil {
		ingestionRunsTotal.WithLabelValues("upstream_error").Inc()
		return nil, NewBusinessError("UPSTREAM_UNAVAILABLE", "Failed to fetch cats from upstream provider",
			fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err))
	}
	if len(items) == 0 {
		ingestionRunsTotal.WithLabelValues("upstream_empty").Inc()
		return nil, NewBusinessError("UPSTREAM_UNAVAILABLE", "Upstream provider returned an empty batch",
			fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ErrEmptyUpstreamBatch))
	}

	log.Info().Int("batch_size", len(items)).Msg("ingestion run started")

	summary := &dto.IngestionSummary{RunID: runID}

	for _, item := range items {
		if item.ID == "" {
			summary.Failed++
			ingestionItemsTotal.WithLabelValues("malformed").Inc()
			log.Warn().Str("url", item.URL).Msg("item without id skipped")
			continue
		}

		exists, err := f.catRepo.ExistsByExternalID(ctx, item.ID)
		if err != nil {
			ingestionRunsTotal.WithLabelValues("store_error").Inc()
			return nil, NewBusinessError("STORE_UNAVAILABLE", "Failed to check for existing cat", err)
		}
		if exists {
			summary.Skipped++
			ingestionItemsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		imageBytes, err := f.client.DownloadImage(ctx, item.URL)
		if err != nil {
			// Item isolation: no cat row without its image, run continues.
			summary.Failed++
			ingestionItemsTotal.WithLabelValues("download_failed").Inc()
			log.Warn().Err(fmt.Errorf("%w: %w", ErrImageDownloadFailed, err)).
				Str("external_id", item.ID).Str("url", item.URL).
				Msg("image download failed, item skipped")
			continue
		}

		if format, w, h, ok := sniffImage(imageBytes); ok {
			log.Debug().Str("external_id", item.ID).Str("format", format).
				Int("width", w).Int("height", h).Msg("image decoded")
		}

		var tagsCreated int
		inserted := false
		err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			cat := &models.Cat{
				ExternalID: item.ID,
				Width:      item.Width,
				Height:     item.Height,
				Image:      imageBytes,
			}

			created, err := f.catRepo.SaveIgnoreConflict(txCtx, cat)
			if err != nil {
				return err
			}
			if !created {
				// A concurrent run won the insert between the existence
				// check and here; treat as skipped.
				return nil
			}
			inserted = true

			for _, token := range TemperamentTokens(item.Breeds) {
				tag, createdTag, err := f.tagRepo.FindOrCreate(txCtx, token)
				if err != nil {
					return err
				}
				if createdTag {
					tagsCreated++
				}
				if _, err := f.catTagRepo.SaveIgnoreConflict(txCtx, &models.CatTag{
					CatID: cat.ID,
					TagID: tag.ID,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			ingestionRunsTotal.WithLabelValues("store_error").Inc()
			return nil, NewBusinessError("STORE_UNAVAILABLE", "Failed to persist cat", err)
		}

		if inserted {
			summary.Inserted++
			summary.TagsCreated += tagsCreated
			ingestionItemsTotal.WithLabelValues("inserted").Inc()
			ingestionTagsCreated.Add(float64(tagsCreated))
		} else {
			summary.Skipped++
			ingestionItemsTotal.WithLabelValues("skipped").Inc()
		}
	}

	ingestionRunsTotal.WithLabelValues("success").Inc()
	summary.Message = "Cats fetched and saved successfully"
	log.Info().Int("inserted", summary.Inserted).Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).Int("tags_created", summary.TagsCreated).
		Msg("ingestion run finished")

	return summary, nil
}

// TemperamentTokens extracts candidate tag names from breed metadata: the
// first breed's temperament string is split on commas, each piece trimmed,
// empty pieces dropped. Items without breeds or with an empty temperament
// yield no tokens.
func TemperamentTokens(breeds []services.Breed) []string {
	if len(breeds) == 0 {
		return nil
	}
	temperament := breeds[0].Temperament
	if temperament == "" {
		return nil
	}

	var tokens []string
	for _, piece := range strings.Split(temperament, ",") {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

// sniffImage decodes the image header to report format and dimensions.
// Undecodable bytes are not an error; the provider occasionally serves
// encodings outside jpeg/png/gif/webp and raw bytes are stored regardless.
func sniffImage(data []byte) (format string, width, height int, ok bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, false
	}
	return format, cfg.Width, cfg.Height, true
}
