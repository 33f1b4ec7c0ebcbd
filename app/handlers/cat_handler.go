package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nekomata/nekomata/app/dto"
	businessflow "github.com/nekomata/nekomata/business_flow"
	"github.com/nekomata/nekomata/logger"
	"github.com/nekomata/nekomata/utils"
	"github.com/rs/zerolog"
)

// CatHandlerInterface defines the contract for cat handlers
type CatHandlerInterface interface {
	FetchCats(c fiber.Ctx) error
	GetCat(c fiber.Ctx) error
	ListCats(c fiber.Ctx) error
	ExportCats(c fiber.Ctx) error
}

// CatHandler handles cat-related HTTP requests
type CatHandler struct {
	ingestionFlow businessflow.IngestionFlow
	catalogFlow   businessflow.CatalogFlow
	validator     *validator.Validate
	log           zerolog.Logger
}

// NewCatHandler creates a new cat handler
func NewCatHandler(ingestionFlow businessflow.IngestionFlow, catalogFlow businessflow.CatalogFlow) CatHandlerInterface {
	return &CatHandler{
		ingestionFlow: ingestionFlow,
		catalogFlow:   catalogFlow,
		validator:     validator.New(),
		log:           logger.For("handler"),
	}
}

func (h *CatHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CatHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// FetchCats triggers one ingestion run against the upstream provider
// @Summary Fetch Cats
// @Description Pull one batch of cats with breed data from the upstream provider into the store
// @Tags Cats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.IngestionSummary} "Cats fetched and saved"
// @Failure 502 {object} dto.APIResponse "Upstream provider unavailable"
// @Failure 500 {object} dto.APIResponse "Store failure"
// @Router /api/v1/cats/fetch [post]
func (h *CatHandler) FetchCats(c fiber.Ctx) error {
	ctx := h.createRequestContextWithTimeout(c, "/api/v1/cats/fetch", 120*time.Second)

	summary, err := h.ingestionFlow.RunIngestion(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("ingestion run failed")
		if businessflow.IsUpstreamUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch cats from upstream provider", "UPSTREAM_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save cats", "STORE_UNAVAILABLE", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Cats fetched and saved successfully", summary)
}

// GetCat returns one cat by its database id
// @Summary Get Cat
// @Description Get a specific cat with its tags by database id
// @Tags Cats
// @Produce json
// @Param id path int true "Cat ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetCatResponse} "Cat retrieved"
// @Failure 404 {object} dto.APIResponse "Cat not found"
// @Failure 500 {object} dto.APIResponse "Store failure"
// @Router /api/v1/cats/{id} [get]
func (h *CatHandler) GetCat(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/cats/:id")

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid cat id", "INVALID_REQUEST", nil)
	}

	res, err := h.catalogFlow.GetCat(ctx, uint(id))
	if err != nil {
		if businessflow.IsCatNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Cat was not found", "CAT_NOT_FOUND", nil)
		}
		h.log.Error().Err(err).Uint64("cat_id", id).Msg("get cat failed")
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up cat", "STORE_UNAVAILABLE", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Cat retrieved successfully", res)
}

// ListCats returns a page of cats, optionally filtered by tag
// @Summary List Cats
// @Description Paginated cats ordered by database id; optional case-insensitive tag filter. An empty array is a valid answer.
// @Tags Cats
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Cats per page (default 10, max 100)"
// @Param tag query string false "Tag the cats must have"
// @Success 200 {object} dto.APIResponse{data=dto.ListCatsResponse} "Page with cats retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid paging parameters"
// @Failure 500 {object} dto.APIResponse "Store failure"
// @Router /api/v1/cats [get]
func (h *CatHandler) ListCats(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/cats")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	req := dto.ListCatsRequest{
		Page:     utils.DefaultPage,
		PageSize: utils.DefaultPageSize,
		Tag:      c.Query("tag"),
	}
	if v, err := strconv.Atoi(c.Query("page", strconv.Itoa(utils.DefaultPage))); err == nil {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("pageSize", strconv.Itoa(utils.DefaultPageSize))); err == nil {
		req.PageSize = v
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.catalogFlow.ListCats(ctx, &req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid paging parameters", "VALIDATION_ERROR", nil)
		}
		h.log.Error().Err(err).Msg("list cats failed")
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list cats", "STORE_UNAVAILABLE", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Cats retrieved successfully", res)
}

// ExportCats streams the catalog as an xlsx workbook
// @Summary Export Cats
// @Description Download the whole catalog (metadata and tags, no image bytes) as an Excel workbook
// @Tags Cats
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Workbook"
// @Failure 500 {object} dto.APIResponse "Store failure"
// @Router /api/v1/cats/export [get]
func (h *CatHandler) ExportCats(c fiber.Ctx) error {
	ctx := h.createRequestContextWithTimeout(c, "/api/v1/cats/export", 60*time.Second)

	data, err := h.catalogFlow.ExportCats(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("export failed")
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export cats", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="cats.xlsx"`)
	return c.Send(data)
}

func (h *CatHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CatHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	_ = cancel // released when the request-scoped work finishes or times out
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
