package tests

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/nekomata/nekomata/app/dto"
	"github.com/nekomata/nekomata/app/handlers"
	businessflow "github.com/nekomata/nekomata/business_flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIngestionFlow struct {
	summary *dto.IngestionSummary
	err     error
}

func (s *stubIngestionFlow) RunIngestion(ctx context.Context) (*dto.IngestionSummary, error) {
	return s.summary, s.err
}

type stubCatalogFlow struct {
	getResp    *dto.GetCatResponse
	getErr     error
	listResp   *dto.ListCatsResponse
	listErr    error
	exportData []byte
	exportErr  error

	lastListReq *dto.ListCatsRequest
}

func (s *stubCatalogFlow) GetCat(ctx context.Context, id uint) (*dto.GetCatResponse, error) {
	return s.getResp, s.getErr
}

func (s *stubCatalogFlow) ListCats(ctx context.Context, req *dto.ListCatsRequest, metadata *businessflow.ClientMetadata) (*dto.ListCatsResponse, error) {
	s.lastListReq = req
	return s.listResp, s.listErr
}

func (s *stubCatalogFlow) ExportCats(ctx context.Context) ([]byte, error) {
	return s.exportData, s.exportErr
}

func newHandlerApp(ingestion businessflow.IngestionFlow, catalog businessflow.CatalogFlow) *fiber.App {
	h := handlers.NewCatHandler(ingestion, catalog)
	app := fiber.New()
	cats := app.Group("/api/v1/cats")
	cats.Post("/fetch", h.FetchCats)
	cats.Get("/export", h.ExportCats)
	cats.Get("/:id", h.GetCat)
	cats.Get("/", h.ListCats)
	return app
}

func decodeAPIResponse(t *testing.T, body io.Reader) dto.APIResponse {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

// errorCode digs the error code out of the untyped error field
func errorCode(t *testing.T, resp dto.APIResponse) string {
	t.Helper()
	errMap, ok := resp.Error.(map[string]any)
	require.True(t, ok)
	code, _ := errMap["code"].(string)
	return code
}

func TestFetchCatsHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ingestion := &stubIngestionFlow{summary: &dto.IngestionSummary{
			Message: "Cats fetched and saved successfully", RunID: "r1", Inserted: 3, Skipped: 1,
		}}
		app := newHandlerApp(ingestion, &stubCatalogFlow{})

		resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/cats/fetch", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.True(t, body.Success)
	})

	t.Run("UpstreamFailureIs502", func(t *testing.T) {
		ingestion := &stubIngestionFlow{err: businessflow.NewBusinessError(
			"UPSTREAM_UNAVAILABLE", "upstream down", businessflow.ErrUpstreamUnavailable)}
		app := newHandlerApp(ingestion, &stubCatalogFlow{})

		resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/cats/fetch", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.False(t, body.Success)
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", errorCode(t, body))
	})

	t.Run("StoreFailureIs500", func(t *testing.T) {
		ingestion := &stubIngestionFlow{err: businessflow.NewBusinessError(
			"STORE_UNAVAILABLE", "db down", errors.New("connection refused"))}
		app := newHandlerApp(ingestion, &stubCatalogFlow{})

		resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/cats/fetch", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetCatHandler(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		catalog := &stubCatalogFlow{getResp: &dto.GetCatResponse{
			Message: "Cat retrieved successfully",
			Cat:     dto.CatDTO{ID: 7, ExternalID: "abc", Tags: []string{"Playful"}},
		}}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/7", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		catalog := &stubCatalogFlow{getErr: businessflow.NewBusinessError(
			"CAT_NOT_FOUND", "missing", businessflow.ErrCatNotFound)}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/42", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.Equal(t, "CAT_NOT_FOUND", errorCode(t, body))
	})

	t.Run("NonNumericID", func(t *testing.T) {
		app := newHandlerApp(&stubIngestionFlow{}, &stubCatalogFlow{})

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestListCatsHandler(t *testing.T) {
	t.Run("DefaultsApplied", func(t *testing.T) {
		catalog := &stubCatalogFlow{listResp: &dto.ListCatsResponse{
			Message: "Cats retrieved successfully", Page: 1, Cats: []dto.CatDTO{},
		}}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.NotNil(t, catalog.lastListReq)
		assert.Equal(t, 1, catalog.lastListReq.Page)
		assert.Equal(t, 10, catalog.lastListReq.PageSize)
	})

	t.Run("QueryParamsForwarded", func(t *testing.T) {
		catalog := &stubCatalogFlow{listResp: &dto.ListCatsResponse{Page: 2, Cats: []dto.CatDTO{}}}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/?page=2&pageSize=50&tag=playful", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.NotNil(t, catalog.lastListReq)
		assert.Equal(t, 2, catalog.lastListReq.Page)
		assert.Equal(t, 50, catalog.lastListReq.PageSize)
		assert.Equal(t, "playful", catalog.lastListReq.Tag)
	})

	t.Run("ValidationRejectsOutOfRange", func(t *testing.T) {
		catalog := &stubCatalogFlow{}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/?page=0", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, catalog.lastListReq)

		resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/cats/?pageSize=101", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestExportCatsHandler(t *testing.T) {
	t.Run("SetsDownloadHeaders", func(t *testing.T) {
		catalog := &stubCatalogFlow{exportData: []byte("PK\x03\x04")}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/export", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "cats.xlsx")
	})

	t.Run("FailureIs500", func(t *testing.T) {
		catalog := &stubCatalogFlow{exportErr: businessflow.NewBusinessError(
			"EXPORT_FAILED", "boom", errors.New("io error"))}
		app := newHandlerApp(&stubIngestionFlow{}, catalog)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cats/export", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
