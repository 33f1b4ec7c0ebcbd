package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nekomata/nekomata/app/services"
	"github.com/nekomata/nekomata/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClientConfig(baseURL string) *config.CatAPIConfig {
	return &config.CatAPIConfig{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		PageLimit: 5,
		Timeout:   5 * time.Second,
	}
}

func TestCatAPIClientListImages(t *testing.T) {
	t.Run("SendsKeyAndQueryParams", func(t *testing.T) {
		var gotPath, gotKey, gotLimit, gotHasBreeds string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-api-key")
			gotLimit = r.URL.Query().Get("limit")
			gotHasBreeds = r.URL.Query().Get("has_breeds")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"abc","url":"https://cdn.example/abc.jpg","width":640,"height":480,
				"breeds":[{"name":"Bengal","temperament":"Alert, Agile"}]}]`))
		}))
		defer server.Close()

		client := services.NewCatAPIClient(newTestClientConfig(server.URL))
		items, err := client.ListImages(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "/images/search", gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "5", gotLimit)
		assert.Equal(t, "1", gotHasBreeds)

		require.Len(t, items, 1)
		assert.Equal(t, "abc", items[0].ID)
		assert.Equal(t, 640, items[0].Width)
		require.Len(t, items[0].Breeds, 1)
		assert.Equal(t, "Alert, Agile", items[0].Breeds[0].Temperament)
	})

	t.Run("MissingBreedsDecodesToEmpty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":"nobreed","url":"https://cdn.example/n.jpg","width":1,"height":1}]`))
		}))
		defer server.Close()

		client := services.NewCatAPIClient(newTestClientConfig(server.URL))
		items, err := client.ListImages(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Empty(t, items[0].Breeds)
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := services.NewCatAPIClient(newTestClientConfig(server.URL))
		_, err := client.ListImages(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"an array"`))
		}))
		defer server.Close()

		client := services.NewCatAPIClient(newTestClientConfig(server.URL))
		_, err := client.ListImages(context.Background())
		require.Error(t, err)
	})
}

func TestCatAPIClientDownloadImage(t *testing.T) {
	t.Run("ReturnsBody", func(t *testing.T) {
		payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(payload)
		}))
		defer server.Close()

		client := services.NewCatAPIClient(newTestClientConfig(server.URL))
		data, err := client.DownloadImage(context.Background(), server.URL+"/cat.jpg")
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := services.NewCatAPIClient(newTestClientConfig(server.URL))
		_, err := client.DownloadImage(context.Background(), server.URL+"/gone.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
