package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page/summary/Rosa canina", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"title": "Rosa canina",
			"extract": "La rosa silvestre es un arbusto espinoso.",
			"content_urls": {"desktop": {"page": "https://es.wikipedia.org/wiki/Rosa_canina"}},
			"thumbnail": {"source": "https://img.test/rosa.jpg"}
		}`))
	}))
	defer server.Close()

	info, err := NewClient(server.URL).Summary(context.Background(), "Rosa canina")
	require.NoError(t, err)
	require.Equal(t, "Rosa canina", info.Title)
	require.Equal(t, "La rosa silvestre es un arbusto espinoso.", info.Summary)
	require.Equal(t, "https://es.wikipedia.org/wiki/Rosa_canina", info.URL)
	require.Equal(t, "https://img.test/rosa.jpg", info.ImageURL)
}

func TestSummaryMissingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	info, err := NewClient(server.URL).Summary(context.Background(), "Planta inventada")
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestSummaryUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Summary(context.Background(), "Rosa canina")
	require.Error(t, err)
}
