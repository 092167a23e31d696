// Package wikipedia fetches a plant summary from the Wikipedia REST API by
// scientific name.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Info struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Summary looks up the page summary for a scientific name. A missing page
// comes back as (nil, nil).
func (c *Client) Summary(ctx context.Context, scientificName string) (*Info, error) {
	endpoint := fmt.Sprintf("%s/page/summary/%s", c.baseURL, url.PathEscape(scientificName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia respondió %d", resp.StatusCode)
	}

	var page struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
		Content struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}

	return &Info{
		Title:    page.Title,
		Summary:  page.Extract,
		URL:      page.Content.Desktop.Page,
		ImageURL: page.Thumbnail.Source,
	}, nil
}
