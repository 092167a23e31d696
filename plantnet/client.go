// Package plantnet calls the PlantNet identification API with one or more
// plant photos and relays the raw identification result.
package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Config struct {
	APIURL         string
	APIKey         string
	IncludeRelated bool
	Language       string
	NbResults      int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Image is one photo to identify. Organ stays "auto" unless the caller
// knows better.
type Image struct {
	Filename string
	Data     []byte
}

func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("include-related-images", strconv.FormatBool(c.cfg.IncludeRelated))
	q.Set("no-reject", "false")
	q.Set("nb-results", strconv.Itoa(c.cfg.NbResults))
	q.Set("lang", c.cfg.Language)
	q.Set("api-key", c.cfg.APIKey)
	return c.cfg.APIURL + "?" + q.Encode()
}

// Identify posts the images as multipart form data and returns the API's
// JSON body untouched.
func (c *Client) Identify(ctx context.Context, images []Image) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, img := range images {
		part, err := writer.CreateFormFile("images", img.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, err
		}
		if err := writer.WriteField("organs", "auto"); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plantnet respondió %d: %s", resp.StatusCode, payload)
	}

	if !json.Valid(payload) {
		return nil, fmt.Errorf("respuesta de plantnet no es JSON válido")
	}

	return json.RawMessage(payload), nil
}
