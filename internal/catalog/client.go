package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/utils"
)

// Client is a read-only client for the external book catalog (Google Books
// volumes API). The rest of the system treats catalog records as immutable
// and only snapshots their display fields.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New creates a catalog client. baseURL is the API root without a trailing
// slash (ex: "https://www.googleapis.com/books/v1"); apiKey may be empty for
// the unauthenticated quota.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Search runs a free-text query and returns up to max results.
func (c *Client) Search(ctx context.Context, query string, max int) ([]*domain.Book, error) {
	if max <= 0 {
		max = 20
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(max))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/volumes?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(resp.Items))
	for i := range resp.Items {
		books = append(books, mapVolume(&resp.Items[i]))
	}
	return books, nil
}

// Volume looks up a single catalog entry by id. Returns
// domain.ErrItemUnavailable when the catalog has no such volume.
func (c *Client) Volume(ctx context.Context, id string) (*domain.Book, error) {
	u := c.baseURL + "/volumes/" + url.PathEscape(id)
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}

	var v volume
	if err := c.getJSON(ctx, u, &v); err != nil {
		return nil, err
	}
	if v.ID == "" {
		return nil, domain.ErrItemUnavailable
	}
	return mapVolume(&v), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrItemUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for diagnostics; catalog errors are
		// JSON blobs we do not want to log in full.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("catalog returned %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

func mapVolume(v *volume) *domain.Book {
	thumb := v.VolumeInfo.ImageLinks.Thumbnail
	if thumb == "" {
		thumb = v.VolumeInfo.ImageLinks.SmallThumbnail
	}
	return &domain.Book{
		ID:            v.ID,
		Title:         v.VolumeInfo.Title,
		Authors:       v.VolumeInfo.Authors,
		ThumbnailURL:  domain.NormalizeThumbnail(thumb),
		Publisher:     v.VolumeInfo.Publisher,
		Description:   v.VolumeInfo.Description,
		PublishedDate: v.VolumeInfo.PublishedDate,
	}
}
