package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
)

// Client talks to the upstream card API (the Pokémon TCG API v2 shape:
// /cards?q=set.id:X and /cards/{id}, responses wrapped in {"data": ...}).
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
}

func NewClient(baseURL, apiKey string, pageSize int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.UpstreamTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		pageSize:   pageSize,
	}
}

type cardListResponse struct {
	Data []models.CardRecord `json:"data"`
}

type cardResponse struct {
	Data models.CardRecord `json:"data"`
}

// FetchSetCards fetches the card list for one set from upstream.
func (c *Client) FetchSetCards(ctx context.Context, setID string) ([]models.CardRecord, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("set.id:%s", setID))
	q.Set("pageSize", fmt.Sprintf("%d", c.pageSize))

	var out cardListResponse
	if err := c.get(ctx, "/cards?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("set %s: %w", setID, ErrNotFound)
	}
	return out.Data, nil
}

// FetchCard fetches a single card by id from upstream.
func (c *Client) FetchCard(ctx context.Context, cardID string) (*models.CardRecord, error) {
	var out cardResponse
	if err := c.get(ctx, "/cards/"+url.PathEscape(cardID), &out); err != nil {
		return nil, err
	}
	if out.Data.ID == "" {
		return nil, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
	}
	return &out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: upstream returned %d", ErrUpstreamUnavailable, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: bad upstream payload: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
