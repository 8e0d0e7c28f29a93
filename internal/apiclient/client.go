// Package apiclient is the HTTP client for the wishlist API. It provides the
// request functions the sync layer hands to the mutation executor, and the
// fetchers that back cached surfaces.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/pkg/httpclient"
)

const serviceName = "wishlist-api"

// Client talks to the wishlist API through a circuit breaker.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

func New(baseURL string, cbClient *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    cbClient,
		logger:  logger,
	}
}

// AddToWishlist adds the recommendation to the wishlist and returns the
// authoritative membership after the change. A 404 means the wishlist no
// longer exists; callers treat that as a stale quick-save target.
func (c *Client) AddToWishlist(ctx context.Context, wishlistID, recommendationID string) (domain.Membership, error) {
	return c.membershipRequest(ctx, http.MethodPost, wishlistID, recommendationID)
}

// RemoveFromWishlist takes the recommendation out of the wishlist and returns
// the remaining membership.
func (c *Client) RemoveFromWishlist(ctx context.Context, wishlistID, recommendationID string) (domain.Membership, error) {
	return c.membershipRequest(ctx, http.MethodDelete, wishlistID, recommendationID)
}

func (c *Client) membershipRequest(ctx context.Context, method, wishlistID, recommendationID string) (domain.Membership, error) {
	u := fmt.Sprintf("%s/api/v1/wishlists/%s/recommendations/%s",
		c.baseURL, url.PathEscape(wishlistID), url.PathEscape(recommendationID))

	var membership domain.Membership
	if err := c.doJSON(ctx, method, u, nil, &membership); err != nil {
		return domain.Membership{}, err
	}
	return membership, nil
}

// GetRecommendation fetches the detail payload backing the detail surface.
func (c *Client) GetRecommendation(ctx context.Context, slug string) (domain.Recommendation, error) {
	u := fmt.Sprintf("%s/api/v1/recommendations/%s", c.baseURL, url.PathEscape(slug))

	var rec domain.Recommendation
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &rec); err != nil {
		return domain.Recommendation{}, err
	}
	return rec, nil
}

// ListWishlists fetches the user's wishlists. A non-empty recommendationID
// requests the filtered variant that carries the contains flag.
func (c *Client) ListWishlists(ctx context.Context, recommendationID string) ([]domain.Wishlist, error) {
	u := c.baseURL + "/api/v1/wishlists"
	if recommendationID != "" {
		u += "?recommendation_id=" + url.QueryEscape(recommendationID)
	}

	var wishlists []domain.Wishlist
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &wishlists); err != nil {
		return nil, err
	}
	return wishlists, nil
}

// CreateWishlist creates a wishlist and returns it.
func (c *Client) CreateWishlist(ctx context.Context, name string) (domain.Wishlist, error) {
	body := map[string]string{"name": name}

	var wishlist domain.Wishlist
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/wishlists", body, &wishlist); err != nil {
		return domain.Wishlist{}, err
	}
	return wishlist, nil
}

// DeleteWishlist deletes a wishlist.
func (c *Client) DeleteWishlist(ctx context.Context, wishlistID string) error {
	u := c.baseURL + "/api/v1/wishlists/" + url.PathEscape(wishlistID)
	return c.doJSON(ctx, http.MethodDelete, u, nil, nil)
}

// envelope mirrors the API's response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s: %w", serviceName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s response data: %w", serviceName, err)
	}
	return nil
}
