package pins

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/vigilmap/vigil/internal/apierr"
	"github.com/vigilmap/vigil/internal/geo"
	"github.com/vigilmap/vigil/internal/requester"

	"go.uber.org/fx"
)

// ListOptions narrow a pin listing. All fields are optional; the zero
// value lists everything the acting identity may see.
type ListOptions struct {
	BBox   *geo.Bounds
	Search string
	Status string
}

// CreateRequest is the body of a pin submission. New pins always start
// pending and non-public; an admin promotes them server-side.
type CreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Status      string   `json:"status"`
	IsPublic    bool     `json:"is_public"`
}

// Service is the typed client for the pin endpoints, routed through the
// identity-aware request router.
type Service struct {
	router *requester.Router
}

type ServiceParams struct {
	fx.In

	Router *requester.Router
}

// NewService creates a pin service over the given router.
func NewService(params ServiceParams) *Service {
	return &Service{router: params.Router}
}

// List fetches pins visible to the acting identity. Authenticated viewers
// additionally see their own pending pins, so callers pass usesAuth
// whenever a session exists.
func (s *Service) List(ctx context.Context, usesAuth bool, opts ListOptions) ([]Pin, error) {
	query := url.Values{}
	if opts.BBox != nil {
		query.Set("in_bbox", opts.BBox.Query())
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	resp, err := s.router.Do(ctx, http.MethodGet, "/pins/", query, nil, usesAuth)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apierr.FromResponse(resp.StatusCode, resp.Body)
	}

	var list []Pin
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode pin list: %w", err)
	}
	return list, nil
}

// Create submits a draft. Coordinates are rounded to six decimals, the
// precision the service stores.
func (s *Service) Create(ctx context.Context, draft Draft, title, description string) (Pin, error) {
	body := CreateRequest{
		Title:       title,
		Description: description,
		Images:      []string{},
		Lat:         round6(draft.Lat),
		Lng:         round6(draft.Lng),
		Status:      StatusPending,
		IsPublic:    false,
	}

	resp, err := s.router.Do(ctx, http.MethodPost, "/pins/", nil, body, true)
	if err != nil {
		return Pin{}, err
	}
	if !resp.OK() {
		return Pin{}, apierr.FromResponse(resp.StatusCode, resp.Body)
	}

	var pin Pin
	if err := json.Unmarshal(resp.Body, &pin); err != nil {
		return Pin{}, fmt.Errorf("failed to decode created pin: %w", err)
	}
	return pin, nil
}

// Confirm adds the viewer's confirmation and returns the authoritative pin.
func (s *Service) Confirm(ctx context.Context, id int64) (Pin, error) {
	return s.toggleConfirm(ctx, http.MethodPost, id)
}

// Unconfirm withdraws the viewer's confirmation and returns the
// authoritative pin.
func (s *Service) Unconfirm(ctx context.Context, id int64) (Pin, error) {
	return s.toggleConfirm(ctx, http.MethodDelete, id)
}

func (s *Service) toggleConfirm(ctx context.Context, method string, id int64) (Pin, error) {
	path := fmt.Sprintf("/pins/%d/confirm/", id)
	resp, err := s.router.Do(ctx, method, path, nil, nil, true)
	if err != nil {
		return Pin{}, err
	}
	if !resp.OK() {
		return Pin{}, apierr.FromResponse(resp.StatusCode, resp.Body)
	}

	var pin Pin
	if err := json.Unmarshal(resp.Body, &pin); err != nil {
		return Pin{}, fmt.Errorf("failed to decode confirmed pin: %w", err)
	}
	return pin, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
