// Package pins holds the pin domain: records, the in-memory store, the
// typed API surface and the optimistic confirmation engine.
package pins

import (
	"time"
)

// ColorTier is the severity category derived from the confirmation count.
type ColorTier string

const (
	TierGray   ColorTier = "gray"
	TierBlue   ColorTier = "blue"
	TierYellow ColorTier = "yellow"
	TierOrange ColorTier = "orange"
	TierRed    ColorTier = "red"
)

// Pin statuses the client distinguishes. The server may report others;
// anything not active is simply not confirmable.
const (
	StatusPending = "pending"
	StatusActive  = "active"
)

// TierForCount maps a confirmation count to its color tier. Pure, total,
// monotonic over the count.
func TierForCount(count int) ColorTier {
	switch {
	case count <= 0:
		return TierGray
	case count == 1:
		return TierBlue
	case count == 2:
		return TierYellow
	case count <= 5:
		return TierOrange
	default:
		return TierRed
	}
}

// Pin is a map-anchored annotation. The server assigns the id and owns the
// authoritative confirmation count and tier; the client mirrors them.
type Pin struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category,omitempty"`
	Lat                float64   `json:"lat"`
	Lng                float64   `json:"lng"`
	Tags               []string  `json:"tags,omitempty"`
	Rating             *float64  `json:"rating,omitempty"`
	Images             []string  `json:"images"`
	Status             string    `json:"status"`
	IsPublic           bool      `json:"is_public"`
	CreatedBy          int64     `json:"created_by"`
	CreatedAt          time.Time `json:"created_at,omitzero"`
	ConfirmationsCount int       `json:"confirmations_count"`
	UserConfirmed      bool      `json:"user_confirmed"`
	Color              ColorTier `json:"color"`
}

// OwnedBy reports whether the given viewer created this pin.
func (p *Pin) OwnedBy(userID int64) bool { return p.CreatedBy == userID }

// Confirmable reports whether the pin accepts confirmations at all.
func (p *Pin) Confirmable() bool { return p.Status == StatusActive }

// Draft is an uncommitted pin location awaiting form completion. It exists
// only between a map click and submission or cancellation.
type Draft struct {
	Lat float64
	Lng float64
}
