package pins

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilmap/vigil/internal/apierr"
)

func activePin(id, owner int64, count int, confirmed bool) Pin {
	return Pin{
		ID:                 id,
		Title:              "pin",
		Status:             StatusActive,
		CreatedBy:          owner,
		ConfirmationsCount: count,
		UserConfirmed:      confirmed,
		Color:              TierForCount(count),
	}
}

func TestToggleRequiresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	h := newHarness(t, server.URL, "", "")
	h.pinStore.ReplaceAll([]Pin{activePin(1, 9, 0, false)})

	require.NoError(t, h.engine.Toggle(context.Background(), 1))

	require.Len(t, h.notifier.msgs, 1)
	assert.Contains(t, h.notifier.msgs[0], "signed in")
	pin, _ := h.pinStore.Get(1)
	assert.Zero(t, pin.ConfirmationsCount)
}

func TestToggleOwnPinIsASilentNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	access := signedToken(t, 7, time.Now().Add(time.Hour))
	h := newHarness(t, server.URL, access, "refresh")
	h.pinStore.ReplaceAll([]Pin{activePin(1, 7, 3, false)})

	require.NoError(t, h.engine.Toggle(context.Background(), 1))

	assert.Empty(t, h.notifier.msgs)
	pin, _ := h.pinStore.Get(1)
	assert.Equal(t, 3, pin.ConfirmationsCount, "confirmations unchanged")
}

func TestToggleInactivePinIsASilentNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	access := signedToken(t, 7, time.Now().Add(time.Hour))
	h := newHarness(t, server.URL, access, "refresh")

	pending := activePin(1, 9, 0, false)
	pending.Status = StatusPending
	h.pinStore.ReplaceAll([]Pin{pending})

	require.NoError(t, h.engine.Toggle(context.Background(), 1))
	assert.Empty(t, h.notifier.msgs)
}

func TestToggleConfirmReconciles(t *testing.T) {
	var sawMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawMethod = r.Method
		require.Equal(t, "/pins/1/confirm/", r.URL.Path)
		// the server is authoritative for count and tier
		_ = json.NewEncoder(w).Encode(Pin{
			ID: 1, Title: "pin", Status: StatusActive, CreatedBy: 9,
			ConfirmationsCount: 2, UserConfirmed: true, Color: TierYellow,
		})
	}))
	defer server.Close()

	access := signedToken(t, 7, time.Now().Add(time.Hour))
	h := newHarness(t, server.URL, access, "refresh")
	h.pinStore.ReplaceAll([]Pin{activePin(1, 9, 1, false)})

	require.NoError(t, h.engine.Toggle(context.Background(), 1))

	assert.Equal(t, http.MethodPost, sawMethod)
	pin, _ := h.pinStore.Get(1)
	assert.True(t, pin.UserConfirmed)
	assert.Equal(t, 2, pin.ConfirmationsCount)
	assert.Equal(t, TierYellow, pin.Color, "optimistic and reconciled state agree")
	assert.Empty(t, h.notifier.msgs)
}

func TestToggleUnconfirmSendsDelete(t *testing.T) {
	var sawMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawMethod = r.Method
		_ = json.NewEncoder(w).Encode(Pin{
			ID: 1, Status: StatusActive, CreatedBy: 9,
			ConfirmationsCount: 0, UserConfirmed: false, Color: TierGray,
		})
	}))
	defer server.Close()

	access := signedToken(t, 7, time.Now().Add(time.Hour))
	h := newHarness(t, server.URL, access, "refresh")
	h.pinStore.ReplaceAll([]Pin{activePin(1, 9, 1, true)})

	require.NoError(t, h.engine.Toggle(context.Background(), 1))

	assert.Equal(t, http.MethodDelete, sawMethod)
	pin, _ := h.pinStore.Get(1)
	assert.False(t, pin.UserConfirmed)
	assert.Equal(t, TierGray, pin.Color)
}

func TestToggleServerOverridesOptimisticCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a concurrent confirmation from another viewer landed first
		_ = json.NewEncoder(w).Encode(Pin{
			ID: 1, Status: StatusActive, CreatedBy: 9,
			ConfirmationsCount: 6, UserConfirmed: true, Color: TierRed,
		})
	}))
	defer server.Close()

	access := signedToken(t, 7, time.Now().Add(time.Hour))
	h := newHarness(t, server.URL, access, "refresh")
	h.pinStore.ReplaceAll([]Pin{activePin(1, 9, 4, false)})

	require.NoError(t, h.engine.Toggle(context.Background(), 1))

	pin, _ := h.pinStore.Get(1)
	assert.Equal(t, 6, pin.ConfirmationsCount)
	assert.Equal(t, TierRed, pin.Color)
}

func TestToggleRollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		pin  Pin
	}{
		{"unconfirmed pin", activePin(1, 9, 4, false)},
		{"confirmed pin", activePin(1, 9, 1, true)},
		{"zero count", activePin(1, 9, 0, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "boom"})
			}))
			defer server.Close()

			access := signedToken(t, 7, time.Now().Add(time.Hour))
			h := newHarness(t, server.URL, access, "refresh")
			h.pinStore.ReplaceAll([]Pin{tt.pin})

			err := h.engine.Toggle(context.Background(), 1)
			require.Error(t, err)

			got, _ := h.pinStore.Get(1)
			assert.Empty(t, cmp.Diff(tt.pin, got), "store must equal the pre-toggle snapshot")
			require.NotEmpty(t, h.notifier.msgs)
		})
	}
}

func TestToggleSessionExpiredClearsAndRollsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// only the refresh attempt should arrive, and it is rejected
		require.Equal(t, "/token/refresh/", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	expired := signedToken(t, 7, time.Now().Add(-time.Minute))
	h := newHarness(t, server.URL, expired, "stale-refresh")

	before := activePin(1, 9, 2, false)
	h.pinStore.ReplaceAll([]Pin{before})

	err := h.engine.Toggle(context.Background(), 1)
	assert.ErrorIs(t, err, apierr.ErrSessionExpired)

	got, _ := h.pinStore.Get(1)
	assert.Empty(t, cmp.Diff(before, got), "mutation aborted and rolled back")
	assert.False(t, h.session.IsAuthenticated(), "session cleared")
	assert.Empty(t, h.tokens.Refresh())
	require.NotEmpty(t, h.notifier.msgs)
	assert.Contains(t, h.notifier.msgs[0], "sign in")
}
