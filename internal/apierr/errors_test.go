package apierr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail": "No active account found"}`, "No active account found"},
		{"message field", `{"message": "try later"}`, "try later"},
		{"detail wins over message", `{"detail": "a", "message": "b"}`, "a"},
		{"no known field", `{"error": "nope"}`, ""},
		{"not json", `<html>panic</html>`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detail([]byte(tt.body)))
		})
	}
}

func TestFromResponse(t *testing.T) {
	t.Run("401 becomes session expired", func(t *testing.T) {
		err := FromResponse(http.StatusUnauthorized, []byte(`{"detail":"token invalid"}`))
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("other statuses become api errors", func(t *testing.T) {
		err := FromResponse(http.StatusBadRequest, []byte(`{"detail":"cannot confirm your own pin"}`))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "cannot confirm your own pin", apiErr.Detail)
		assert.Contains(t, apiErr.Error(), "cannot confirm your own pin")
	})
}

func TestAuthErrorMessage(t *testing.T) {
	err := &AuthError{StatusCode: 401, Detail: "bad credentials"}
	assert.Contains(t, err.Error(), "bad credentials")
	assert.Contains(t, (&AuthError{StatusCode: 401}).Error(), "401")
}
