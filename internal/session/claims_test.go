package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, userID int64, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecode(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		claims := Decode(signedToken(t, 7, exp))
		require.NotNil(t, claims)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("malformed input yields nil", func(t *testing.T) {
		for _, token := range []string{"", "garbage", "a.b", "a.b.c", "a.!!!.c"} {
			assert.Nil(t, Decode(token), "token %q", token)
		}
	})
}

func TestIsExpiringSoon(t *testing.T) {
	tests := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{
			name:   "nil payload",
			claims: nil,
			want:   true,
		},
		{
			name:   "no expiry",
			claims: &Claims{},
			want:   true,
		},
		{
			name: "already expired",
			claims: &Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			}},
			want: true,
		},
		{
			name: "inside the skew window",
			claims: &Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Second)),
			}},
			want: true,
		},
		{
			name: "plenty of time left",
			claims: &Claims{RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpiringSoon(tt.claims, DefaultSkew))
		})
	}
}
