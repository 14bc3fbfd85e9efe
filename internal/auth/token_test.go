package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer("test-secret", "agency-portal", time.Hour)
	require.NoError(t, err)
	return iss
}

func TestIssueAndVerify(t *testing.T) {
	iss := newTestIssuer(t)

	tok, err := iss.Issue("profile-1", "admin")
	require.NoError(t, err)
	require.Equal(t, "bearer", tok.TokenType)

	claims, err := iss.Verify(tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "profile-1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	iss := newTestIssuer(t)
	tok, err := iss.Issue("profile-1", "client")
	require.NoError(t, err)

	later := *iss
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewIssuer("other-secret", "agency-portal", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewIssuer("test-secret", "someone-else", time.Hour)
	require.NoError(t, err)
	_, err = foreign.Verify(tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Verify(none)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareRoles(t *testing.T) {
	iss := newTestIssuer(t)
	mw := NewMiddleware(iss, func(w http.ResponseWriter, status int, _ string) { w.WriteHeader(status) })
	handler := mw.RequireRole("admin", func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		require.Equal(t, "admin-1", p.ProfileID)
		w.WriteHeader(http.StatusNoContent)
	})

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusUnauthorized, do(""))
	require.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))

	client, _ := iss.Issue("client-1", "client")
	require.Equal(t, http.StatusForbidden, do("Bearer "+client.AccessToken))

	admin, _ := iss.Issue("admin-1", "admin")
	require.Equal(t, http.StatusNoContent, do("Bearer "+admin.AccessToken))
}
