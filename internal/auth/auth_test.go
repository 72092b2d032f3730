package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepoolshop/shopkeep/internal/auth"
)

func newService(now func() time.Time) *auth.Service {
	return auth.NewService("test-secret", "admin", "hunter2", time.Hour, now)
}

func TestService_LoginAndVerify(t *testing.T) {
	svc := newService(nil)

	token, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", actor)
}

func TestService_Login_BadCredentials(t *testing.T) {
	svc := newService(nil)

	for name, creds := range map[string][2]string{
		"WrongPassword": {"admin", "letmein"},
		"WrongUser":     {"root", "hunter2"},
		"Empty":         {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(creds[0], creds[1])
			assert.ErrorIs(t, err, auth.ErrBadCredentials)
		})
	}
}

func TestService_Verify_Expired(t *testing.T) {
	issued := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

	token, err := newService(func() time.Time { return issued }).Login("admin", "hunter2")
	require.NoError(t, err)

	// Same secret, clock two hours past the one-hour TTL.
	late := newService(func() time.Time { return issued.Add(2 * time.Hour) })

	_, err = late.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_Verify_Garbage(t *testing.T) {
	_, err := newService(nil).Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	svc := newService(nil)

	var gotActor string

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = auth.Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("ValidToken", func(t *testing.T) {
		token, err := svc.Login("admin", "hunter2")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", gotActor)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("BadToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
