package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

type mockTokenVerifier struct {
	verifyFunc func(token string) (*service.TokenClaims, error)
}

func (m *mockTokenVerifier) VerifyAuthToken(token string) (*service.TokenClaims, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(token)
	}
	return nil, service.ErrTokenInvalid
}

type mockSessionValidator struct {
	validateFunc func(ctx context.Context, token string) (*model.Session, error)
}

func (m *mockSessionValidator) Validate(ctx context.Context, token string) (*model.Session, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return nil, nil
}

type mockUserSource struct {
	getByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserSource) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func validVerifier() *mockTokenVerifier {
	return &mockTokenVerifier{
		verifyFunc: func(token string) (*service.TokenClaims, error) {
			return &service.TokenClaims{UserID: "user:abc"}, nil
		},
	}
}

func knownUserSource() *mockUserSource {
	return &mockUserSource{
		getByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Nickname: "Ada"}, nil
		},
	}
}

// captureHandler records whether it ran and which user it saw.
func captureHandler(called *bool, user **model.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*user = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func clearedCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestRequireToken_MissingCookie(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := RequireToken(validVerifier(), knownUserSource())(captureHandler(&called, &seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if called {
		t.Error("handler ran without a token cookie")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["code"] != model.CodeUnauthenticated {
		t.Errorf("expected code %s, got %s", model.CodeUnauthenticated, body["code"])
	}
	if body["redirect"] != "/login" {
		t.Errorf("expected /login redirect, got %s", body["redirect"])
	}
}

func TestRequireToken_ExpiredToken_ClearsCookie(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	expired := &mockTokenVerifier{
		verifyFunc: func(token string) (*service.TokenClaims, error) {
			return nil, service.ErrTokenExpired
		},
	}
	handler := RequireToken(expired, knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "expired"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler ran with an expired token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["code"] != model.CodeSessionExpired {
		t.Errorf("expected code %s, got %s", model.CodeSessionExpired, body["code"])
	}
	if !clearedCookie(rec, TokenCookie) {
		t.Error("expired token cookie was not cleared")
	}
}

func TestRequireToken_MalformedToken_Unauthenticated(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := RequireToken(&mockTokenVerifier{}, knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler ran with a malformed token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["code"] != model.CodeUnauthenticated {
		t.Errorf("a forged token must not read as a lapsed login, got code %s", body["code"])
	}
	if !clearedCookie(rec, TokenCookie) {
		t.Error("malformed token cookie was not cleared")
	}
}

func TestRequireToken_VanishedUser(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := RequireToken(validVerifier(), &mockUserSource{})(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "valid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler ran for a deleted account")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !clearedCookie(rec, TokenCookie) {
		t.Error("orphaned token cookie was not cleared")
	}
}

func TestRequireToken_Valid_AttachesUser(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := RequireToken(validVerifier(), knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "valid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler did not run")
	}
	if seen == nil || seen.ID != "user:abc" {
		t.Errorf("expected user:abc in context, got %+v", seen)
	}
}

func TestSoftToken_NoCookie_ProceedsAnonymously(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := SoftToken(validVerifier(), knownUserSource())(captureHandler(&called, &seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Fatal("handler did not run")
	}
	if seen != nil {
		t.Error("anonymous request should carry no user")
	}
}

func TestSoftToken_BadToken_ProceedsAnonymously(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := SoftToken(&mockTokenVerifier{}, knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler did not run")
	}
	if seen != nil {
		t.Error("invalid token should read as anonymous, not as an error")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("soft auth must never reject, got %d", rec.Code)
	}
}

func TestSoftToken_Valid_AttachesUser(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := SoftToken(validVerifier(), knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "valid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == nil || seen.ID != "user:abc" {
		t.Errorf("expected user:abc in context, got %+v", seen)
	}
}

func TestRequireSession_MissingCookie(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := RequireSession(&mockSessionValidator{}, knownUserSource())(captureHandler(&called, &seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if called {
		t.Error("handler ran without a session cookie")
	}
	body := decodeErrorBody(t, rec)
	if body["code"] != model.CodeUnauthenticated {
		t.Errorf("expected code %s, got %s", model.CodeUnauthenticated, body["code"])
	}
}

func TestRequireSession_LapsedSession_ClearsCookie(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	handler := RequireSession(&mockSessionValidator{}, knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler ran with a lapsed session")
	}
	body := decodeErrorBody(t, rec)
	if body["code"] != model.CodeSessionExpired {
		t.Errorf("expected code %s, got %s", model.CodeSessionExpired, body["code"])
	}
	if !clearedCookie(rec, SessionCookie) {
		t.Error("lapsed session cookie was not cleared")
	}
}

func TestRequireSession_Valid_AttachesUser(t *testing.T) {
	t.Parallel()
	called := false
	var seen *model.User
	sessions := &mockSessionValidator{
		validateFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{Token: token, UserID: "user:abc"}, nil
		},
	}
	handler := RequireSession(sessions, knownUserSource())(captureHandler(&called, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "live"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler did not run")
	}
	if seen == nil || seen.ID != "user:abc" {
		t.Errorf("expected user:abc in context, got %+v", seen)
	}
}
