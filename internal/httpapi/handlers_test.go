package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain"
	"newsdesk/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSettingsService struct {
	current   *domain.Settings
	getErr    error
	updateErr error
	patches   []domain.SettingsPatch
}

func (f *fakeSettingsService) Get(_ context.Context) (*domain.Settings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.current == nil {
		f.current = domain.DefaultSettings()
	}
	return f.current, nil
}

func (f *fakeSettingsService) Update(_ context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	f.patches = append(f.patches, patch)
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.current == nil {
		f.current = patch.NewSettings()
		return f.current, nil
	}
	patch.ApplyTo(f.current)
	return f.current, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(svc SettingsService, db Pinger) *Server {
	return NewServer(Config{
		AllowedOrigins:  []string{"http://localhost:3000"},
		ShutdownTimeout: time.Second,
	}, svc, db, logging.Discard())
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestGetSettings_ReturnsDefaults(t *testing.T) {
	s := newTestServer(&fakeSettingsService{}, nil)

	rec, env := do(t, s, http.MethodGet, "/settings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var settings domain.Settings
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	assert.Equal(t, 24, settings.BreakingNewsExpiryHours)
	assert.Equal(t, 48, settings.TrendingNewsExpiryHours)
	assert.Equal(t, "", settings.LiveVideoID)
}

func TestGetSettings_APIPrefix(t *testing.T) {
	s := newTestServer(&fakeSettingsService{}, nil)

	rec, env := do(t, s, http.MethodGet, "/api/settings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestGetSettings_StoreError(t *testing.T) {
	s := newTestServer(&fakeSettingsService{getErr: errors.New("connection reset")}, nil)

	rec, env := do(t, s, http.MethodGet, "/settings", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "connection reset")
}

func TestUpdateSettings_PartialBody(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			svc := &fakeSettingsService{current: &domain.Settings{
				BreakingNewsExpiryHours: 10,
				TrendingNewsExpiryHours: 20,
				LiveVideoID:             "old",
			}}
			s := newTestServer(svc, nil)

			rec, env := do(t, s, method, "/settings", `{"liveVideoId":"  new-id "}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, env.Success)

			var settings domain.Settings
			require.NoError(t, json.Unmarshal(env.Data, &settings))
			assert.Equal(t, "new-id", settings.LiveVideoID)
			assert.Equal(t, 10, settings.BreakingNewsExpiryHours)
			assert.Equal(t, 20, settings.TrendingNewsExpiryHours)

			require.Len(t, svc.patches, 1)
			assert.Nil(t, svc.patches[0].BreakingNewsExpiryHours)
			assert.Nil(t, svc.patches[0].TrendingNewsExpiryHours)
		})
	}
}

func TestUpdateSettings_EmptyBody(t *testing.T) {
	svc := &fakeSettingsService{}
	s := newTestServer(svc, nil)

	rec, env := do(t, s, http.MethodPut, "/settings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.Len(t, svc.patches, 1)
	assert.True(t, svc.patches[0].IsEmpty())
}

func TestUpdateSettings_MalformedJSON(t *testing.T) {
	svc := &fakeSettingsService{}
	s := newTestServer(svc, nil)

	rec, env := do(t, s, http.MethodPut, "/settings", `{"breakingNewsExpiryHours":"soon"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Empty(t, svc.patches)
}

func TestUpdateSettings_InvalidValue(t *testing.T) {
	s := newTestServer(&fakeSettingsService{}, nil)

	rec, env := do(t, s, http.MethodPut, "/settings", `{"trendingNewsExpiryHours":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "trendingNewsExpiryHours")
}

func TestUpdateSettings_StoreError(t *testing.T) {
	s := newTestServer(&fakeSettingsService{updateErr: fmt.Errorf("update settings: %w", errors.New("timeout"))}, nil)

	rec, env := do(t, s, http.MethodPut, "/settings", `{"breakingNewsExpiryHours":5}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "timeout")
}

func TestHealthz(t *testing.T) {
	rec, env := do(t, newTestServer(&fakeSettingsService{}, fakePinger{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = do(t, newTestServer(&fakeSettingsService{}, fakePinger{err: errors.New("down")}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestNotFound(t *testing.T) {
	rec, env := do(t, newTestServer(&fakeSettingsService{}, nil), http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(&fakeSettingsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set(requestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestCORS_AllowsFrontendWithCredentials(t *testing.T) {
	s := newTestServer(&fakeSettingsService{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/settings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
