package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rockduel/internal/model"
	"rockduel/internal/service"
	"rockduel/internal/store"
	"rockduel/internal/transport/ws"
)

func newTestRouter(t *testing.T) (http.Handler, *store.PlayerStore) {
	t.Helper()
	gw, err := store.NewFileGateway(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	st, err := store.Open(gw)
	require.NoError(t, err)

	hub := ws.NewHub()
	orch := service.NewOrchestrator(st, hub)
	handler := ws.NewHandler(hub, orch, service.NewAuthService("test"), service.NewShopService(st), nil)

	return NewRouter(&Container{Store: st, WSHandler: handler}), st
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLeaderboardEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, p := range []struct {
		id     string
		rating int
	}{{"p1", 1400}, {"p2", 1100}} {
		_, err := st.Ensure(p.id, p.id, now)
		require.NoError(t, err)
		rating := p.rating
		st.Update(p.id, now, func(r *model.PlayerRecord) { r.Rating = rating })
	}
	st.RebuildLeaderboard()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Leaderboard, 2)
	assert.Equal(t, "p1", body.Leaderboard[0].ID)
	assert.Equal(t, "p2", body.Leaderboard[1].ID)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/leaderboard", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
