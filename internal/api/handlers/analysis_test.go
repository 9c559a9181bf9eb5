package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/vexscout/internal/engine"
	"github.com/scoutlab/vexscout/internal/models"
	"github.com/scoutlab/vexscout/internal/services"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

type stubFetcher struct {
	snapshot *models.Snapshot
	err      error
}

func (f *stubFetcher) FetchSnapshot(_ context.Context, _ string) (*models.Snapshot, error) {
	return f.snapshot, f.err
}

func qual(idx int, red []string, redScore float64, blue []string, blueScore float64) models.Match {
	return models.Match{
		Index: idx,
		Name:  "Q-1",
		Red:   models.Alliance{Teams: red, Score: redScore},
		Blue:  models.Alliance{Teams: blue, Score: blueScore},
	}
}

func eventSnapshot() *models.Snapshot {
	return &models.Snapshot{
		EventSKU:  "RE-VRC-25-0001",
		EventName: "Test Regional",
		Rankings: []models.TeamRanking{
			{TeamID: 1, Number: "100A", Rank: 1, Wins: 3, Losses: 0, AutoAvg: 6, SPAvg: 30, WPAvg: 2},
			{TeamID: 2, Number: "200B", Rank: 2, Wins: 2, Losses: 1, AutoAvg: 4, SPAvg: 24, WPAvg: 1.4},
			{TeamID: 3, Number: "300C", Rank: 3, Wins: 1, Losses: 2, AutoAvg: 2, SPAvg: 18, WPAvg: 0.7},
		},
		Matches: []models.Match{
			qual(1, []string{"100A"}, 45, []string{"200B"}, 30),
			qual(2, []string{"200B"}, 38, []string{"300C"}, 22),
			qual(3, []string{"100A"}, 50, []string{"300C"}, 25),
		},
		Skills: map[string]float64{"100A": 90},
	}
}

func newTestRouter(t *testing.T, fetcher services.SnapshotFetcher) (*gin.Engine, services.OverrideStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryOverrideStore()
	analyzer := engine.NewAnalyzer(nil, engine.DefaultParams(), testLogger())
	svc := services.NewAnalysisService(fetcher, nil, store, analyzer, testLogger(), time.Minute)

	h := NewAnalysisHandler(svc)
	router := gin.New()
	router.POST("/analyze", h.Analyze)
	router.POST("/events/:sku/refresh", h.Refresh)
	router.GET("/events/:sku/progress", h.GetProgress)
	router.GET("/events/tracked", h.GetTrackedEvents)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAnalyze_Success(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	w := doJSON(t, router, http.MethodPost, "/analyze", gin.H{"sku": "re-vrc-25-0001", "my_team": "100A"})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var resp struct {
		Analysis models.Analysis `json:"analysis"`
		Warning  string          `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "RE-VRC-25-0001", resp.Analysis.EventSKU)
	assert.Equal(t, 3, resp.Analysis.TotalTeams)
	require.NotNil(t, resp.Analysis.MyTeam)
	assert.Equal(t, "100A", resp.Analysis.MyTeam.Number)
	assert.Empty(t, resp.Warning)
}

func TestAnalyze_UnknownSelfTeamReturnsWarning(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	w := doJSON(t, router, http.MethodPost, "/analyze", gin.H{"sku": "RE-VRC-25-0001", "my_team": "999Z"})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var resp struct {
		Analysis models.Analysis `json:"analysis"`
		Warning  string          `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Contains(t, resp.Warning, "999Z")
	assert.Equal(t, 3, resp.Analysis.TotalTeams)
	assert.Nil(t, resp.Analysis.MyTeam)
}

func TestAnalyze_EventNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: nil})

	w := doJSON(t, router, http.MethodPost, "/analyze", gin.H{"sku": "RE-MISSING"})
	require.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
}

func TestAnalyze_MissingSKURejected(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	w := doJSON(t, router, http.MethodPost, "/analyze", gin.H{"my_team": "100A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh_RunsAnalysis(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	w := doJSON(t, router, http.MethodPost, "/events/RE-VRC-25-0001/refresh", gin.H{"my_team": "200B"})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)
}

func TestGetProgress_IdleByDefault(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	w := doJSON(t, router, http.MethodGet, "/events/RE-NEVER-RUN/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var progress services.Progress
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, "idle", progress.Status)
}

func TestGetProgress_DoneAfterRun(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	doJSON(t, router, http.MethodPost, "/analyze", gin.H{"sku": "RE-VRC-25-0001"})
	w := doJSON(t, router, http.MethodGet, "/events/RE-VRC-25-0001/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var progress services.Progress
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, "done", progress.Status)
	assert.Equal(t, 100, progress.Percent)
}

func TestGetTrackedEvents_EmptyWithoutCache(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{snapshot: eventSnapshot()})

	w := doJSON(t, router, http.MethodGet, "/events/tracked", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var events []services.TrackedEvent
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Empty(t, events)
}
