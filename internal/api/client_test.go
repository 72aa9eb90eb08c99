package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssq-board/internal/config"
)

const historyJSON = `{
  "last_updated": "2025-10-23T22:00:00Z",
  "data": [
    {"period": "25123", "date": "2025-10-23", "red_balls": ["07","09","23","24","25","26"], "blue_ball": "10"}
  ],
  "next_draw": {"next_period": "25124", "next_date": "2025-10-26", "next_date_display": "2025年10月26日", "weekday": "周日", "draw_time": "21:15"}
}`

const predictionsJSON = `{
  "prediction_date": "2025-10-24",
  "target_period": "25124",
  "models": [
    {"model_id": "m1", "model_name": "Model One", "predictions": [
      {"group_id": 1, "strategy": "热号", "red_balls": ["01","02","03","04","05","06"], "blue_ball": "07"}
    ]}
  ]
}`

const archiveJSON = `{
  "predictions_history": [
    {
      "prediction_date": "2025-10-22",
      "target_period": "25123",
      "actual_result": {"period": "25123", "date": "2025-10-23", "red_balls": ["07","09","23","24","25","26"], "blue_ball": "10"},
      "models": [
        {"model_id": "m1", "model_name": "Model One", "best_group": 1, "best_hit_count": 4, "predictions": [
          {"group_id": 1, "strategy": "冷号", "red_balls": ["09","16","24","25","26","31"], "blue_ball": "08",
           "hit_result": {"red_hits": ["09","24","25","26"], "red_hit_count": 4, "blue_hit": false, "total_hits": 4}}
        ]}
      ]
    }
  ]
}`

func writeDataDir(t *testing.T, files map[string]string) *config.Data {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	cfg := config.Default().Data
	cfg.Dir = dir
	return &cfg
}

func allFiles() map[string]string {
	return map[string]string{
		"lottery_history.json":     historyJSON,
		"ai_predictions.json":      predictionsJSON,
		"predictions_history.json": archiveJSON,
	}
}

func TestLoadAllFromDir(t *testing.T) {
	client := NewClient(writeDataDir(t, allFiles()))

	snap, err := client.LoadAll(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.History.Data, 1)
	assert.Equal(t, "25123", snap.History.Data[0].Period)
	assert.Equal(t, "25124", snap.History.NextDraw.NextPeriod)
	assert.Equal(t, "25124", snap.Predictions.TargetPeriod)
	require.Len(t, snap.Archive.PredictionsHistory, 1)
	assert.Equal(t, 4, snap.Archive.PredictionsHistory[0].Models[0].Predictions[0].HitResult.TotalHits)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoadAllMissingFileFailsWhole(t *testing.T) {
	files := allFiles()
	delete(files, "predictions_history.json")
	client := NewClient(writeDataDir(t, files))

	snap, err := client.LoadAll(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestLoadAllEmptyFile(t *testing.T) {
	files := allFiles()
	files["ai_predictions.json"] = "  \n"
	client := NewClient(writeDataDir(t, files))

	_, err := client.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestLoadAllMalformedJSON(t *testing.T) {
	files := allFiles()
	files["lottery_history.json"] = `{"data": [`
	client := NewClient(writeDataDir(t, files))

	_, err := client.LoadAll(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
}

func TestLoadAllFromHTTP(t *testing.T) {
	files := allFiles()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, ok := files[filepath.Base(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	cfg := config.Default().Data
	cfg.BaseURL = server.URL + "/data/"
	client := NewClient(&cfg)

	snap, err := client.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Model One", snap.Predictions.Models[0].ModelName)
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestLoadAllHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := config.Default().Data
	cfg.BaseURL = server.URL
	client := NewClient(&cfg)

	_, err := client.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Error(t, client.HealthCheck(context.Background()))
}

func TestCheckArchive(t *testing.T) {
	client := NewClient(writeDataDir(t, allFiles()))
	snap, err := client.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, CheckArchive(snap.Archive))

	snap.Archive.PredictionsHistory[0].Models[0].Predictions[0].HitResult.BlueHit = true
	assert.Equal(t, 1, CheckArchive(snap.Archive))
}
