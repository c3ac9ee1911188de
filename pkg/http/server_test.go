package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/temporal"
)

const chorale = `{
  "title": "Chorale",
  "parts": [
    {"name": "Soprano", "events": [
      {"kind": "dynamic", "offset": 0, "dynamic": "p"},
      {"kind": "note", "offset": 0, "duration": 1, "pitches": ["C5"]},
      {"kind": "dynamic", "offset": 1, "dynamic": "f"},
      {"kind": "chord", "offset": 1, "duration": 3, "pitches": ["E4", "G4"]}
    ]},
    {"name": "Bass", "events": [
      {"kind": "note", "offset": 0, "duration": 4, "pitches": ["C3"]}
    ]}
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *Server {
	return NewServer(testLogger(), render.NewRunner(testLogger()), ":0")
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServer_Health(t *testing.T) {
	rr := do(t, newTestServer().Handler(), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")
}

func TestServer_Catalog(t *testing.T) {
	rr := do(t, newTestServer().Handler(), http.MethodGet, "/plots/catalog", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []CatalogEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	assert.Len(t, entries, len(plot.Catalog))

	ids := make(map[string]bool)
	for _, e := range entries {
		ids[e.ID] = true
	}
	assert.True(t, ids[plot.DefaultPresetID])
	assert.True(t, ids["histogram-pitchClass-counting"])
}

func TestServer_PlotSingleJob(t *testing.T) {
	body := `{"name": "hist", "preset": "histogram-pitchSpace-counting", "score": ` + chorale + `}`
	rr := do(t, newTestServer().Handler(), http.MethodPost, "/plots", "application/json", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result render.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "hist", result.Job)
	require.NotNil(t, result.Figure)
	assert.Len(t, result.Figure.Records, 4)
}

func TestServer_PlotBatch(t *testing.T) {
	body := `{
		"jobs": [
			{"name": "roll"},
			{"name": "bad", "preset": "pie-chart"},
			{"name": "groups", "type": "horizontalbarweighted"}
		],
		"score": ` + chorale + `
	}`
	rr := do(t, newTestServer().Handler(), http.MethodPost, "/plots", "", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var batch temporal.BatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 3)
	require.NotNil(t, batch.Results[0])
	assert.Equal(t, plot.DefaultPresetID, batch.Results[0].Figure.ID)
	assert.Nil(t, batch.Results[1])
	require.NotNil(t, batch.Results[2])
	assert.Equal(t, []string{"Soprano", "Bass"}, batch.Results[2].Reduction.Groups)
	assert.Contains(t, batch.Errors["bad"], "pie-chart")
}

func TestServer_PlotHCLWithStoredScore(t *testing.T) {
	h := newTestServer().Handler()

	rr := do(t, h, http.MethodPost, "/scores?title=Uploaded", "application/json", chorale)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var stored struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Parts int    `json:"parts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, "Uploaded", stored.Title)
	assert.Equal(t, 2, stored.Parts)

	job := `
plot "range" {
  type  = "colorgrid"
  title = "Range"

  windowed {
    max_window = 2
  }
}
`
	rr = do(t, h, http.MethodPost, "/plots?score="+stored.ID, "application/vnd.hcl", job)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result render.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.NotNil(t, result.Windowed)
	assert.Equal(t, "Range", result.Windowed.Title)
	assert.Len(t, result.Windowed.Matrix, 2)
}

func TestServer_PlotErrors(t *testing.T) {
	h := newTestServer().Handler()

	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		status      int
	}{
		{"invalid json", "/plots", "application/json", `{"name":`, http.StatusBadRequest},
		{"invalid hcl", "/plots", "application/vnd.hcl", `plot "x" {`, http.StatusBadRequest},
		{"no jobs", "/plots", "application/vnd.hcl", `# nothing`, http.StatusBadRequest},
		{"no score", "/plots", "application/json", `{"name": "roll"}`, http.StatusBadRequest},
		{"unknown preset", "/plots", "application/json", `{"preset": "pie-chart", "score": ` + chorale + `}`, http.StatusBadRequest},
		{"missing stored score", "/plots?score=nope", "application/json", `{"name": "roll"}`, http.StatusNotFound},
		{"bad window", "/plots", "application/json",
			`{"type": "colorgrid", "windowed": {"windowType": "diagonal"}, "score": ` + chorale + `}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.target, tt.contentType, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestServer_UploadScoreRejectsGarbage(t *testing.T) {
	rr := do(t, newTestServer().Handler(), http.MethodPost, "/scores", "", "not a score")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_CORS(t *testing.T) {
	s := NewServer(testLogger(), nil, ":0", WithAllowedOrigins("https://canvas.example"))

	req := httptest.NewRequest(http.MethodGet, "/plots/catalog", bytes.NewReader(nil))
	req.Header.Set("Origin", "https://canvas.example")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "https://canvas.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/plots/catalog", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
