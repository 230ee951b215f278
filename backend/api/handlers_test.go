package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/perspective-viz/backend/service"
	"github.com/gilchrisn/perspective-viz/pkg/config"
)

const perspectiveBody = `{
	"id": "p1",
	"name": "Artworks",
	"viewOptions": {"edgeThreshold": 0.5, "deleteEdgesPercent": 0},
	"communities": [
		{"id": 0, "name": "Calm", "users": ["a", "b"]},
		{"id": 1, "name": "Loud", "users": ["c"]}
	],
	"users": [
		{"id": "a", "group": 0, "explicit_community": {"country": "ES"}},
		{"id": "b", "group": 0, "explicit_community": {"country": "IT"}},
		{"id": "c", "group": 1, "explicit_community": {"country": "ES"}}
	],
	"similarity": [
		{"id": "ab", "u1": "a", "u2": "b", "value": 0.3},
		{"id": "bc", "u1": "b", "u2": "c", "value": 0.6},
		{"id": "ac", "u1": "a", "u2": "c", "value": 0.9}
	]
}`

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *service.SessionService
}

func newTestServer(t *testing.T, opts RouterOptions) *testServer {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Set("debounce.quiet_ms", 10)
	cfg.Set("edges.random_seed", 1)

	svc := service.NewSessionService(cfg)
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}
	return &testServer{
		t:       t,
		handler: NewRouter(NewHandlers(svc, cfg), opts),
		svc:     svc,
	}
}

func (ts *testServer) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	return ts.doWithType(method, path, body, "application/json")
}

func (ts *testServer) doWithType(method, path, body, contentType string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (ts *testServer) createSession() string {
	ts.t.Helper()
	rec, env := ts.do(http.MethodPost, "/api/v1/sessions", perspectiveBody)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		SessionID   string `json:"sessionId"`
		ActiveEdges int    `json:"activeEdges"`
	}
	require.NoError(ts.t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(ts.t, created.SessionID)
	return created.SessionID
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	rec, env := ts.do(http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	rec, env := ts.do(http.MethodPost, "/api/v1/sessions", perspectiveBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		SessionID     string `json:"sessionId"`
		PerspectiveID string `json:"perspectiveId"`
		Nodes         int    `json:"nodes"`
		Communities   int    `json:"communities"`
		ActiveEdges   int    `json:"activeEdges"`
	}
	decodeData(t, env, &created)
	assert.Equal(t, "p1", created.PerspectiveID)
	assert.Equal(t, 3, created.Nodes)
	assert.Equal(t, 2, created.Communities)
	assert.Equal(t, 2, created.ActiveEdges)

	rec, env = ts.do(http.MethodGet, "/api/v1/sessions/"+created.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []struct {
			ID string `json:"id"`
		} `json:"edges"`
		Boxes []json.RawMessage `json:"boxes"`
	}
	decodeData(t, env, &snap)
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Boxes, 2)
	require.Len(t, snap.Edges, 2)
	assert.Equal(t, "bc", snap.Edges[0].ID)

	rec, _ = ts.do(http.MethodDelete, "/api/v1/sessions/"+created.SessionID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(http.MethodGet, "/api/v1/sessions/"+created.SessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestCreateSessionRejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	tests := []struct {
		name    string
		body    string
		status  int
		problem string
	}{
		{
			name:   "malformed json",
			body:   `{"communities": [`,
			status: http.StatusBadRequest,
		},
		{
			name:    "view option out of range",
			body:    `{"viewOptions": {"edgeThreshold": 2}, "communities": [{"id": 0, "users": []}], "users": []}`,
			status:  http.StatusBadRequest,
			problem: "viewOptions.edgeThreshold must be at most 1",
		},
		{
			name:    "unknown edge endpoint",
			body:    `{"communities": [{"id": 0, "users": []}], "users": [{"id": "a", "group": 0}], "edges": [{"from": "a", "to": "z", "similarity": 0.5}]}`,
			status:  http.StatusBadRequest,
			problem: "edge 0 ends at unknown user z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(http.MethodPost, "/api/v1/sessions", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)

			if tt.problem != "" {
				var data struct {
					Problems []string `json:"validation_errors"`
				}
				decodeData(t, env, &data)
				assert.Contains(t, data.Problems, tt.problem)
			}
		})
	}
	assert.Equal(t, 0, ts.svc.Count())
}

func TestCreateSessionRequiresJSON(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString(perspectiveBody))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, 0, ts.svc.Count())

	rec, _ = ts.doWithType(http.MethodPost, "/api/v1/sessions", perspectiveBody, "application/json; charset=utf-8")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSelectNodeAndUnselect(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	id := ts.createSession()

	rec, env := ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/nodes/b/select", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var selected struct {
		Neighbors []string `json:"neighbors"`
	}
	decodeData(t, env, &selected)
	assert.Equal(t, []string{"c"}, selected.Neighbors)

	snap, err := ts.svc.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, "b", snap.SelectedNode)

	rec, _ = ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/nodes/zzz/select", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/unselect", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	snap, err = ts.svc.Snapshot(id)
	require.NoError(t, err)
	assert.Empty(t, snap.SelectedNode)
}

func TestClick(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	id := ts.createSession()

	snap, err := ts.svc.Snapshot(id)
	require.NoError(t, err)
	box := snap.Boxes[0].Box
	x := (box.Left + box.Right) / 2
	y := (box.Top + box.Bottom) / 2

	var clicked struct {
		Community *int `json:"community"`
	}

	rec, env := ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/click", `{"x": 100000, "y": 100000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &clicked)
	assert.Nil(t, clicked.Community)

	body, err := json.Marshal(map[string]float64{"x": x, "y": y})
	require.NoError(t, err)
	rec, env = ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/click", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &clicked)
	require.NotNil(t, clicked.Community)
	assert.Equal(t, 0, *clicked.Community)

	rec, env = ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/click", `{"x": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var data struct {
		Problems []string `json:"validation_errors"`
	}
	decodeData(t, env, &data)
	assert.Contains(t, data.Problems, "y is required")
}

func TestSelectCommunityAndFocus(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	id := ts.createSession()

	rec, _ := ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/communities/1/select", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	snap, err := ts.svc.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, snap.Boxes[0].Highlighted)
	assert.True(t, snap.Boxes[1].Highlighted)

	rec, _ = ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/communities/9/select", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env := ts.do(http.MethodPost, "/api/v1/sessions/"+id+"/focus", `{"users": ["a", "elsewhere"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var focused struct {
		Present []string `json:"present"`
	}
	decodeData(t, env, &focused)
	assert.Equal(t, []string{"a"}, focused.Present)
}

func TestUpdateThresholdIsDebounced(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	id := ts.createSession()

	rec, _ := ts.do(http.MethodPut, "/api/v1/sessions/"+id+"/threshold", `{"threshold": 0.1}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec, _ = ts.do(http.MethodPut, "/api/v1/sessions/"+id+"/threshold", `{"threshold": 0.8}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		snap, err := ts.svc.Snapshot(id)
		return err == nil && snap.View.EdgeThreshold == 0.8 && len(snap.Edges) == 1
	}, time.Second, 5*time.Millisecond)

	rec, _ = ts.do(http.MethodPut, "/api/v1/sessions/"+id+"/threshold", `{"threshold": 1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(http.MethodPut, "/api/v1/sessions/missing/threshold", `{"threshold": 0.5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOptions(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	id := ts.createSession()

	rec, env := ts.do(http.MethodPut, "/api/v1/sessions/"+id+"/options",
		`{"hideEdges": true, "showBorder": true, "hideLabels": false, "legend": {"country": {"IT": true}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var options struct {
		View struct {
			HideEdges  bool                       `json:"hideEdges"`
			ShowBorder bool                       `json:"showBorder"`
			HideLabels bool                       `json:"hideLabels"`
			Legend     map[string]map[string]bool `json:"legend"`
		} `json:"view"`
	}
	decodeData(t, env, &options)
	assert.True(t, options.View.HideEdges)
	assert.True(t, options.View.ShowBorder)
	assert.False(t, options.View.HideLabels)
	assert.True(t, options.View.Legend["country"]["IT"])

	rec, _ = ts.do(http.MethodPut, "/api/v1/sessions/"+id+"/options", `{"deleteEdgesPercent": 100}`)
	require.Equal(t, http.StatusOK, rec.Code)

	snap, err := ts.svc.Snapshot(id)
	require.NoError(t, err)
	assert.Empty(t, snap.Edges)
	assert.Equal(t, 100.0, snap.View.DeleteEdgesPercent)
}

func TestGetBreakdown(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})
	id := ts.createSession()

	rec, env := ts.do(http.MethodGet, "/api/v1/sessions/"+id+"/communities/0/breakdown", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var breakdown struct {
		Community int  `json:"community"`
		Available bool `json:"available"`
		Keys      []struct {
			Key string `json:"key"`
		} `json:"keys"`
	}
	decodeData(t, env, &breakdown)
	assert.True(t, breakdown.Available)
	require.Len(t, breakdown.Keys, 1)
	assert.Equal(t, "country", breakdown.Keys[0].Key)

	rec, _ = ts.do(http.MethodGet, "/api/v1/sessions/"+id+"/communities/5/breakdown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, RouterOptions{RateLimitRPS: 0.001, RateLimitBurst: 2})

	for i := 0; i < 2; i++ {
		rec, _ := ts.do(http.MethodGet, "/api/v1/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := ts.do(http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, RouterOptions{AllowedOrigins: []string{"http://viz.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://viz.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://viz.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
