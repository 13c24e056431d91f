// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/cinemind/internal/catalog"
	"github.com/tomtom215/cinemind/internal/models"
	"github.com/tomtom215/cinemind/internal/recommend"
)

const testAdminToken = "s3cret"

// newTestModel returns a rank 2 model with user offsets:
//
//	u1 = [1 0] + 2.5, u2 = [0 1]
//	m1 = [3 0], m2 = [2 1], m3 = [1 2], m4 = [1 1]
//
// u1 rated m1 (5), u2 rated m3 (3.5). u1 scores: m1 5.5, m2 4.5, m3 3.5, m4 3.5.
func newTestModel(t *testing.T) *recommend.Model {
	t.Helper()
	m := &recommend.Model{
		UserFactors: mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		ItemFactors: mat.NewDense(4, 2, []float64{3, 0, 2, 1, 1, 2, 1, 1}),
		UserIDs:     []string{"u1", "u2"},
		ItemIDs:     []string{"m1", "m2", "m3", "m4"},
		GlobalMean:  3.5,
		UserOffsets: []float64{2.5, 0},
		RatedItems:  [][]int{{0}, {2}},
		RatedValues: [][]float64{{5}, {3.5}},
		ItemMeans:   []float64{4, 3, 3.5, 2},
		ItemCounts:  []int{1, 1, 1, 0},
		Meta:        recommend.ModelMetadata{Rank: 2, NumUsers: 2, NumItems: 4, NumRatings: 2},
	}
	if err := m.Index(); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	return m
}

// newTestContent returns m1 = a, m2 = b, m3 = 0.6a + 0.8b, m4 = c, m6 = a.
func newTestContent(t *testing.T) *recommend.ContentSpace {
	t.Helper()
	cs := &recommend.ContentSpace{
		Vocabulary: map[string]int{"a": 0, "b": 1, "c": 2},
		Vectors: &recommend.SparseMatrix{
			Rows:   5,
			Cols:   3,
			RowPtr: []int{0, 1, 2, 4, 5, 6},
			ColIdx: []int{0, 1, 0, 1, 2, 0},
			Values: []float64{1, 1, 0.6, 0.8, 1, 1},
		},
		ItemIDs: []string{"m1", "m2", "m3", "m4", "m6"},
	}
	if err := cs.Index(); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	return cs
}

type staticLoader struct {
	model   *recommend.Model
	content *recommend.ContentSpace
}

func (l *staticLoader) LoadModel(ctx context.Context) (*recommend.Model, error) {
	return l.model, nil
}

func (l *staticLoader) LoadContent(ctx context.Context) (*recommend.ContentSpace, error) {
	return l.content, nil
}

type fakeCatalog map[string]*catalog.Record

func (f fakeCatalog) Get(movieID string) (*catalog.Record, error) {
	if rec, ok := f[movieID]; ok {
		return rec, nil
	}
	return nil, catalog.ErrRecordNotFound
}

// newTestServer returns a router over an engine. loaded controls whether
// the artifacts are installed up front.
func newTestServer(t *testing.T, loaded bool) (http.Handler, *recommend.Engine) {
	t.Helper()
	model, content := newTestModel(t), newTestContent(t)

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), &staticLoader{model: model, content: content}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if loaded {
		engine.Install(model, content)
	}

	lookup := fakeCatalog{
		"m2": {MovieID: "m2", Title: "Heat", ReleaseYear: 1995, Genres: []string{"Crime"}, PosterPath: "/heat.jpg"},
		"m9": {MovieID: "m9", Title: "Catalog Only"},
	}
	handler := NewHandler(engine, lookup, HandlerConfig{DefaultN: 10, RatingMin: 0.5, RatingMax: 5.0})

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	cfg.AdminToken = testAdminToken
	return NewRouter(handler, cfg).Setup(), engine
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (body %s)", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeList(t *testing.T, env envelope) models.RecommendationList {
	t.Helper()
	var list models.RecommendationList
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return list
}

func listIDs(list models.RecommendationList) []string {
	ids := make([]string, len(list.Items))
	for i, it := range list.Items {
		ids[i] = it.ItemID
	}
	return ids
}

func TestUserRecommendations(t *testing.T) {
	h, _ := newTestServer(t, true)

	t.Run("excludes rated items by default", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations/users/u1", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if env.Status != "success" {
			t.Errorf("status field = %q, want success", env.Status)
		}
		list := decodeList(t, env)
		if want := []string{"m2", "m3", "m4"}; !slices.Equal(listIDs(list), want) {
			t.Errorf("items = %v, want %v", listIDs(list), want)
		}
		if list.Mode != "cf" || list.UserID != "u1" || list.Count != 3 {
			t.Errorf("list = %+v", list)
		}
		first := list.Items[0]
		if first.Rank != 1 || first.Score != 4.5 || first.DisplayScore == nil || *first.DisplayScore != 4.5 {
			t.Errorf("first item = %+v", first)
		}
		if first.Title != "Heat" || first.Year != 1995 || first.PosterPath != "/heat.jpg" {
			t.Errorf("first item not enriched: %+v", first)
		}
	})

	t.Run("display score is clipped, score is not", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations/users/u1?n=1&exclude_rated=false", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		list := decodeList(t, env)
		if len(list.Items) != 1 || list.Items[0].ItemID != "m1" {
			t.Fatalf("items = %v, want [m1]", listIDs(list))
		}
		if list.Items[0].Score != 5.5 {
			t.Errorf("score = %v, want 5.5", list.Items[0].Score)
		}
		if *list.Items[0].DisplayScore != 5.0 {
			t.Errorf("display_score = %v, want 5.0", *list.Items[0].DisplayScore)
		}
	})

	t.Run("repeated request is served from cache", func(t *testing.T) {
		do(t, h, http.MethodGet, "/api/v1/recommendations/users/u2?n=2", "", nil)
		_, env := do(t, h, http.MethodGet, "/api/v1/recommendations/users/u2?n=2", "", nil)
		if !env.Metadata.Cached {
			t.Error("metadata.cached = false on repeated request")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations/users/ghost", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeUnknownUser {
			t.Errorf("error = %+v, want %s", env.Error, ErrCodeUnknownUser)
		}
	})

	for _, query := range []string{"n=0", "n=101", "n=abc", "exclude_rated=maybe"} {
		t.Run("invalid "+query, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations/users/u1?"+query, "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeValidation)
			}
		})
	}
}

func TestUserHybridRecommendations(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations/users/u1/hybrid?n=3", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	list := decodeList(t, env)
	if list.Mode != "hybrid" {
		t.Errorf("mode = %q, want hybrid", list.Mode)
	}
	if len(list.Items) == 0 || len(list.Items) > 3 {
		t.Errorf("got %d items, want 1..3", len(list.Items))
	}
	for _, it := range list.Items {
		if it.DisplayScore != nil {
			t.Errorf("hybrid item %s has display_score", it.ItemID)
		}
	}
}

func TestSeedRecommendations(t *testing.T) {
	h, _ := newTestServer(t, true)

	t.Run("content mode excludes seeds", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations/seeds", `{"seed_ids":["m1"],"n":2}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		list := decodeList(t, env)
		if want := []string{"m6", "m3"}; !slices.Equal(listIDs(list), want) {
			t.Errorf("items = %v, want %v", listIDs(list), want)
		}
		if list.Mode != "content" {
			t.Errorf("mode = %q, want content", list.Mode)
		}
	})

	t.Run("hybrid mode", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations/seeds", `{"seed_ids":["m1"],"n":3,"mode":"hybrid"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		list := decodeList(t, env)
		if list.Mode != "hybrid" || slices.Contains(listIDs(list), "m1") {
			t.Errorf("list = %+v", list)
		}
	})

	t.Run("no valid seeds", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations/seeds", `{"seed_ids":["ghost"]}`, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeNoValidSeeds {
			t.Errorf("error = %+v, want %s", env.Error, ErrCodeNoValidSeeds)
		}
	})

	invalid := []struct {
		name string
		body string
	}{
		{"empty seeds", `{"seed_ids":[]}`},
		{"missing seeds", `{"n":5}`},
		{"blank seed", `{"seed_ids":[" "]}`},
		{"n too large", `{"seed_ids":["m1"],"n":500}`},
		{"unknown mode", `{"seed_ids":["m1"],"mode":"cf"}`},
		{"diversity out of range", `{"seed_ids":["m1"],"diversity":2}`},
		{"unknown field", `{"seed_ids":["m1"],"k":5}`},
		{"malformed json", `{"seed_ids":`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, "/api/v1/recommendations/seeds", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeValidation)
			}
		})
	}
}

func TestServiceUnavailableBeforeLoad(t *testing.T) {
	h, _ := newTestServer(t, false)

	tests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/v1/recommendations/users/u1", ""},
		{http.MethodPost, "/api/v1/recommendations/seeds", `{"seed_ids":["m1"]}`},
		{http.MethodGet, "/health/ready", ""},
		{http.MethodGet, "/api/v1/users/u1/ratings", ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.target, tt.body, nil)
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}
			if env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeServiceUnavailable)
			}
		})
	}
}

func TestUserRatings(t *testing.T) {
	h, _ := newTestServer(t, true)

	decode := func(t *testing.T, env envelope) models.UserRatingList {
		t.Helper()
		var list models.UserRatingList
		if err := json.Unmarshal(env.Data, &list); err != nil {
			t.Fatalf("decode ratings: %v", err)
		}
		return list
	}

	t.Run("default threshold", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/users/u1/ratings", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		list := decode(t, env)
		if list.Count != 1 || list.Ratings[0].ItemID != "m1" || list.Ratings[0].Rating != 5 {
			t.Errorf("ratings = %+v, want [m1 5]", list)
		}
	})

	t.Run("below default threshold", func(t *testing.T) {
		_, env := do(t, h, http.MethodGet, "/api/v1/users/u2/ratings", "", nil)
		if list := decode(t, env); list.Count != 0 || len(list.Ratings) != 0 {
			t.Errorf("ratings = %+v, want none at min_rating 4", list)
		}
	})

	t.Run("min_rating lowered", func(t *testing.T) {
		_, env := do(t, h, http.MethodGet, "/api/v1/users/u2/ratings?min_rating=3&limit=1", "", nil)
		list := decode(t, env)
		if list.Count != 1 || list.Ratings[0].ItemID != "m3" || list.Ratings[0].Rating != 3.5 {
			t.Errorf("ratings = %+v, want [m3 3.5]", list)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/users/ghost/ratings", "", nil)
		if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != ErrCodeUnknownUser {
			t.Errorf("status = %d, error = %+v, want 404 %s", rec.Code, env.Error, ErrCodeUnknownUser)
		}
	})

	for _, query := range []string{"limit=0", "limit=41", "limit=x", "min_rating=6", "min_rating=-1", "min_rating=abc"} {
		t.Run("invalid "+query, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, "/api/v1/users/u1/ratings?"+query, "", nil)
			if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("status = %d, error = %+v, want 400 %s", rec.Code, env.Error, ErrCodeValidation)
			}
		})
	}
}

func TestItem(t *testing.T) {
	h, _ := newTestServer(t, true)

	tests := []struct {
		id        string
		status    int
		inModel   bool
		inContent bool
		title     string
	}{
		{"m2", http.StatusOK, true, true, "Heat"},
		{"m6", http.StatusOK, false, true, ""},
		{"m9", http.StatusOK, false, false, "Catalog Only"},
		{"zzz", http.StatusNotFound, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, "/api/v1/items/"+tt.id, "", nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var detail struct {
				ItemID  string           `json:"item_id"`
				Stats   models.ItemStats `json:"stats"`
				Catalog *catalog.Record  `json:"catalog"`
			}
			if err := json.Unmarshal(env.Data, &detail); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if detail.Stats.InModel != tt.inModel || detail.Stats.InContent != tt.inContent {
				t.Errorf("stats = %+v", detail.Stats)
			}
			title := ""
			if detail.Catalog != nil {
				title = detail.Catalog.Title
			}
			if title != tt.title {
				t.Errorf("catalog title = %q, want %q", title, tt.title)
			}
		})
	}
}

func TestAdminReload(t *testing.T) {
	h, engine := newTestServer(t, true)
	before := engine.Snapshot().Version

	t.Run("rejected without token", func(t *testing.T) {
		for _, header := range []map[string]string{nil, {"Authorization": "Bearer wrong"}, {"Authorization": testAdminToken}} {
			rec, env := do(t, h, http.MethodPost, "/api/v1/admin/reload", "", header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if env.Error == nil || env.Error.Code != ErrCodeUnauthorized {
				t.Errorf("error = %+v", env.Error)
			}
		}
		if engine.Snapshot().Version != before {
			t.Error("snapshot changed without authorization")
		}
	})

	t.Run("reloads with token", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/api/v1/admin/reload", "", map[string]string{"Authorization": "Bearer " + testAdminToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var result models.ReloadResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.SnapshotVersion != before+1 || !result.ModelLoaded || !result.ContentLoaded {
			t.Errorf("result = %+v", result)
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec, env := do(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health models.HealthStatus
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" || health.Users != 2 || health.Items != 4 || health.ContentItems != 5 {
		t.Errorf("health = %+v", health)
	}

	if rec, _ := do(t, h, http.MethodGet, "/health/live", "", nil); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	h.ServeHTTP(mrec, req)
	if mrec.Code != http.StatusOK || !strings.Contains(mrec.Body.String(), "cinemind_") {
		t.Errorf("metrics status = %d, cinemind metrics present = %v", mrec.Code, strings.Contains(mrec.Body.String(), "cinemind_"))
	}
}

func TestRouterFallbacks(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec, env := do(t, h, http.MethodGet, "/api/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route: status %d, error %+v", rec.Code, env.Error)
	}

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/items/m1", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d, want 405", rec.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "trace-1"})
	if rec.Header().Get("X-Request-ID") != "trace-1" {
		t.Errorf("X-Request-ID = %q, want trace-1", rec.Header().Get("X-Request-ID"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
