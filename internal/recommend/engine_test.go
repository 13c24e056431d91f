// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeLoader implements Loader for testing.
type fakeLoader struct {
	mu         sync.Mutex
	model      *Model
	content    *ContentSpace
	modelErr   error
	contentErr error
	calls      int32
}

func (f *fakeLoader) LoadModel(ctx context.Context) (*Model, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	return f.model, nil
}

func (f *fakeLoader) LoadContent(ctx context.Context) (*ContentSpace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return f.content, nil
}

func (f *fakeLoader) set(fn func(*fakeLoader)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// reverseDiversifier records calls and reverses the first k items.
type reverseDiversifier struct {
	calls   int32
	lambdas []float64
	mu      sync.Mutex
}

func (d *reverseDiversifier) Name() string { return "reverse" }

func (d *reverseDiversifier) Diversify(ctx context.Context, items []ScoredItem, k int, lambda float64, sim SimilarityFunc) []ScoredItem {
	atomic.AddInt32(&d.calls, 1)
	d.mu.Lock()
	d.lambdas = append(d.lambdas, lambda)
	d.mu.Unlock()
	_ = sim(items[0].ItemID, items[0].ItemID)
	out := slices.Clone(TopN(items, k))
	slices.Reverse(out)
	return out
}

func newTestEngine(t *testing.T, cfg *Config) (*Engine, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{model: newTestModel(t), content: newTestContent(t)}
	engine, err := NewEngine(cfg, loader, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine, loader
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		engine, err := NewEngine(nil, nil, testLogger())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		if engine.Config().Training.Rank != 50 {
			t.Errorf("Config().Training.Rank = %d, want 50", engine.Config().Training.Rank)
		}
		if engine.Ready() {
			t.Error("Ready() = true before any load")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Serving.MaxN = 0
		if _, err := NewEngine(cfg, nil, testLogger()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})

	t.Run("reload without loader", func(t *testing.T) {
		engine, _ := NewEngine(nil, nil, testLogger())
		if err := engine.Reload(context.Background()); err == nil {
			t.Error("Reload() error = nil, want error")
		}
	})
}

func TestEngine_NotLoaded(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := engine.RecommendForUser(ctx, UserRequest{UserID: "u1"}); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("RecommendForUser() error = %v, want ErrServiceUnavailable", err)
	}
	if _, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"m1"}}); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("RecommendFromSeeds() error = %v, want ErrServiceUnavailable", err)
	}
}

func TestEngine_Reload(t *testing.T) {
	ctx := context.Background()

	t.Run("installs both artifacts", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		if err := engine.Reload(ctx); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
		snap := engine.Snapshot()
		if snap == nil || snap.Model == nil || snap.Content == nil {
			t.Fatalf("Snapshot() = %+v, want both artifacts", snap)
		}
		if snap.Version != 1 {
			t.Errorf("Version = %d, want 1", snap.Version)
		}
		if !engine.Ready() {
			t.Error("Ready() = false after reload")
		}
	})

	t.Run("corrupt artifact keeps current snapshot", func(t *testing.T) {
		engine, loader := newTestEngine(t, nil)
		if err := engine.Reload(ctx); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
		before := engine.Snapshot()

		loader.set(func(f *fakeLoader) {
			f.modelErr = &CorruptArtifactError{Path: "model.bin", Reason: "checksum mismatch"}
		})
		err := engine.Reload(ctx)
		if !errors.Is(err, ErrCorruptArtifact) {
			t.Fatalf("Reload() error = %v, want ErrCorruptArtifact", err)
		}
		if engine.Snapshot() != before {
			t.Error("snapshot replaced after failed reload")
		}
	})

	t.Run("missing model installs content only", func(t *testing.T) {
		engine, loader := newTestEngine(t, nil)
		loader.set(func(f *fakeLoader) { f.modelErr = &ArtifactNotFoundError{Path: "model.bin"} })

		if err := engine.Reload(ctx); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
		snap := engine.Snapshot()
		if snap.Model != nil || snap.Content == nil {
			t.Fatalf("Snapshot() = %+v, want content only", snap)
		}
		if _, err := engine.RecommendForUser(ctx, UserRequest{UserID: "u1"}); !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("RecommendForUser() error = %v, want ErrServiceUnavailable", err)
		}
		res, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"m1"}, Mode: ModeHybrid})
		if err != nil {
			t.Fatalf("RecommendFromSeeds() error = %v", err)
		}
		if len(res.Items) == 0 {
			t.Error("RecommendFromSeeds() returned no items")
		}
	})

	t.Run("both missing fails", func(t *testing.T) {
		engine, loader := newTestEngine(t, nil)
		loader.set(func(f *fakeLoader) {
			f.modelErr = &ArtifactNotFoundError{Path: "model.bin"}
			f.contentErr = &ArtifactNotFoundError{Path: "content.bin"}
		})
		err := engine.Reload(ctx)
		if !errors.Is(err, ErrArtifactNotFound) {
			t.Fatalf("Reload() error = %v, want ErrArtifactNotFound", err)
		}
		if engine.Snapshot() != nil {
			t.Error("snapshot installed after failed reload")
		}
	})
}

func TestEngine_RecommendForUser(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, nil)
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	t.Run("excludes rated by default", func(t *testing.T) {
		res, err := engine.RecommendForUser(ctx, UserRequest{UserID: "u1", N: 2})
		if err != nil {
			t.Fatalf("RecommendForUser() error = %v", err)
		}
		if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"m2", "m3"}) {
			t.Errorf("ids = %v, want [m2 m3]", ids)
		}
		if res.SnapshotVersion != 1 {
			t.Errorf("SnapshotVersion = %d, want 1", res.SnapshotVersion)
		}
	})

	t.Run("request override includes rated", func(t *testing.T) {
		include := false
		res, err := engine.RecommendForUser(ctx, UserRequest{UserID: "u1", N: 2, ExcludeRated: &include})
		if err != nil {
			t.Fatalf("RecommendForUser() error = %v", err)
		}
		if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"m1", "m2"}) {
			t.Errorf("ids = %v, want [m1 m2]", ids)
		}
	})

	t.Run("zero n uses default", func(t *testing.T) {
		res, err := engine.RecommendForUser(ctx, UserRequest{UserID: "u2"})
		if err != nil {
			t.Fatalf("RecommendForUser() error = %v", err)
		}
		if len(res.Items) != 3 {
			t.Errorf("len(Items) = %d, want 3", len(res.Items))
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := engine.RecommendForUser(ctx, UserRequest{UserID: "ghost"})
		if !errors.Is(err, ErrUnknownUser) {
			t.Errorf("error = %v, want ErrUnknownUser", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := engine.RecommendForUser(cctx, UserRequest{UserID: "u1"}); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestEngine_UnknownUserFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Serving.UnknownUserFallback = true
	engine, _ := newTestEngine(t, cfg)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	res, err := engine.RecommendForUser(context.Background(), UserRequest{UserID: "ghost", N: 2})
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if !res.Fallback {
		t.Error("Fallback = false, want true")
	}
	for _, it := range res.Items {
		if it.Score != 3.5 {
			t.Errorf("score(%s) = %v, want global mean 3.5", it.ItemID, it.Score)
		}
	}
}

func TestEngine_RecommendHybridForUser(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	res, err := engine.RecommendHybridForUser(context.Background(), UserRequest{UserID: "u1", N: 2})
	if err != nil {
		t.Fatalf("RecommendHybridForUser() error = %v", err)
	}
	if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"m2", "m3"}) {
		t.Errorf("ids = %v, want [m2 m3]", ids)
	}
}

func TestEngine_RecommendFromSeeds(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, nil)
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	t.Run("default mode is content", func(t *testing.T) {
		res, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"m2", "m1"}, N: 2})
		if err != nil {
			t.Fatalf("RecommendFromSeeds() error = %v", err)
		}
		if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"m3", "m6"}) {
			t.Errorf("ids = %v, want [m3 m6]", ids)
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		if _, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"m1"}, Mode: "cf"}); err == nil {
			t.Error("error = nil, want error")
		}
	})

	t.Run("no valid seeds", func(t *testing.T) {
		_, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"ghost"}})
		if !errors.Is(err, ErrNoValidSeeds) {
			t.Errorf("error = %v, want ErrNoValidSeeds", err)
		}
	})
}

type mapSeedText map[string]string

func (m mapSeedText) SeedText(_ context.Context, itemID string) (string, bool) {
	text, ok := m[itemID]
	return text, ok
}

func TestEngine_SeedTextSource(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{content: newTextContent(t)}
	engine, err := NewEngine(nil, loader, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	req := SeedRequest{SeedIDs: []string{"cold"}, N: 1}
	if _, err := engine.RecommendFromSeeds(ctx, req); !errors.Is(err, ErrNoValidSeeds) {
		t.Fatalf("error without text source = %v, want ErrNoValidSeeds", err)
	}

	engine.SetSeedTextSource(mapSeedText{"cold": "gamma gamma", "t1": "beta"})
	res, err := engine.RecommendFromSeeds(ctx, req)
	if err != nil {
		t.Fatalf("RecommendFromSeeds() error = %v", err)
	}
	if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"t3"}) {
		t.Errorf("ids = %v, want [t3]", ids)
	}
	if got := engine.seedTexts(ctx, engine.Snapshot().Content, []string{"cold", "t1", "none"}); len(got) != 1 || got["cold"] == "" {
		t.Errorf("seedTexts = %v, want only the seed without a row", got)
	}
}

func TestEngine_Diversifier(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	engine, _ := newTestEngine(t, cfg)
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	div := &reverseDiversifier{}
	engine.SetDiversifier(div)

	t.Run("lambda 1 skips diversification", func(t *testing.T) {
		if _, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"m1", "m2"}, N: 2}); err != nil {
			t.Fatalf("RecommendFromSeeds() error = %v", err)
		}
		if atomic.LoadInt32(&div.calls) != 0 {
			t.Errorf("diversifier calls = %d, want 0", div.calls)
		}
	})

	t.Run("request lambda enables diversification", func(t *testing.T) {
		lambda := 0.5
		res, err := engine.RecommendFromSeeds(ctx, SeedRequest{SeedIDs: []string{"m1", "m2"}, N: 2, Diversity: &lambda})
		if err != nil {
			t.Fatalf("RecommendFromSeeds() error = %v", err)
		}
		if atomic.LoadInt32(&div.calls) != 1 {
			t.Fatalf("diversifier calls = %d, want 1", div.calls)
		}
		if div.lambdas[0] != 0.5 {
			t.Errorf("lambda = %v, want 0.5", div.lambdas[0])
		}
		if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"m6", "m3"}) {
			t.Errorf("ids = %v, want [m6 m3]", ids)
		}
	})
}

func TestEngine_Cache(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, nil)
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	req := UserRequest{UserID: "u1", N: 2}

	first, err := engine.RecommendForUser(ctx, req)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if first.Cached {
		t.Error("first request Cached = true")
	}

	second, err := engine.RecommendForUser(ctx, req)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if !second.Cached {
		t.Error("second request Cached = false")
	}
	if !slices.Equal(itemIDs(first.Items), itemIDs(second.Items)) {
		t.Errorf("cached ids = %v, want %v", itemIDs(second.Items), itemIDs(first.Items))
	}
	if cap(second.Items) != len(second.Items) {
		t.Errorf("cached cap = %d, want %d", cap(second.Items), len(second.Items))
	}

	snap := engine.Snapshot()
	engine.Install(snap.Model, snap.Content)

	third, err := engine.RecommendForUser(ctx, req)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if third.Cached {
		t.Error("request after install Cached = true, want cache purged")
	}
	if third.SnapshotVersion != 2 {
		t.Errorf("SnapshotVersion = %d, want 2", third.SnapshotVersion)
	}
}

func TestEngine_ConcurrentReloadAndRecommend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, _ := newTestEngine(t, nil)
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	const readers = 8
	const requestsPerReader = 50
	var wg sync.WaitGroup
	errChan := make(chan error, readers*requestsPerReader+10)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < requestsPerReader; j++ {
				res, err := engine.RecommendForUser(ctx, UserRequest{UserID: "u2", N: 2})
				if err != nil {
					errChan <- err
					continue
				}
				if ids := itemIDs(res.Items); !slices.Equal(ids, []string{"m2", "m4"}) {
					errChan <- errors.New("unexpected ranking during reload")
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			if err := engine.Reload(ctx); err != nil {
				errChan <- err
			}
		}
	}()

	wg.Wait()
	close(errChan)
	for err := range errChan {
		t.Errorf("concurrent error: %v", err)
	}
	if got := engine.Snapshot().Version; got != 11 {
		t.Errorf("Version = %d, want 11", got)
	}
}
