// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinemind/internal/cache"
	"github.com/tomtom215/cinemind/internal/metrics"
)

// Loader reads the persisted artifacts. It is implemented by the storage
// package; a missing file must be reported as ArtifactNotFoundError.
type Loader interface {
	LoadModel(ctx context.Context) (*Model, error)
	LoadContent(ctx context.Context) (*ContentSpace, error)
}

// SimilarityFunc returns the similarity of two items.
type SimilarityFunc func(a, b string) float64

// Diversifier reorders a ranked list for diversity and keeps k items.
// lambda is the relevance weight; 1 means pure relevance.
type Diversifier interface {
	Name() string
	Diversify(ctx context.Context, items []ScoredItem, k int, lambda float64, sim SimilarityFunc) []ScoredItem
}

// Snapshot is the immutable pair of artifacts a request scores against.
// Either artifact may be nil when its file was absent at load time.
type Snapshot struct {
	Model    *Model
	Content  *ContentSpace
	Version  uint64
	LoadedAt time.Time
}

// UserRequest asks for CF recommendations for one user.
type UserRequest struct {
	UserID string
	N      int

	// ExcludeRated overrides Serving.ExcludeRated when set.
	ExcludeRated *bool
}

// SeedRequest asks for recommendations similar to a set of seed items.
type SeedRequest struct {
	SeedIDs []string
	N       int
	Mode    Mode

	// Diversity overrides Serving.DiversityLambda when set.
	Diversity *float64
}

// Result is a ranked list plus the snapshot it was computed from.
type Result struct {
	Items           []ScoredItem
	SnapshotVersion uint64
	Cached          bool
	Fallback        bool
}

// Engine serves recommendations from the current Snapshot. Readers load
// the snapshot pointer once per request and never lock; Reload builds a
// complete new snapshot and swaps the pointer.
type Engine struct {
	config *Config
	logger zerolog.Logger
	loader Loader

	diversifier Diversifier
	seedText    SeedTextSource

	snapshot atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
	version  uint64 // guarded by reloadMu

	cache *cache.LRU[[]ScoredItem]
}

// NewEngine creates an engine with no snapshot installed. Call Reload (or
// Install) before serving.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, loader Loader, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
		loader: loader,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[[]ScoredItem](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// SetDiversifier installs the reranker used for seed results when the
// diversity lambda is below 1.
func (e *Engine) SetDiversifier(d Diversifier) {
	e.diversifier = d
	e.logger.Info().Str("diversifier", d.Name()).Msg("registered diversifier")
}

// SeedTextSource supplies catalog text for seed items that have no row in
// the content space.
type SeedTextSource interface {
	SeedText(ctx context.Context, itemID string) (string, bool)
}

// SetSeedTextSource lets seed requests project catalog text for seeds the
// content space does not cover. Call before serving.
func (e *Engine) SetSeedTextSource(src SeedTextSource) {
	e.seedText = src
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Snapshot returns the installed snapshot, or nil before the first load.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Ready reports whether a snapshot with at least one artifact is installed.
func (e *Engine) Ready() bool {
	s := e.snapshot.Load()
	return s != nil && (s.Model != nil || s.Content != nil)
}

// Install swaps in a snapshot built from already-validated artifacts.
func (e *Engine) Install(model *Model, content *ContentSpace) *Snapshot {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()
	return e.install(model, content)
}

// install must be called with reloadMu held.
func (e *Engine) install(model *Model, content *ContentSpace) *Snapshot {
	e.version++
	snap := &Snapshot{
		Model:    model,
		Content:  content,
		Version:  e.version,
		LoadedAt: time.Now(),
	}
	e.snapshot.Store(snap)
	if e.cache != nil {
		e.cache.Purge()
	}

	if model != nil {
		metrics.RecordModelShape(len(model.UserIDs), len(model.ItemIDs), model.Rank(), model.Meta.NumRatings)
	}
	if content != nil {
		metrics.RecordContentShape(content.Len(), len(content.Vocabulary))
	}
	return snap
}

// Reload loads both artifacts and installs them atomically. A missing
// artifact leaves that half of the snapshot nil; any other failure keeps
// the current snapshot untouched and returns the error.
func (e *Engine) Reload(ctx context.Context) error {
	if e.loader == nil {
		return errors.New("reload: no artifact loader configured")
	}

	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	start := time.Now()
	model, modelErr := e.loader.LoadModel(ctx)
	content, contentErr := e.loader.LoadContent(ctx)

	err := errors.Join(fatalLoadError(modelErr), fatalLoadError(contentErr))
	if err == nil && model == nil && content == nil {
		err = errors.Join(modelErr, contentErr)
	}
	if err != nil {
		metrics.RecordReload(e.version, err)
		e.logger.Error().Err(err).Msg("reload failed, keeping current snapshot")
		return fmt.Errorf("reload: %w", err)
	}

	if modelErr != nil {
		e.logger.Warn().Err(modelErr).Msg("cf model artifact missing, user recommendations unavailable")
	}
	if contentErr != nil {
		e.logger.Warn().Err(contentErr).Msg("content artifact missing, seed recommendations unavailable")
	}

	snap := e.install(model, content)
	metrics.RecordReload(snap.Version, nil)

	event := e.logger.Info().
		Uint64("version", snap.Version).
		Dur("duration", time.Since(start))
	if model != nil {
		event = event.Int("users", len(model.UserIDs)).Int("items", len(model.ItemIDs)).Int("rank", model.Rank())
	}
	if content != nil {
		event = event.Int("content_items", content.Len()).Int("terms", len(content.Vocabulary))
	}
	event.Msg("snapshot installed")
	return nil
}

func fatalLoadError(err error) error {
	if err == nil || errors.Is(err, ErrArtifactNotFound) {
		return nil
	}
	return err
}

// RecommendForUser returns CF recommendations for a user.
func (e *Engine) RecommendForUser(ctx context.Context, req UserRequest) (*Result, error) {
	start := time.Now()
	res, err := e.recommendForUser(ctx, req)
	metrics.RecordRecommendation("user", outcome(err), time.Since(start))
	return res, err
}

func (e *Engine) recommendForUser(ctx context.Context, req UserRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.snapshot.Load()
	if snap == nil || snap.Model == nil {
		return nil, fmt.Errorf("cf model not loaded: %w", ErrServiceUnavailable)
	}

	n := e.clampN(req.N)
	exclude := e.config.Serving.ExcludeRated
	if req.ExcludeRated != nil {
		exclude = *req.ExcludeRated
	}
	fallback := e.config.Serving.UnknownUserFallback && !snap.Model.HasUser(req.UserID)

	key := cacheKey(snap.Version, "user", req.UserID, strconv.Itoa(n), strconv.FormatBool(exclude))
	if items, ok := e.cached(key); ok {
		return &Result{Items: items, SnapshotVersion: snap.Version, Cached: true, Fallback: fallback}, nil
	}

	items, err := RecommendForUser(snap.Model, req.UserID, n, UserOptions{
		ExcludeRated: exclude,
		Fallback:     e.config.Serving.UnknownUserFallback,
	})
	if err != nil {
		return nil, err
	}
	e.store(key, items)
	return &Result{Items: items, SnapshotVersion: snap.Version, Fallback: fallback}, nil
}

// RecommendHybridForUser blends a user's CF candidates with content
// similarity to the items they rated.
func (e *Engine) RecommendHybridForUser(ctx context.Context, req UserRequest) (*Result, error) {
	start := time.Now()
	res, err := e.recommendHybridForUser(ctx, req)
	metrics.RecordRecommendation("user_hybrid", outcome(err), time.Since(start))
	return res, err
}

func (e *Engine) recommendHybridForUser(ctx context.Context, req UserRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.snapshot.Load()
	if snap == nil || snap.Model == nil {
		return nil, fmt.Errorf("cf model not loaded: %w", ErrServiceUnavailable)
	}

	n := e.clampN(req.N)
	fallback := e.config.Serving.UnknownUserFallback && !snap.Model.HasUser(req.UserID)

	key := cacheKey(snap.Version, "hybrid", req.UserID, strconv.Itoa(n))
	if items, ok := e.cached(key); ok {
		return &Result{Items: items, SnapshotVersion: snap.Version, Cached: true, Fallback: fallback}, nil
	}

	items, err := RecommendHybridForUser(snap.Model, snap.Content, req.UserID, n, HybridOptions{
		Weights:    e.config.Hybrid.Weights(),
		CandidateK: e.config.Hybrid.CandidateK,
		Fallback:   e.config.Serving.UnknownUserFallback,
	})
	if err != nil {
		return nil, err
	}
	e.store(key, items)
	return &Result{Items: items, SnapshotVersion: snap.Version, Fallback: fallback}, nil
}

// RecommendFromSeeds returns items similar to the request's seeds, blended
// with CF when the mode is hybrid and a model is loaded.
func (e *Engine) RecommendFromSeeds(ctx context.Context, req SeedRequest) (*Result, error) {
	start := time.Now()
	mode := req.Mode
	if mode == "" {
		mode = ModeContent
	}
	res, err := e.recommendFromSeeds(ctx, req, mode)
	metrics.RecordRecommendation("seed_"+string(mode), outcome(err), time.Since(start))
	return res, err
}

func (e *Engine) recommendFromSeeds(ctx context.Context, req SeedRequest, mode Mode) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	snap := e.snapshot.Load()
	if snap == nil || snap.Content == nil {
		return nil, fmt.Errorf("content space not loaded: %w", ErrServiceUnavailable)
	}

	n := e.clampN(req.N)
	lambda := e.config.Serving.DiversityLambda
	if req.Diversity != nil {
		lambda = *req.Diversity
	}
	diversify := e.diversifier != nil && lambda < 1

	seeds := slices.Clone(req.SeedIDs)
	slices.Sort(seeds)
	seeds = slices.Compact(seeds)

	key := cacheKey(snap.Version, "seeds", string(mode), strings.Join(seeds, ","),
		strconv.Itoa(n), strconv.FormatFloat(lambda, 'g', -1, 64))
	if items, ok := e.cached(key); ok {
		return &Result{Items: items, SnapshotVersion: snap.Version, Cached: true}, nil
	}

	// Diversification needs a deeper pool than the final list.
	fetch := n
	if diversify {
		fetch = max(n*4, n+20)
	}

	items, err := RecommendFromSeeds(snap.Content, seeds, fetch, mode, snap.Model, SeedOptions{
		Weights:    e.config.Hybrid.Weights(),
		CandidateK: e.config.Hybrid.SeedCandidateK,
		SeedTexts:  e.seedTexts(ctx, snap.Content, seeds),
	})
	if err != nil {
		return nil, err
	}
	if mode == ModeHybrid && snap.Model == nil {
		e.logger.Debug().Msg("hybrid seed request served from content only, no cf model loaded")
	}

	if diversify {
		content := snap.Content
		items = e.diversifier.Diversify(ctx, items, n, lambda, func(a, b string) float64 {
			sim, _ := content.Similarity(a, b)
			return sim
		})
	}
	e.store(key, items)
	return &Result{Items: items, SnapshotVersion: snap.Version}, nil
}

// seedTexts looks up catalog text for seeds without a content row.
func (e *Engine) seedTexts(ctx context.Context, cs *ContentSpace, seeds []string) map[string]string {
	if e.seedText == nil || cs.IDF == nil {
		return nil
	}
	var texts map[string]string
	for _, id := range seeds {
		if cs.Has(id) {
			continue
		}
		if text, ok := e.seedText.SeedText(ctx, id); ok && text != "" {
			if texts == nil {
				texts = make(map[string]string)
			}
			texts[id] = text
		}
	}
	return texts
}

func (e *Engine) clampN(n int) int {
	if n <= 0 {
		return e.config.Serving.DefaultN
	}
	return min(n, e.config.Serving.MaxN)
}

func (e *Engine) cached(key string) ([]ScoredItem, bool) {
	if e.cache == nil {
		return nil, false
	}
	items, ok := e.cache.Get(key)
	metrics.RecordCacheLookup(ok)
	return items, ok
}

func (e *Engine) store(key string, items []ScoredItem) {
	if e.cache != nil {
		e.cache.Add(key, slices.Clip(slices.Clone(items)))
	}
}

func cacheKey(version uint64, parts ...string) string {
	return strconv.FormatUint(version, 10) + "|" + strings.Join(parts, "|")
}

// outcome maps an error to a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrNoValidSeeds):
		return "no_valid_seeds"
	case errors.Is(err, ErrServiceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
