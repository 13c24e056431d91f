// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"
)

// Reloader swaps in freshly loaded artifacts. Satisfied by *recommend.Engine.
type Reloader interface {
	Reload(ctx context.Context) error
}

// WatchFunc starts watching path and calls cb on every change. The
// returned stop function releases the watch.
type WatchFunc func(path string, cb func(event interface{}, err error)) (stop func() error, err error)

// FileWatch watches a single file through koanf's fsnotify-backed file
// provider. The provider watches the parent directory, so atomic
// rename-into-place writes are observed.
func FileWatch(path string, cb func(event interface{}, err error)) (func() error, error) {
	provider := file.Provider(path)
	if err := provider.Watch(cb); err != nil {
		return nil, err
	}
	return provider.Unwatch, nil
}

// ArtifactWatchConfig configures ArtifactWatchService.
type ArtifactWatchConfig struct {
	// Paths are the artifact files to watch.
	Paths []string

	// Debounce coalesces bursts of file events into one reload.
	// Default: 2s
	Debounce time.Duration

	// ReloadTimeout bounds a single reload.
	// Default: 5m
	ReloadTimeout time.Duration

	// Watch overrides the watcher, for tests. Default: FileWatch.
	Watch WatchFunc
}

// ArtifactWatchService reloads the serving snapshot when an artifact file
// changes on disk.
//
// A failed reload is logged and the current snapshot stays installed. A
// failed watch ends Serve with an error so the supervisor restarts the
// service and re-establishes the watch.
type ArtifactWatchService struct {
	reloader Reloader
	config   ArtifactWatchConfig
	logger   zerolog.Logger
	name     string

	// missed is set when a watch could not be established, typically
	// because the artifact did not exist yet. The next successful start
	// reloads once to pick up whatever was written in between.
	missed atomic.Bool
}

// NewArtifactWatchService creates the watcher service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewArtifactWatchService(reloader Reloader, cfg ArtifactWatchConfig, logger zerolog.Logger) *ArtifactWatchService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 5 * time.Minute
	}
	if cfg.Watch == nil {
		cfg.Watch = FileWatch
	}
	return &ArtifactWatchService{
		reloader: reloader,
		config:   cfg,
		logger:   logger.With().Str("service", "artifact-watch").Logger(),
		name:     "artifact-watch",
	}
}

// Serve implements suture.Service.
func (s *ArtifactWatchService) Serve(ctx context.Context) error {
	if len(s.config.Paths) == 0 {
		return errors.New("artifact watch: no paths configured")
	}

	changed := make(chan string, 1)
	failed := make(chan error, 1)

	for _, path := range s.config.Paths {
		stop, err := s.config.Watch(path, func(_ interface{}, err error) {
			if err != nil {
				select {
				case failed <- fmt.Errorf("watch %s: %w", path, err):
				default:
				}
				return
			}
			select {
			case changed <- path:
			default:
			}
		})
		if err != nil {
			s.missed.Store(true)
			return fmt.Errorf("artifact watch %s: %w", path, err)
		}
		defer func() {
			if err := stop(); err != nil {
				s.logger.Debug().Err(err).Str("path", path).Msg("unwatch failed")
			}
		}()
	}

	s.logger.Info().
		Strs("paths", s.config.Paths).
		Dur("debounce", s.config.Debounce).
		Msg("watching artifacts")

	timer := time.NewTimer(s.config.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	if s.missed.Swap(false) {
		timer.Reset(0)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-failed:
			return fmt.Errorf("artifact watch: %w", err)

		case path := <-changed:
			s.logger.Debug().Str("path", path).Msg("artifact changed")
			timer.Reset(s.config.Debounce)

		case <-timer.C:
			s.reload(ctx)
		}
	}
}

func (s *ArtifactWatchService) reload(ctx context.Context) {
	reloadCtx, cancel := context.WithTimeout(ctx, s.config.ReloadTimeout)
	defer cancel()

	start := time.Now()
	if err := s.reloader.Reload(reloadCtx); err != nil {
		s.logger.Warn().Err(err).Msg("artifact reload failed, keeping current snapshot")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("artifacts reloaded")
}

// String implements fmt.Stringer; suture uses it in log events.
func (s *ArtifactWatchService) String() string {
	return s.name
}
