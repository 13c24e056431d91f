// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package logging provides the process-wide zerolog logger for Cinemind.
//
// Every binary (server, train, ingest) calls Init once with the values from
// config.LoggingConfig. Packages then log through the helpers:
//
//	logging.Info().Str("path", path).Msg("Model artifact loaded")
//	logging.Error().Err(err).Msg("Reload failed")
//
// Long-lived components derive a child logger with a component field:
//
//	logger := logging.With().Str("component", "engine").Logger()
//
// HTTP handlers use Ctx, which adds the request ID installed by the API
// middleware:
//
//	logging.Ctx(r.Context()).Warn().Str("user_id", id).Msg("Unknown user")
//
// Libraries that require log/slog (sutureslog) get an adapter from
// NewSlogLogger so all output goes through the same zerolog writer.
package logging
