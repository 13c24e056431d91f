// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package training runs the offline pipeline that produces the serving
// artifacts.
//
// The CF stage reads the ratings file, builds the rating matrix, fits the
// truncated SVD and saves the model artifact. The content stage renders
// every catalog record to text, builds the TF-IDF space and saves the
// content artifact. Both writes are atomic, so a serving process watching
// the artifact directory only ever loads complete files.
package training
