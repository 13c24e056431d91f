// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

// Package storage persists trained artifacts.
//
// Each artifact is one self-describing file: a gob-encoded envelope holding
// a magic string, the artifact kind, a schema version, metadata, a SHA-256
// checksum and the gzip-compressed gob state. The state structs enumerate
// every field explicitly so a file missing a required field decodes to a
// nil value and is rejected during validation.
//
// # Storage Format
//
//	envelope:
//	  - Magic ("CINEMIND")
//	  - Kind ("cf_model" or "content_space")
//	  - SchemaVersion
//	  - Metadata (ArtifactMetadata)
//	  - Checksum (hex SHA-256 of the uncompressed state)
//	  - Payload (gzip-compressed gob-encoded state)
//
// # Atomic Writes
//
// Save writes to a temporary file in the destination directory, syncs it
// and renames it over the target. Readers see either the previous file or
// the new one, never a partial write.
//
// # Errors
//
// A missing file yields recommend.ArtifactNotFoundError. Anything that
// cannot be decoded, fails the checksum, carries an unknown schema or
// violates a structural invariant yields recommend.CorruptArtifactError.
package storage
