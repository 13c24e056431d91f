// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/cinemind/internal/metrics"
	"github.com/tomtom215/cinemind/internal/recommend"
)

// Magic identifies a cinemind artifact file.
const Magic = "CINEMIND"

// SchemaVersion is the state layout written by this package.
const SchemaVersion = 1

// Artifact kinds.
const (
	KindModel   = "cf_model"
	KindContent = "content_space"
)

// ArtifactMetadata describes a stored artifact. It is readable without
// decompressing the payload.
type ArtifactMetadata struct {
	Kind          string    `json:"kind"`
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	BuiltAt       time.Time `json:"built_at"`

	// Rows is users for a model and documents for a content space.
	Rows int `json:"rows"`
	// Cols is items for a model and vocabulary terms for a content space.
	Cols int `json:"cols"`
	// Rank is the factor count of a model, 0 for a content space.
	Rank int `json:"rank,omitempty"`

	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

// envelope is the on-disk format.
type envelope struct {
	Magic         string
	Kind          string
	SchemaVersion int
	Metadata      ArtifactMetadata
	Payload       []byte
}

// denseState is a row-major dense matrix.
type denseState struct {
	Rows int
	Cols int
	Data []float64
}

// sparseState is a CSR matrix.
type sparseState struct {
	Rows   int
	Cols   int
	RowPtr []int
	ColIdx []int
	Values []float64
}

// modelState is the serializable state of a recommend.Model.
type modelState struct {
	UserFactors *denseState
	ItemFactors *denseState
	UserIDs     []string
	ItemIDs     []string
	GlobalMean  float64
	UserOffsets []float64
	RatedItems  [][]int
	RatedValues [][]float64
	ItemMeans   []float64
	ItemCounts  []int
	Meta        recommend.ModelMetadata
}

// contentState is the serializable state of a recommend.ContentSpace.
type contentState struct {
	Vocabulary map[string]int
	Vectors    *sparseState
	ItemIDs    []string
	CatalogIDs []int64
	IDF        []float64
	Meta       recommend.ContentMetadata
}

// SaveModel writes m to path atomically.
func SaveModel(ctx context.Context, path string, m *recommend.Model) error {
	if m == nil || m.UserFactors == nil || m.ItemFactors == nil {
		return errors.New("save model: model has no factors")
	}
	users, rank := m.UserFactors.Dims()
	meta := ArtifactMetadata{
		Kind:    KindModel,
		BuiltAt: m.Meta.TrainedAt,
		Rows:    users,
		Cols:    len(m.ItemIDs),
		Rank:    rank,
	}
	state := modelState{
		UserFactors: fromDense(m.UserFactors),
		ItemFactors: fromDense(m.ItemFactors),
		UserIDs:     m.UserIDs,
		ItemIDs:     m.ItemIDs,
		GlobalMean:  m.GlobalMean,
		UserOffsets: m.UserOffsets,
		RatedItems:  m.RatedItems,
		RatedValues: m.RatedValues,
		ItemMeans:   m.ItemMeans,
		ItemCounts:  m.ItemCounts,
		Meta:        m.Meta,
	}
	err := writeArtifact(ctx, path, meta, &state)
	metrics.RecordArtifactSave(KindModel, err)
	return err
}

// LoadModel reads and validates a model artifact.
func LoadModel(ctx context.Context, path string) (*recommend.Model, error) {
	var state modelState
	if _, err := readArtifact(ctx, path, KindModel, &state); err != nil {
		return nil, err
	}

	m := &recommend.Model{
		UserIDs:     state.UserIDs,
		ItemIDs:     state.ItemIDs,
		GlobalMean:  state.GlobalMean,
		UserOffsets: state.UserOffsets,
		RatedItems:  state.RatedItems,
		RatedValues: state.RatedValues,
		ItemMeans:   state.ItemMeans,
		ItemCounts:  state.ItemCounts,
		Meta:        state.Meta,
	}
	var err error
	if m.UserFactors, err = state.UserFactors.toDense(); err != nil {
		return nil, corrupt(path, "user_factors", err)
	}
	if m.ItemFactors, err = state.ItemFactors.toDense(); err != nil {
		return nil, corrupt(path, "item_factors", err)
	}
	if err := m.Index(); err != nil {
		return nil, corrupt(path, "invalid model", err)
	}
	return m, nil
}

// SaveContent writes cs to path atomically.
func SaveContent(ctx context.Context, path string, cs *recommend.ContentSpace) error {
	if cs == nil || cs.Vectors == nil {
		return errors.New("save content: nil content space")
	}
	meta := ArtifactMetadata{
		Kind:    KindContent,
		BuiltAt: cs.Meta.BuiltAt,
		Rows:    cs.Vectors.Rows,
		Cols:    cs.Vectors.Cols,
	}
	state := contentState{
		Vocabulary: cs.Vocabulary,
		Vectors: &sparseState{
			Rows:   cs.Vectors.Rows,
			Cols:   cs.Vectors.Cols,
			RowPtr: cs.Vectors.RowPtr,
			ColIdx: cs.Vectors.ColIdx,
			Values: cs.Vectors.Values,
		},
		ItemIDs:    cs.ItemIDs,
		CatalogIDs: cs.CatalogIDs,
		IDF:        cs.IDF,
		Meta:       cs.Meta,
	}
	err := writeArtifact(ctx, path, meta, &state)
	metrics.RecordArtifactSave(KindContent, err)
	return err
}

// LoadContent reads and validates a content space artifact.
func LoadContent(ctx context.Context, path string) (*recommend.ContentSpace, error) {
	var state contentState
	if _, err := readArtifact(ctx, path, KindContent, &state); err != nil {
		return nil, err
	}

	cs := &recommend.ContentSpace{
		Vocabulary: state.Vocabulary,
		ItemIDs:    state.ItemIDs,
		CatalogIDs: state.CatalogIDs,
		IDF:        state.IDF,
		Meta:       state.Meta,
	}
	if cs.Vocabulary == nil {
		cs.Vocabulary = map[string]int{}
	}
	if state.Vectors != nil {
		cs.Vectors = &recommend.SparseMatrix{
			Rows:   state.Vectors.Rows,
			Cols:   state.Vectors.Cols,
			RowPtr: state.Vectors.RowPtr,
			ColIdx: state.Vectors.ColIdx,
			Values: state.Vectors.Values,
		}
	}
	if err := cs.Index(); err != nil {
		return nil, corrupt(path, "invalid content space", err)
	}
	return cs, nil
}

// ReadMetadata returns the metadata of the artifact at path without
// decoding its payload.
func ReadMetadata(path string) (*ArtifactMetadata, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}
	return &env.Metadata, nil
}

// writeArtifact encodes state, compresses it and writes the envelope.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func writeArtifact(ctx context.Context, path string, meta ArtifactMetadata, state interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("encode %s: %w", meta.Kind, err)
	}
	raw := buf.Bytes()
	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return fmt.Errorf("compress %s: %w", meta.Kind, err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.SchemaVersion = SchemaVersion
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	return writeEnvelope(path, &envelope{
		Magic:         Magic,
		Kind:          meta.Kind,
		SchemaVersion: SchemaVersion,
		Metadata:      meta,
		Payload:       compressed.Bytes(),
	})
}

// writeEnvelope writes env to a temporary file next to path and renames it
// into place.
func writeEnvelope(path string, env *envelope) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()           //nolint:errcheck // already failing
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	if err = gob.NewEncoder(tmp).Encode(env); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// readArtifact opens path, checks the envelope and decodes the payload
// into state.
func readArtifact(ctx context.Context, path, kind string, state interface{}) (*ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}
	if env.Kind != kind {
		return nil, corrupt(path, fmt.Sprintf("artifact kind %q, want %q", env.Kind, kind), nil)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(env.Payload))
	if err != nil {
		return nil, corrupt(path, "decompress payload", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, corrupt(path, "read payload", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != env.Metadata.Checksum {
		return nil, corrupt(path, fmt.Sprintf("checksum mismatch: expected %s, got %s", env.Metadata.Checksum, checksum), nil)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(state); err != nil {
		return nil, corrupt(path, "decode payload", err)
	}
	return &env.Metadata, nil
}

func readEnvelope(path string) (*envelope, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &recommend.ArtifactNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, corrupt(path, "decode envelope", err)
	}
	if env.Magic != Magic {
		return nil, corrupt(path, "not a cinemind artifact", nil)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, corrupt(path, fmt.Sprintf("unsupported schema version %d, want %d", env.SchemaVersion, SchemaVersion), nil)
	}
	return &env, nil
}

func corrupt(path, reason string, cause error) error {
	return &recommend.CorruptArtifactError{Path: path, Reason: reason, Cause: cause}
}
