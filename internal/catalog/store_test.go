// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore("")
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{MovieID: "1", TMDbID: 862, Title: "Toy Story", Genres: []string{"Animation"}, Source: SourceTMDb}
	if err := store.Put(rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get("1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Toy Story" || got.TMDbID != 862 || len(got.Genres) != 1 {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := store.Get("2"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestStore_PutIsUpsert(t *testing.T) {
	store := newTestStore(t)

	_ = store.Put(&Record{MovieID: "1", Title: "Old"})
	_ = store.Put(&Record{MovieID: "1", Title: "New"})

	got, err := store.Get("1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "New" {
		t.Errorf("Title = %q, want New", got.Title)
	}
	if n, _ := store.Count(); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestStore_PutValidation(t *testing.T) {
	store := newTestStore(t)
	if err := store.Put(nil); err == nil {
		t.Error("Put(nil) succeeded")
	}
	if err := store.Put(&Record{Title: "no id"}); err == nil {
		t.Error("Put() without movie id succeeded")
	}
}

func TestStore_HasAndEach(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"3", "1", "2"} {
		if err := store.Put(&Record{MovieID: id, Title: "m" + id}); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
	}

	if ok, err := store.Has("2"); err != nil || !ok {
		t.Errorf("Has(2) = %v, %v; want true", ok, err)
	}
	if ok, err := store.Has("9"); err != nil || ok {
		t.Errorf("Has(9) = %v, %v; want false", ok, err)
	}

	var ids []string
	err := store.Each(context.Background(), func(r *Record) error {
		ids = append(ids, r.MovieID)
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}
	if len(ids) != 3 || ids[0] != "1" || ids[2] != "3" {
		t.Errorf("Each() order = %v, want key order [1 2 3]", ids)
	}
}

func TestStore_EachStopsOnError(t *testing.T) {
	store := newTestStore(t)
	_ = store.Put(&Record{MovieID: "1"})
	_ = store.Put(&Record{MovieID: "2"})

	stop := errors.New("stop")
	calls := 0
	err := store.Each(context.Background(), func(*Record) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Each() = %v after %d calls, want stop after 1", err, calls)
	}
}

func TestStore_Failures(t *testing.T) {
	store := newTestStore(t)

	if err := store.RecordFailure("5", 55, errors.New("timeout")); err != nil {
		t.Fatalf("RecordFailure() error = %v", err)
	}
	if err := store.RecordFailure("5", 55, errors.New("502")); err != nil {
		t.Fatalf("RecordFailure() error = %v", err)
	}

	failures, err := store.Failures(context.Background())
	if err != nil {
		t.Fatalf("Failures() error = %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("len(failures) = %d, want 1", len(failures))
	}
	if failures[0].Attempts != 2 || failures[0].Reason != "502" || failures[0].TMDbID != 55 {
		t.Errorf("failure = %+v", failures[0])
	}

	// A successful store clears the failure.
	if err := store.Put(&Record{MovieID: "5", Title: "Recovered"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	failures, _ = store.Failures(context.Background())
	if len(failures) != 0 {
		t.Errorf("failures after Put = %+v, want none", failures)
	}
	if n, _ := store.Count(); n != 1 {
		t.Errorf("Count() = %d, want 1 (failures are not records)", n)
	}
}

func TestStore_Closed(t *testing.T) {
	store, err := OpenStore("")
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := store.Get("1"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Get() after Close error = %v, want ErrStoreClosed", err)
	}
	if err := store.Put(&Record{MovieID: "1"}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Put() after Close error = %v, want ErrStoreClosed", err)
	}
}

func TestStore_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog")

	store, err := OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := store.Put(&Record{MovieID: "7", Title: "Se7en"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("7")
	if err != nil || got.Title != "Se7en" {
		t.Errorf("Get() after reopen = %+v, %v", got, err)
	}
}

func TestStore_ReadOnly(t *testing.T) {
	if _, err := OpenStoreReadOnly(""); err == nil {
		t.Error("OpenStoreReadOnly(\"\") should fail")
	}

	dir := filepath.Join(t.TempDir(), "catalog")
	writer, err := OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := writer.Put(&Record{MovieID: "1", Title: "Toy Story"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reader, err := OpenStoreReadOnly(dir)
	if err != nil {
		t.Fatalf("OpenStoreReadOnly() error = %v", err)
	}
	defer reader.Close()

	got, err := reader.Get("1")
	if err != nil || got.Title != "Toy Story" {
		t.Errorf("Get() = %+v, %v", got, err)
	}
}
