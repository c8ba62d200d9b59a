package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kalorikollen-store-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(tempDir(t), "data", "ledger.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// exercise runs the same contract against any provider.
func exercise(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()
	a := p.ForDevice("device-a")
	b := p.ForDevice("device-b")

	if _, ok, err := a.Get(ctx, KeyMeals); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v; want absent", ok, err)
	}

	if err := a.Set(ctx, KeyMeals, `[{"dish":"Pasta"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := a.Set(ctx, KeyMeals, `[]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := a.Get(ctx, KeyMeals)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if got != `[]` {
		t.Errorf("Get = %q, want %q", got, `[]`)
	}

	if _, ok, _ := b.Get(ctx, KeyMeals); ok {
		t.Error("device-b sees device-a's meals")
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	exercise(t, setupSQLite(t))
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(tempDir(t), "ledger.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.ForDevice("d").Set(context.Background(), KeyHeight, "180"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, ok, err := s.ForDevice("d").Get(context.Background(), KeyHeight)
	if err != nil || !ok || got != "180" {
		t.Errorf("Get after reopen = %q, %v, %v; want %q", got, ok, err, "180")
	}
}
