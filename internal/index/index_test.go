// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := NewStore(types.IndexConfig{MaxResults: 20}, tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func writeBoard(t *testing.T, tmpDir string, tasks []types.Task) string {
	t.Helper()
	dir := filepath.Join(tmpDir, ".taskdeck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleTasks() []types.Task {
	return []types.Task{
		{
			ID: "t1", Title: "Add rate limiting to the API",
			Description: "Protect public endpoints with a token bucket",
			Status:      types.StatusBacklog, Priority: types.PriorityHigh,
			Labels: []string{"api", "infra"},
		},
		{
			ID: "t2", Title: "Fix login redirect loop",
			Description: "OAuth callback bounces between IdP and app",
			Status:      types.StatusInProgress, Priority: types.PriorityMedium,
			Labels: []string{"auth"},
		},
		{
			ID: "t3", Title: "Write onboarding docs",
			Status: types.StatusDone, Priority: types.PriorityLow,
		},
	}
}

func syncBoard(t *testing.T, store *Store, boardPath string) {
	t.Helper()
	var out bytes.Buffer
	if _, err := store.Sync(context.Background(), boardPath, &out); err != nil {
		t.Fatal(err)
	}
}

// --- tests ---

func TestSyncAndSearch(t *testing.T) {
	store, tmpDir := testSetup(t)
	boardPath := writeBoard(t, tmpDir, sampleTasks())
	syncBoard(t, store, boardPath)

	results, err := store.Search(context.Background(), QueryOptions{Query: "rate limiting"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "t1" {
		t.Errorf("result id = %s", results[0].ID)
	}
	if len(results[0].Labels) != 2 {
		t.Errorf("labels = %v", results[0].Labels)
	}
}

func TestSearchFilters(t *testing.T) {
	store, tmpDir := testSetup(t)
	boardPath := writeBoard(t, tmpDir, sampleTasks())
	syncBoard(t, store, boardPath)

	ctx := context.Background()

	byStatus, err := store.Search(ctx, QueryOptions{Status: types.StatusInProgress})
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != "t2" {
		t.Errorf("status filter results = %+v", byStatus)
	}

	byLabel, err := store.Search(ctx, QueryOptions{Label: "infra"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byLabel) != 1 || byLabel[0].ID != "t1" {
		t.Errorf("label filter results = %+v", byLabel)
	}

	combined, err := store.Search(ctx, QueryOptions{Query: "OAuth", Status: types.StatusDone})
	if err != nil {
		t.Fatal(err)
	}
	if len(combined) != 0 {
		t.Errorf("combined filter should exclude t2: %+v", combined)
	}
}

func TestSyncSkipsUnchangedBoard(t *testing.T) {
	store, tmpDir := testSetup(t)
	boardPath := writeBoard(t, tmpDir, sampleTasks())

	var out bytes.Buffer
	changed, err := store.Sync(context.Background(), boardPath, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("first sync must index")
	}

	changed, err = store.Sync(context.Background(), boardPath, &out)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("second sync of unchanged board must skip")
	}
}

func TestSyncReingestsChangedBoard(t *testing.T) {
	store, tmpDir := testSetup(t)
	boardPath := writeBoard(t, tmpDir, sampleTasks())
	syncBoard(t, store, boardPath)

	// Rewrite the board with one task removed and bump the mtime.
	writeBoard(t, tmpDir, sampleTasks()[:1])
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(boardPath, future, future); err != nil {
		t.Fatal(err)
	}
	syncBoard(t, store, boardPath)

	results, err := store.Search(context.Background(), QueryOptions{Query: "login"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("removed task still indexed: %+v", results)
	}
}

func TestSyncMissingBoard(t *testing.T) {
	store, tmpDir := testSetup(t)

	var out bytes.Buffer
	changed, err := store.Sync(context.Background(), filepath.Join(tmpDir, ".taskdeck", "tasks.json"), &out)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("missing board must not mark the index changed")
	}
}

func TestSearchMaxResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	boardPath := writeBoard(t, tmpDir, sampleTasks())
	syncBoard(t, store, boardPath)

	results, err := store.Search(context.Background(), QueryOptions{MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
