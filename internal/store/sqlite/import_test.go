package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/yamdb/yamdb-server/internal/store"
)

func TestReplaceTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cols := []string{"id", "name", "slug"}
	n, err := s.ReplaceTable(ctx, "categories", cols, [][]any{
		{1, "Films", "movie"},
		{2, "Books", "book"},
	})
	if err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}

	n, err = s.ReplaceTable(ctx, "categories", cols, [][]any{{7, "Music", "music"}})
	if err != nil {
		t.Fatalf("ReplaceTable second load: %v", err)
	}
	page, _ := s.ListCategories(ctx, "", firstPage())
	if n != 1 || page.Count != 1 || page.Items[0].ID != 7 {
		t.Errorf("expected table to be replaced, got %+v", page.Items)
	}
}

func TestReplaceTable_RollsBackOnBadRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cols := []string{"id", "name", "slug"}
	if _, err := s.ReplaceTable(ctx, "genres", cols, [][]any{{1, "Rock", "rock"}}); err != nil {
		t.Fatal(err)
	}

	_, err := s.ReplaceTable(ctx, "genres", cols, [][]any{
		{1, "Jazz", "jazz"},
		{2, "Also Jazz", "jazz"},
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	g, err := s.GetGenreBySlug(ctx, "rock")
	if err != nil || g.ID != 1 {
		t.Errorf("expected original rows to survive a failed load: %v", err)
	}
}

func TestReplaceTable_RejectsUnknownTargets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ReplaceTable(ctx, "sqlite_master", []string{"name"}, nil); !errors.Is(err, store.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
	if _, err := s.ReplaceTable(ctx, "users", []string{"password"}, nil); !errors.Is(err, store.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable for column, got %v", err)
	}
}
