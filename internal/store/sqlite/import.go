package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yamdb/yamdb-server/internal/store"
)

// importColumns lists the tables a bulk load may replace and the columns it may set.
var importColumns = map[string][]string{
	"categories":   {"id", "name", "slug"},
	"genres":       {"id", "name", "slug"},
	"users":        {"id", "username", "email", "role", "bio", "first_name", "last_name", "is_superuser", "is_staff", "date_joined"},
	"titles":       {"id", "name", "year", "description", "category_id"},
	"title_genres": {"id", "title_id", "genre_id"},
	"reviews":      {"id", "title_id", "author_id", "text", "score", "pub_date"},
	"comments":     {"id", "review_id", "author_id", "text", "pub_date"},
}

// ReplaceTable deletes every row of table and inserts rows in one transaction.
// Deleting honours ON DELETE rules, so replacing a parent table clears or nulls its children.
// time.Time values are stored in the same layout as every other timestamp.
func (s *Store) ReplaceTable(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	allowed, ok := importColumns[table]
	if !ok {
		return 0, store.ErrUnknownTable.WithCause(fmt.Errorf("table %q", table))
	}
	for _, c := range columns {
		if !slices.Contains(allowed, c) {
			return 0, store.ErrUnknownTable.WithCause(fmt.Errorf("column %q of %q", c, table))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return 0, mapError(err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+table+` (`+strings.Join(columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d: expected %d values, got %d", i+1, len(columns), len(row))
		}
		for j, v := range row {
			if t, ok := v.(time.Time); ok {
				row[j] = formatTime(t)
			}
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, mapError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("table replaced", "table", table, "rows", len(rows))
	return len(rows), nil
}
