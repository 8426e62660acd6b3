// Package importer bulk-loads the catalog from a directory of CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Loader replaces a table's contents in one transaction.
type Loader interface {
	ReplaceTable(ctx context.Context, table string, columns []string, rows [][]any) (int, error)
}

// Status of a single file load.
type Status string

const (
	StatusOK      Status = "OK"
	StatusFailed  Status = "FAIL"
	StatusMissing Status = "MISSING"
)

// Result reports the outcome for one file.
type Result struct {
	File   string
	Table  string
	Status Status
	Rows   int
	Err    error
}

type kind int

const (
	text kind = iota
	integer
	nullableText
	nullableInteger
	timestamp
)

type column struct {
	name string
	kind kind
}

type source struct {
	file  string
	table string
	// columns maps CSV headers to table columns. Headers not listed are ignored.
	columns map[string]column
}

// sources is in dependency order: every file only references tables loaded before it.
var sources = []source{
	{"category.csv", "categories", map[string]column{
		"id":   {"id", integer},
		"name": {"name", text},
		"slug": {"slug", text},
	}},
	{"genre.csv", "genres", map[string]column{
		"id":   {"id", integer},
		"name": {"name", text},
		"slug": {"slug", text},
	}},
	{"users.csv", "users", map[string]column{
		"id":         {"id", integer},
		"username":   {"username", text},
		"email":      {"email", text},
		"role":       {"role", text},
		"bio":        {"bio", text},
		"first_name": {"first_name", text},
		"last_name":  {"last_name", text},
	}},
	{"titles.csv", "titles", map[string]column{
		"id":          {"id", integer},
		"name":        {"name", text},
		"year":        {"year", integer},
		"description": {"description", nullableText},
		"category":    {"category_id", nullableInteger},
	}},
	{"genre_title.csv", "title_genres", map[string]column{
		"id":       {"id", integer},
		"title_id": {"title_id", integer},
		"genre_id": {"genre_id", integer},
	}},
	{"review.csv", "reviews", map[string]column{
		"id":       {"id", integer},
		"title_id": {"title_id", integer},
		"text":     {"text", text},
		"author":   {"author_id", integer},
		"score":    {"score", integer},
		"pub_date": {"pub_date", timestamp},
	}},
	{"comments.csv", "comments", map[string]column{
		"id":        {"id", integer},
		"review_id": {"review_id", integer},
		"text":      {"text", text},
		"author":    {"author_id", integer},
		"pub_date":  {"pub_date", timestamp},
	}},
}

// Files returns the file names Load looks for, in load order.
func Files() []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.file
	}
	return names
}

// Importer loads CSV exports into a store.
type Importer struct {
	loader Loader
	logger *slog.Logger
}

// New creates an importer.
func New(loader Loader, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{loader: loader, logger: logger}
}

// Load reads every known file from dir in dependency order. A failed or
// missing file is reported and the remaining files are still attempted.
func (im *Importer) Load(ctx context.Context, dir string) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		res := Result{File: src.file, Table: src.table}

		n, err := im.loadFile(ctx, filepath.Join(dir, src.file), src)
		switch {
		case errors.Is(err, os.ErrNotExist):
			res.Status = StatusMissing
			im.logger.Warn("csv file missing", "file", src.file)
		case err != nil:
			res.Status = StatusFailed
			res.Err = err
			im.logger.Error("csv load failed", "file", src.file, "error", err)
		default:
			res.Status = StatusOK
			res.Rows = n
			im.logger.Info("csv loaded", "file", src.file, "table", src.table, "rows", n)
		}
		results = append(results, res)
	}
	return results
}

func (im *Importer) loadFile(ctx context.Context, path string, src source) (int, error) {
	f, err := os.Open(path) //#nosec G304 -- path is built from the operator's --dir
	if err != nil {
		return 0, err
	}
	defer f.Close()

	columns, rows, err := readRows(f, src)
	if err != nil {
		return 0, err
	}
	return im.loader.ReplaceTable(ctx, src.table, columns, rows)
}

func readRows(r io.Reader, src source) ([]string, [][]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty file")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	// Position in the CSV record for each selected column.
	var (
		indexes []int
		cols    []column
	)
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if c, ok := src.columns[h]; ok {
			indexes = append(indexes, i)
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("no known columns in header %v", header)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}

	var rows [][]any
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]any, len(cols))
		for i, c := range cols {
			v, err := convert(record[indexes[i]], c.kind)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d, column %s: %w", line, c.name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return names, rows, nil
}

func convert(raw string, k kind) (any, error) {
	switch k {
	case integer:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case nullableInteger:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case nullableText:
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	case timestamp:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return raw, nil
	}
}
