package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/keyscope/pkg/domain"
)

// Config holds catalog CSV parsing settings. Column names default to the
// headers of the hosting platform's export format.
type Config struct {
	NameColumn   string
	URLColumn    string
	AuditColumn  string
	PublicColumn string
	AuditValue   string // audit status accepted for extraction
	PublicValue  string // public flag accepted for extraction
	MaxItems     int    // 0 means no limit
}

// Reader parses the platform export CSV into items ready for enrichment.
type Reader struct {
	cfg Config
}

// NewReader creates a catalog reader. Empty column settings fall back to the
// platform export headers.
func NewReader(cfg Config) *Reader {
	if cfg.NameColumn == "" {
		cfg.NameColumn = "项目名称"
	}
	if cfg.URLColumn == "" {
		cfg.URLColumn = "项目网址"
	}
	if cfg.AuditColumn == "" {
		cfg.AuditColumn = "审核状态"
	}
	if cfg.PublicColumn == "" {
		cfg.PublicColumn = "是否公开"
	}
	if cfg.AuditValue == "" {
		cfg.AuditValue = "2"
	}
	if cfg.PublicValue == "" {
		cfg.PublicValue = "1"
	}
	return &Reader{cfg: cfg}
}

// ReadFile parses the CSV at path.
func (r *Reader) ReadFile(path string) ([]domain.Item, error) {
	f, err := os.Open(path) //nolint:gosec // file path comes from config
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	items, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return items, nil
}

// Read parses catalog rows from src. Rows are kept when the audit status and
// public flag match the configured values and both name and url are set.
// Duplicate URLs keep the first row only, comparison ignores case.
func (r *Reader) Read(src io.Reader) ([]domain.Item, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // exports occasionally have ragged rows
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// some exports start with a BOM glued to the first header
	header[0] = strings.TrimPrefix(header[0], "﻿")

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{r.cfg.NameColumn, r.cfg.URLColumn, r.cfg.AuditColumn, r.cfg.PublicColumn} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("catalog is missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []domain.Item
	seen := make(map[string]struct{})
	skipped := 0

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		name, pageURL := field(rec, r.cfg.NameColumn), field(rec, r.cfg.URLColumn)
		if field(rec, r.cfg.AuditColumn) != r.cfg.AuditValue || field(rec, r.cfg.PublicColumn) != r.cfg.PublicValue {
			skipped++
			continue
		}
		if name == "" || pageURL == "" {
			skipped++
			continue
		}

		key := strings.ToLower(pageURL)
		if _, dup := seen[key]; dup {
			lgr.Printf("[DEBUG] duplicate catalog url skipped: %s", pageURL)
			continue
		}
		seen[key] = struct{}{}

		items = append(items, domain.Item{URL: pageURL, Name: deriveName(pageURL, name)})
		if r.cfg.MaxItems > 0 && len(items) >= r.cfg.MaxItems {
			break
		}
	}

	lgr.Printf("[INFO] catalog: %d entries accepted, %d filtered out", len(items), skipped)
	return items, nil
}

// deriveName extracts a canonical org/repo name from the project URL. Mirror
// prefixes are dropped, otherwise the last two path segments win. Falls back
// to the CSV name when the path is too short to tell.
func deriveName(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return fallback
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		return fallback
	}
	if parts[0] == "hf_mirrors" || parts[0] == "mirrors" {
		return strings.Join(parts[1:], "/")
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
