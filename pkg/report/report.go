package report

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/keyscope/pkg/domain"
)

// Config holds report generation settings
type Config struct {
	Dir         string // root output directory, each run gets a subdirectory
	RewriteHost string // catalog host replaced in report links
	PromoteHost string // replacement host
}

// Generator writes run reports in markdown, CSV and plain text.
type Generator struct {
	cfg Config
	now func() time.Time
}

// NewGenerator creates a report generator
func NewGenerator(cfg Config) *Generator {
	if cfg.Dir == "" {
		cfg.Dir = "output"
	}
	return &Generator{cfg: cfg, now: time.Now}
}

// Generate writes all report files into a fresh run directory and returns
// its path. Cross-item keyword dedup happens here: the first occurrence
// wins, comparison ignores case.
func (g *Generator) Generate(results []domain.ExtractionResult, summary domain.RunSummary) (string, error) {
	ts := g.now().Format("20060102_150405")
	dir := filepath.Join(g.cfg.Dir, "run_"+ts)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	deduped := dedupResults(results)

	mdFile := filepath.Join(dir, "report_"+ts+".md")
	if err := os.WriteFile(mdFile, []byte(g.renderMarkdown(results, deduped, summary)), 0o600); err != nil {
		return "", fmt.Errorf("write markdown report: %w", err)
	}

	csvFile := filepath.Join(dir, "report_"+ts+".csv")
	if err := g.writeCSV(csvFile, deduped); err != nil {
		return "", err
	}

	txtFile := filepath.Join(dir, "report_"+ts+"_keywords.txt")
	if err := os.WriteFile(txtFile, []byte(renderKeywordsTxt(results)), 0o600); err != nil {
		return "", fmt.Errorf("write keywords list: %w", err)
	}

	lgr.Printf("[INFO] reports written to %s", dir)
	return dir, nil
}

// dedupResult is one item's keywords after cross-item dedup.
type dedupResult struct {
	ItemURL  string
	ItemName string
	Keywords []domain.KeywordRecord
}

// dedupResults removes keyword repeats across items. The first occurrence
// wins, comparison ignores case. Items left with no keywords are dropped.
func dedupResults(results []domain.ExtractionResult) []dedupResult {
	used := make(map[string]struct{})
	out := make([]dedupResult, 0, len(results))
	for _, res := range results {
		kept := make([]domain.KeywordRecord, 0, len(res.Keywords))
		for _, kw := range res.Keywords {
			key := strings.ToLower(kw.Keyword)
			if _, ok := used[key]; ok {
				continue
			}
			used[key] = struct{}{}
			kept = append(kept, kw)
		}
		if len(kept) > 0 {
			out = append(out, dedupResult{ItemURL: res.ItemURL, ItemName: res.ItemName, Keywords: kept})
		}
	}
	return out
}

// promoteLink swaps the catalog host for the promoted one. Only an exact
// host match is rewritten, links already on the promoted host stay as is.
func (g *Generator) promoteLink(rawURL string) string {
	if g.cfg.RewriteHost == "" || g.cfg.PromoteHost == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Host, g.cfg.RewriteHost) {
		return rawURL
	}
	u.Host = g.cfg.PromoteHost
	return u.String()
}

// csv headers match the platform import format
var csvHeader = []string{"项目链接", "项目名称", "高亮词"}

// writeCSV exports one row per kept keyword: link, project name, keyword.
func (g *Generator) writeCSV(path string, deduped []dedupResult) error {
	f, err := os.Create(path) //nolint:gosec // path is built from config
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, res := range deduped {
		link := g.promoteLink(res.ItemURL)
		for _, kw := range res.Keywords {
			if err := w.Write([]string{link, res.ItemName, kw.Keyword}); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv report: %w", err)
	}
	return nil
}

// keywordFreq counts keyword occurrences preserving first-seen order.
type keywordFreq struct {
	counts map[string]int
	order  []string
}

func countKeywords(results []domain.ExtractionResult) *keywordFreq {
	f := &keywordFreq{counts: make(map[string]int)}
	for _, res := range results {
		for _, kw := range res.Keywords {
			if _, ok := f.counts[kw.Keyword]; !ok {
				f.order = append(f.order, kw.Keyword)
			}
			f.counts[kw.Keyword]++
		}
	}
	return f
}

// top returns up to n keywords by count desc, ties keep first-seen order.
func (f *keywordFreq) top(n int) []string {
	keys := make([]string, len(f.order))
	copy(keys, f.order)
	sort.SliceStable(keys, func(i, j int) bool { return f.counts[keys[i]] > f.counts[keys[j]] })
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
