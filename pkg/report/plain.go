package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/umputun/keyscope/pkg/domain"
)

// renderKeywordsTxt builds the plain text keyword list, grouped by dimension
// with a totals block at the end. No markdown, meant for quick paste into
// the platform's highlight tooling.
func renderKeywordsTxt(results []domain.ExtractionResult) string {
	byDim := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	total := 0
	uniq := make(map[string]struct{})
	for _, res := range results {
		for _, kw := range res.Keywords {
			total++
			uniq[kw.Keyword] = struct{}{}
			if seen[kw.Dimension] == nil {
				seen[kw.Dimension] = make(map[string]struct{})
			}
			if _, ok := seen[kw.Dimension][kw.Keyword]; ok {
				continue
			}
			seen[kw.Dimension][kw.Keyword] = struct{}{}
			byDim[kw.Dimension] = append(byDim[kw.Dimension], kw.Keyword)
		}
	}

	dims := make([]string, 0, len(byDim))
	for dim := range byDim {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	var b strings.Builder
	b.WriteString("All Keywords\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, dim := range dims {
		kws := byDim[dim]
		sort.Strings(kws)
		fmt.Fprintf(&b, "%s (%d)\n", dim, len(kws))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for i := 0; i < len(kws); i += 8 {
			end := min(i+8, len(kws))
			b.WriteString(strings.Join(kws[i:end], " • ") + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Statistics\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "items: %d\n", len(results))
	fmt.Fprintf(&b, "keywords: %d\n", total)
	fmt.Fprintf(&b, "unique keywords: %d\n", len(uniq))
	if len(results) > 0 {
		fmt.Fprintf(&b, "keywords per item: %.1f\n", float64(total)/float64(len(results)))
	}
	return b.String()
}
