package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/umputun/keyscope/pkg/domain"
)

// renderMarkdown builds the full analysis report. Distribution and detail
// sections use deduped keywords, the frequency table shows raw counts so
// repeats across items stay visible.
func (g *Generator) renderMarkdown(results []domain.ExtractionResult, deduped []dedupResult, summary domain.RunSummary) string {
	rawTotal := 0
	for _, res := range results {
		rawTotal += len(res.Keywords)
	}

	keptTotal := 0
	dimCounts := make(map[string]int)
	var dimOrder []string
	keptFreq := make(map[string]int)
	for _, res := range deduped {
		for _, kw := range res.Keywords {
			keptTotal++
			if _, ok := dimCounts[kw.Dimension]; !ok {
				dimOrder = append(dimOrder, kw.Dimension)
			}
			dimCounts[kw.Dimension]++
			keptFreq[kw.Keyword]++
		}
	}

	var b strings.Builder
	b.WriteString("# Keyword Extraction Report\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **attempted items**: %d\n", summary.Attempted)
	fmt.Fprintf(&b, "- **succeeded**: %d\n", summary.Succeeded)
	fmt.Fprintf(&b, "- **failed**: %d\n", summary.Attempted-summary.Succeeded)
	fmt.Fprintf(&b, "- **success rate**: %.1f%%\n", summary.SuccessRate())
	fmt.Fprintf(&b, "- **raw keywords**: %d\n", rawTotal)
	fmt.Fprintf(&b, "- **after dedup**: %d\n", keptTotal)
	if rawTotal > 0 {
		fmt.Fprintf(&b, "- **dedup rate**: %.1f%%\n", (1-float64(keptTotal)/float64(rawTotal))*100)
	}
	if summary.Succeeded > 0 {
		fmt.Fprintf(&b, "- **keywords per item**: %.1f\n", float64(keptTotal)/float64(summary.Succeeded))
	}
	fmt.Fprintf(&b, "- **generated**: %s\n", g.now().Format("2006-01-02 15:04:05"))

	b.WriteString("\n## Dimension Distribution\n\n")
	b.WriteString("| dimension | keywords | share |\n")
	b.WriteString("|------|------------|------|\n")
	sort.SliceStable(dimOrder, func(i, j int) bool { return dimCounts[dimOrder[i]] > dimCounts[dimOrder[j]] })
	for _, dim := range dimOrder {
		share := 0.0
		if keptTotal > 0 {
			share = float64(dimCounts[dim]) / float64(keptTotal) * 100
		}
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", dim, dimCounts[dim], share)
	}

	b.WriteString("\n## Top Keywords\n\n")
	b.WriteString("> raw frequency before dedup, the most repeated keywords across the run\n\n")
	b.WriteString("| rank | keyword | raw count | kept count |\n")
	b.WriteString("|------|--------|-------------|-------------|\n")
	freq := countKeywords(results)
	for i, kw := range freq.top(20) {
		fmt.Fprintf(&b, "| %d | %s | %d | %d |\n", i+1, kw, freq.counts[kw], keptFreq[kw])
	}

	b.WriteString("\n## All Keywords\n")
	byDim := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for _, res := range results {
		for _, kw := range res.Keywords {
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
	for _, dim := range dims {
		kws := byDim[dim]
		sort.Strings(kws)
		fmt.Fprintf(&b, "\n### %s (%d)\n\n", dim, len(kws))
		for i := 0; i < len(kws); i += 5 {
			end := min(i+5, len(kws))
			parts := make([]string, 0, 5)
			for _, kw := range kws[i:end] {
				parts = append(parts, "**"+kw+"**")
			}
			b.WriteString("- " + strings.Join(parts, " • ") + "\n")
		}
	}

	b.WriteString("\n## Details\n")
	for _, res := range deduped {
		fmt.Fprintf(&b, "\n### %s\n\n", res.ItemName)
		fmt.Fprintf(&b, "**URL**: %s\n\n", g.promoteLink(res.ItemURL))
		b.WriteString("**Keywords**:\n\n")
		for _, kw := range res.Keywords {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", kw.Keyword, kw.Dimension, kw.Reason)
		}
	}

	return b.String()
}
