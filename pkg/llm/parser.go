package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/keyscope/pkg/domain"
)

const (
	minKeywords = 3
	maxKeywords = 8
)

// keywordsEnvelope is the wire shape providers are asked to return.
type keywordsEnvelope struct {
	Keywords []domain.KeywordRecord `json:"keywords"`
}

var (
	missBraceRe  = regexp.MustCompile(`(\},\s*\n\s*)("keyword":)`)
	trailCommaRe = regexp.MustCompile(`,(\s*\}\s*\])`)
	missCommaRe  = regexp.MustCompile(`(\})\s*\n\s*(\{)`)
	keywordObjRe = regexp.MustCompile(`\{\s*"keyword"\s*:[^}]*\}`)
	quoteFixer   = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// ParseResponse turns raw model output into validated keyword records.
// Providers wrap JSON in prose, code fences or typographic quotes, cut it off
// mid-array, or forget commas between objects, so a failed direct parse goes
// through carving and a fixed sequence of repairs before giving up.
// A result that cannot be recovered comes back empty, never as an error.
func ParseResponse(raw string) []domain.KeywordRecord {
	text := quoteFixer.Replace(strings.TrimSpace(raw))

	var env keywordsEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		candidate := repairJSON(carveJSON(text))
		if uerr := json.Unmarshal([]byte(candidate), &env); uerr != nil {
			rebuilt := salvageTruncated(candidate)
			if rebuilt == candidate {
				lgr.Printf("[DEBUG] response not recoverable as json: %v", uerr)
				return nil
			}
			if serr := json.Unmarshal([]byte(rebuilt), &env); serr != nil {
				lgr.Printf("[DEBUG] response not recoverable as json: %v", serr)
				return nil
			}
		}
	}
	return validateRecords(env.Keywords)
}

// carveJSON isolates the JSON document from surrounding prose, preferring a
// fenced code block, falling back to the outermost brace pair. An unclosed
// fence takes everything after the opening marker.
func carveJSON(s string) string {
	if idx := strings.Index(s, "```json"); idx >= 0 {
		rest := s[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// repairJSON applies the known provider glitches in a fixed order: an object
// opened without its brace before a "keyword" field, a trailing comma before
// the array close, and two objects butted together without a comma.
func repairJSON(s string) string {
	s = missBraceRe.ReplaceAllString(s, "${1}{${2}")
	s = trailCommaRe.ReplaceAllString(s, "${1}")
	s = missCommaRe.ReplaceAllString(s, "${1},\n  ${2}")
	return s
}

// salvageTruncated rebuilds a response that was cut off mid-array. Complete
// keyword objects before the cut are kept, the dangling tail is dropped.
// Input that carries no keywords array, or no complete object, is returned
// unchanged so the caller can tell nothing was recovered.
func salvageTruncated(s string) string {
	if !strings.Contains(s, `"keywords"`) {
		return s
	}
	objs := keywordObjRe.FindAllString(s, -1)
	if len(objs) == 0 {
		return s
	}
	return `{"keywords": [` + strings.Join(objs, ", ") + `]}`
}

// validateRecords enforces the contract on parsed entries: fewer than three
// rejects the whole result, more than eight keeps the first eight, and each
// surviving entry needs keyword, dimension and reason all non-empty. Keywords
// are normalized and exact duplicates within the result are dropped.
func validateRecords(raw []domain.KeywordRecord) []domain.KeywordRecord {
	if len(raw) < minKeywords {
		return nil
	}
	if len(raw) > maxKeywords {
		raw = raw[:maxKeywords]
	}

	out := make([]domain.KeywordRecord, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, rec := range raw {
		keyword := strings.TrimSpace(rec.Keyword)
		dimension := strings.TrimSpace(rec.Dimension)
		reason := strings.TrimSpace(rec.Reason)
		if keyword == "" || dimension == "" || reason == "" {
			continue
		}
		cleaned := cleanKeyword(keyword)
		if cleaned == "" {
			continue
		}
		cleaned = expandBrand(cleaned, dimension)
		if seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		out = append(out, domain.KeywordRecord{Keyword: cleaned, Dimension: dimension, Reason: reason})
	}
	return out
}
