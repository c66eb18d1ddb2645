package content

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"github.com/microcosm-cc/bluemonday"
)

// PageInfo is what a model page yields for prompt building
type PageInfo struct {
	Name        string
	Description string
	Tags        []string
}

// readmeSelectors tried in order when trafilatura comes back empty. The
// first one matches the model hosting layout, the rest cover generic pages.
var readmeSelectors = []string{
	`div[class*="dp-editor-md-preview-container"]`,
	`div[data-target="readme-toc.content"]`,
	".markdown-body",
	"#readme",
	".readme",
	"article",
	"main",
}

// maxTagRunes drops navigation fragments that match the tag selectors
const maxTagRunes = 50

// Extractor pulls name, tags and readme text out of fetched model pages
type Extractor struct {
	policy         *bluemonday.Policy
	maxTags        int
	maxDescription int
}

// NewExtractor creates a page content extractor
func NewExtractor(maxTags, maxDescription int) *Extractor {
	if maxTags <= 0 {
		maxTags = 15
	}
	if maxDescription <= 0 {
		maxDescription = 5000
	}
	return &Extractor{
		policy:         bluemonday.StrictPolicy(),
		maxTags:        maxTags,
		maxDescription: maxDescription,
	}
}

// Extract parses page HTML into PageInfo. A page without tags or readme is
// not an error, the caller keeps the item with whatever the CSV provided.
func (e *Extractor) Extract(rawHTML, pageURL string) (*PageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}

	info := &PageInfo{
		Name: strings.TrimSpace(doc.Find("div.breadcrumb p a span.linkTx").First().Text()),
		Tags: e.tags(doc),
	}
	info.Description = e.description(rawHTML, pageURL, doc)
	return info, nil
}

// tags collects topic labels, primary selector first and generic markup as
// the fallback
func (e *Extractor) tags(doc *goquery.Document) []string {
	var tags []string
	seen := map[string]struct{}{}

	collect := func(sel string) {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			tag := strings.TrimSpace(s.Text())
			if tag == "" || utf8.RuneCountInString(tag) >= maxTagRunes {
				return
			}
			if _, ok := seen[tag]; ok {
				return
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		})
	}

	collect("div.topic-tag span")
	if len(tags) == 0 {
		collect(".tag, .label, .badge")
	}

	if len(tags) > e.maxTags {
		tags = tags[:e.maxTags]
	}
	return tags
}

// description prefers trafilatura main-text extraction and falls back to the
// readme container when the page defeats it. Either way the text gets a
// markup sweep and a length cap before it reaches the cache.
func (e *Extractor) description(rawHTML, pageURL string, doc *goquery.Document) string {
	text := e.mainText(rawHTML, pageURL)
	if text == "" {
		text = readmeText(doc)
	}

	text = html.UnescapeString(e.policy.Sanitize(text))
	text = strings.TrimSpace(text)

	if runes := []rune(text); len(runes) > e.maxDescription {
		text = string(runes[:e.maxDescription])
	}
	return text
}

// mainText extracts the article body with trafilatura
func (e *Extractor) mainText(rawHTML, pageURL string) string {
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
	}
	if parsed, err := url.Parse(pageURL); err == nil {
		opts.OriginalURL = parsed
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil {
		return ""
	}
	return strings.TrimSpace(result.ContentText)
}

// readmeText walks the known readme containers and returns the first
// non-empty one
func readmeText(doc *goquery.Document) string {
	for _, sel := range readmeSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
	}
	return ""
}
