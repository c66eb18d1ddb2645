package llm

import (
	"regexp"
	"strings"
)

var (
	parensRe  = regexp.MustCompile(`[()（）]`)
	spacesRe  = regexp.MustCompile(`\s+`)
	allowedRe = regexp.MustCompile(`[^\p{L}\p{N}.-]+`)
	dashRunRe = regexp.MustCompile(`-{2,}`)
	dotRunRe  = regexp.MustCompile(`\.{2,}`)
	versionRe = regexp.MustCompile(`^[A-Za-z0-9]+\.[0-9]+$`)
)

// cleanKeyword normalizes a raw keyword into catalog-safe form: parentheses
// removed, whitespace runs turned into single hyphens, anything outside
// letters, digits, hyphen and dot stripped. Version-like tokens such as
// "v2.5" or "FLUX.1" skip the separator collapsing so the dot survives.
func cleanKeyword(raw string) string {
	kw := strings.TrimSpace(raw)
	kw = parensRe.ReplaceAllString(kw, "")
	kw = spacesRe.ReplaceAllString(kw, "-")
	kw = allowedRe.ReplaceAllString(kw, "")
	if isVersionToken(kw) {
		return kw
	}
	kw = dashRunRe.ReplaceAllString(kw, "-")
	kw = dotRunRe.ReplaceAllString(kw, ".")
	return strings.Trim(kw, "-.")
}

func isVersionToken(kw string) bool {
	if versionRe.MatchString(kw) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(kw), "v") && strings.Contains(kw, ".")
}

// brandCanonical maps bare vendor names to the suffixed form used for the
// model brand dimension, so "Tencent" becomes "Tencent-LLM" and lines up
// with how the downstream catalog labels vendor families.
var brandCanonical = map[string]string{
	"OpenAI":    "OpenAI-LLM",
	"Google":    "Google-LLM",
	"Microsoft": "Microsoft-LLM",
	"Meta":      "Meta-LLM",
	"Amazon":    "Amazon-LLM",
	"Apple":     "Apple-LLM",
	"NVIDIA":    "NVIDIA-LLM",
	"Anthropic": "Anthropic-LLM",
	"Mistral":   "Mistral-LLM",
	"Baidu":     "Baidu-LLM",
	"Tencent":   "Tencent-LLM",
	"Alibaba":   "Alibaba-LLM",
	"ByteDance": "ByteDance-LLM",
	"Huawei":    "Huawei-LLM",
	"Xiaomi":    "Xiaomi-LLM",
	"Zhipu":     "Zhipu-LLM",
	"Moonshot":  "Moonshot-LLM",
	"DeepSeek":  "DeepSeek-LLM",
	"SenseTime": "SenseTime-LLM",
	"iFlytek":   "iFlytek-LLM",
	"01.AI":     "01.AI-LLM",
	"Qwen":      "Qwen-LLM",
}

// expandBrand rewrites a bare vendor name to its canonical suffixed form.
// Only keywords in the model brand dimension are touched, other dimensions
// legitimately mention vendors without being a brand keyword.
func expandBrand(keyword, dimension string) string {
	if dimension != DimensionBrand {
		return keyword
	}
	if canonical, ok := brandCanonical[keyword]; ok {
		return canonical
	}
	return keyword
}
