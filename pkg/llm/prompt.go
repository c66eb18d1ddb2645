package llm

import (
	"fmt"
	"strings"

	"github.com/umputun/keyscope/pkg/domain"
)

// dimension labels every extracted keyword is tagged with
const (
	DimensionBrand       = "Model Brand"
	DimensionArch        = "Architecture"
	DimensionUseCase     = "Use Case"
	DimensionDeployment  = "Deployment"
	DimensionPerformance = "Performance Spec"
	DimensionDomain      = "Specialist Domain"
)

const defaultSystemPrompt = "You are a senior AI product marketing and SEO specialist. " +
	"You mine model hosting pages for keywords that drive search traffic to editorial content."

// maxDescriptionRunes caps how much page text goes into the prompt
const maxDescriptionRunes = 800

// buildPrompt renders the extraction request for one catalog item. The
// exclusion list, when present, is appended as a hard prohibition so
// providers stop repeating run-wide high-frequency keywords.
func buildPrompt(item domain.Item, exclusions []string) string {
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		desc = "no description available"
	} else if runes := []rune(desc); len(runes) > maxDescriptionRunes {
		desc = string(runes[:maxDescriptionRunes]) + "..."
	}
	tags := "none"
	if len(item.Tags) > 0 {
		tags = strings.Join(item.Tags, ", ")
	}

	var b strings.Builder
	b.WriteString("Extract high-value search keywords from this AI model project for placement in blog articles.\n\n")
	fmt.Fprintf(&b, "Project name: %s\n", item.Name)
	fmt.Fprintf(&b, "Project URL: %s\n", item.URL)
	fmt.Fprintf(&b, "Project description: %s\n", desc)
	fmt.Fprintf(&b, "Project tags: %s\n\n", tags)

	b.WriteString("Extraction rules:\n")
	b.WriteString("1. Produce between 4 and 8 keywords.\n")
	b.WriteString("2. Brand keywords must carry the vendor suffix, e.g. \"DeepSeek\" becomes \"DeepSeek-LLM\", \"Qwen\" becomes \"Qwen-LLM\".\n")
	b.WriteString("3. Normalize parameter counts, e.g. \"671 billion parameters\" becomes \"671B\".\n")
	b.WriteString("4. Never extract: open-source licenses (Apache, MIT), mirror site names, bare version numbers, or meaningless digits.\n\n")

	b.WriteString("Tag every keyword with one of these dimensions:\n")
	fmt.Fprintf(&b, "- %s: the model family itself, e.g. \"DeepSeek-LLM\", \"FLUX.1\"\n", DimensionBrand)
	fmt.Fprintf(&b, "- %s: the technical approach, e.g. \"MoE\", \"Transformer\", \"Diffusion\"\n", DimensionArch)
	fmt.Fprintf(&b, "- %s: what it is used for, e.g. \"Code-Generation\", \"Image-Generation\"\n", DimensionUseCase)
	fmt.Fprintf(&b, "- %s: how it runs, e.g. \"On-Device\", \"Local-Deployment\"\n", DimensionDeployment)
	fmt.Fprintf(&b, "- %s: scale and capability figures, e.g. \"671B\", \"Long-Context\"\n", DimensionPerformance)
	fmt.Fprintf(&b, "- %s: the field it specializes in, e.g. \"Math-Reasoning\", \"Medical\"\n\n", DimensionDomain)

	b.WriteString("Output plain JSON without code fences, in exactly this shape:\n")
	b.WriteString(`{"keywords": [{"keyword": "DeepSeek-LLM", "dimension": "` + DimensionBrand + `", "reason": "core brand term"}]}`)
	b.WriteString("\n")

	if len(exclusions) > 0 {
		b.WriteString("\nThe following high-frequency keywords are forbidden, do not extract any of them:\n")
		b.WriteString(strings.Join(exclusions, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
