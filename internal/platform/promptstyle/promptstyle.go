package promptstyle

import "strings"

const marker = "CLINIREASON_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to system prompts.
// Prompts that already carry the marker are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou generate teaching material for medical students practicing differential diagnosis.")
	b.WriteString("\nThe output is used for education only and is never shown to patients.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	if mode == "json" {
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
		b.WriteString("\nDo not wrap the JSON in markdown fences.")
	} else {
		b.WriteString("\nBe concise and structured.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
