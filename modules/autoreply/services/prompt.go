package services

import (
	"fmt"
	"strings"

	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
)

type promptParams struct {
	SystemPrompt string
	Facts        knowledgebase.BusinessFacts
	MaxLength    int
	Tone         knowledgebase.Tone
	SenderName   string
	MessageText  string
}

// buildPrompt assembles the generation prompt: operator instructions,
// a fixed-format business facts block, formatting directives derived
// from the response settings, then the verbatim customer message.
func buildPrompt(p promptParams) string {
	var sb strings.Builder

	if p.SystemPrompt != "" {
		sb.WriteString(p.SystemPrompt)
		sb.WriteString("\n\n")
	}

	if block := factsBlock(p.Facts); block != "" {
		sb.WriteString("Business information:\n")
		sb.WriteString(block)
		sb.WriteString("\n")
	}

	sb.WriteString("Response requirements:\n")
	fmt.Fprintf(&sb, "- Keep the reply under %d characters.\n", p.MaxLength)
	fmt.Fprintf(&sb, "- Use a %s tone.\n", p.Tone)
	sb.WriteString("- Do not reveal that you are automated.\n")
	sb.WriteString("- Answer only from the business information above; if unsure, offer to follow up.\n\n")

	if p.SenderName != "" {
		fmt.Fprintf(&sb, "Customer (%s) wrote:\n", p.SenderName)
	} else {
		sb.WriteString("Customer wrote:\n")
	}
	sb.WriteString(p.MessageText)

	return sb.String()
}

func factsBlock(f knowledgebase.BusinessFacts) string {
	var sb strings.Builder
	if f.CompanyName != "" {
		fmt.Fprintf(&sb, "- Company: %s\n", f.CompanyName)
	}
	if f.Services != "" {
		fmt.Fprintf(&sb, "- Services: %s\n", f.Services)
	}
	if f.Pricing != "" {
		fmt.Fprintf(&sb, "- Pricing: %s\n", f.Pricing)
	}
	if f.ContactInfo != "" {
		fmt.Fprintf(&sb, "- Contact: %s\n", f.ContactInfo)
	}
	return sb.String()
}
