// internal/assistant/instructions/composer.go
package instructions

import (
	"strings"

	"workspace-assistant/internal/models"
)

// bundles holds the per-type prompt fragments for narrative query types.
// Aggregate types never reach the generation provider, so they have no
// bundle and fall back to the general one if asked.
var bundles = map[models.QueryType]models.InstructionBundle{
	models.QueryTypeWorkspaceInfo: {
		Role:                "You are a workspace assistant with full visibility into this workspace's channels and members.",
		Base:                "Answer questions about the workspace using only the provided message context.",
		FormatInstructions:  "Respond with a short overview. Use bullet points for channel or member lists.",
		ContextInstructions: "Treat the message context as the complete picture of workspace activity.",
		ErrorInstructions:   "If the context contains no relevant messages, say that nothing relevant was found in the workspace.",
	},
	models.QueryTypeChannelContext: {
		Role:                "You are a workspace assistant focused on a single channel's activity.",
		Base:                "Describe what has been happening in the channel using only the provided messages.",
		FormatInstructions:  "Keep the answer conversational and ordered from oldest to newest.",
		ContextInstructions: "Every provided message belongs to the channel in question.",
		ErrorInstructions:   "If no messages are provided, say the channel has no matching activity.",
	},
	models.QueryTypeUserContext: {
		Role:                "You are a workspace assistant reporting on a specific member's messages.",
		Base:                "Answer questions about what this member said using only the provided messages.",
		FormatInstructions:  "Quote or paraphrase the member's own words where possible.",
		ContextInstructions: "Only messages authored by the member in question are relevant.",
		ErrorInstructions:   "If no messages from this member are provided, say so directly.",
	},
	models.QueryTypeSummary: {
		Role:                "You are a workspace assistant producing concise digests.",
		Base:                "Summarize the provided messages into the key points and decisions.",
		FormatInstructions:  "Use a short paragraph or bullets. Do not invent details that are not in the messages.",
		ContextInstructions: "Messages are grouped by day and ordered chronologically.",
		ErrorInstructions:   "If there is nothing to summarize, say that no messages matched.",
	},
	models.QueryTypeTopic: {
		Role:                "You are a workspace assistant tracing discussions on a topic.",
		Base:                "Identify the messages relevant to the asked topic and explain what was discussed.",
		FormatInstructions:  "Group related messages together and attribute statements to their authors.",
		ContextInstructions: "Not every provided message is necessarily on topic. Ignore the ones that are not.",
		ErrorInstructions:   "If nothing in the context touches the topic, say that no discussion was found.",
	},
}

var generalBundle = models.InstructionBundle{
	Role:                "You are a helpful workspace assistant.",
	Base:                "Answer the question using the provided message context where it helps.",
	FormatInstructions:  "Keep answers brief and factual.",
	ContextInstructions: "The message context may be empty for general questions.",
	ErrorInstructions:   "If you cannot answer from the context, say so rather than guessing.",
}

// BundleFor returns the instruction bundle for a query type.
func BundleFor(queryType models.QueryType) models.InstructionBundle {
	if b, ok := bundles[queryType]; ok {
		return b
	}
	return generalBundle
}

// Compose assembles the system prompt for the generation provider from the
// type's bundle plus lines keyed off the analysis requirements.
func Compose(analysis models.QueryAnalysis) string {
	b := BundleFor(analysis.Type)

	parts := []string{b.Role, b.Base, b.FormatInstructions, b.ContextInstructions, b.ErrorInstructions}

	if analysis.ContextRequirements.NeedsTimeContext {
		parts = append(parts, "Consider the specified timeframe when selecting relevant messages.")
	}
	if analysis.ContextRequirements.NeedsUserContext {
		parts = append(parts, "Focus on user-specific interactions and attribute statements to the named user.")
	}
	if analysis.ContextRequirements.NeedsChannelContext {
		parts = append(parts, "Consider channel-specific context when interpreting the messages.")
	}

	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
