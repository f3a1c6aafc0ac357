package chat

import "strings"

const (
	assistantIntro = "You are a helpful AI assistant specialized in analyzing presentations and documents. "

	noDocumentPrompt = "Please help the user with their questions."

	reducedIntro = "The user has uploaded a large presentation. " +
		"You have access to relevant slide content based on their question. " +
		"If they ask about specific slides, provide detailed information from those slides. " +
		"If they ask general questions, provide a comprehensive overview based on the available content.\n\n"

	reducedNote = "NOTE: This is a large presentation. If you need information from other slides, " +
		"ask the user to specify which slides they're interested in.\n\n"

	slideEmphasis = "IMPORTANT: The user is asking about a specific slide. " +
		"Make sure to provide comprehensive details from the slide content above. " +
		"Look for all text, tables, and content within that slide.\n\n"

	documentGuidance = "Please provide detailed, accurate responses about the document content. " +
		"When referencing specific slides, mention the slide number. " +
		"If asked about specific details, provide comprehensive information from the relevant slides."
)

// BuildSystemPrompt creates the system instruction for one chat turn. An
// empty selection means no document is loaded. reduced marks a selection
// that holds only part of an oversized document.
func BuildSystemPrompt(selection, query string, reduced bool) string {
	var sb strings.Builder
	sb.WriteString(assistantIntro)
	if selection == "" {
		sb.WriteString(noDocumentPrompt)
		return sb.String()
	}

	if reduced {
		sb.WriteString(reducedIntro)
		sb.WriteString("RELEVANT PRESENTATION CONTENT:\n")
		sb.WriteString(selection)
		sb.WriteString("\n\n")
		sb.WriteString(reducedNote)
		if strings.Contains(strings.ToLower(query), "slide") {
			sb.WriteString(slideEmphasis)
		}
	} else {
		sb.WriteString("Here is the content from the user's uploaded document:\n")
		sb.WriteString(selection)
		sb.WriteString("\n\n")
	}
	sb.WriteString(documentGuidance)
	return sb.String()
}
