package prompt

import (
	"strings"

	"github.com/kailas-cloud/foodrag/internal/domain/passage"
)

// Prompt is the two-message payload sent to the completion service.
type Prompt struct {
	System string
	User   string
}

// Template describes how retrieved passages and a question become a Prompt.
type Template struct {
	// System is the domain-framing instruction.
	System string
	// Instruction is the first line of the user message, before the context block.
	Instruction string
	// Separator joins passage context entries.
	Separator string
}

// Corpus frames answers around the local food knowledge base.
var Corpus = Template{
	System: "You are a helpful food expert assistant. Answer questions about food " +
		"using the provided context. Be concise and accurate.",
	Instruction: "Use the following context about food to answer the question thoroughly and accurately.",
	Separator:   "\n",
}

// WebSearch frames answers around web search snippets.
var WebSearch = Template{
	System: "You are a helpful assistant that answers questions based on web search results. " +
		"Be concise, accurate, and cite the sources when relevant.",
	Instruction: "Use the following context from web search results to answer the question thoroughly and accurately.",
	Separator:   "\n\n",
}

// Context joins the context entries of passages in rank order.
// An empty slice yields an empty context.
func (t Template) Context(passages []passage.Passage) string {
	parts := make([]string, len(passages))
	for i := range passages {
		parts[i] = passages[i].ContextEntry()
	}
	return strings.Join(parts, t.Separator)
}

// Build assembles the prompt for question over passages.
func (t Template) Build(question string, passages []passage.Passage) Prompt {
	var b strings.Builder
	b.WriteString(t.Instruction)
	b.WriteString("\n\nContext:\n")
	b.WriteString(t.Context(passages))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return Prompt{System: t.System, User: b.String()}
}
