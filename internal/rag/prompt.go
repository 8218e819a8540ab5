package rag

import (
	"strings"

	"kbchat/internal/llm"
	"kbchat/internal/vectorstore"
)

// formattingContract opens every grounding system message.
const formattingContract = `You answer questions using only the documents provided in the Context section below.

Formatting rules:
- Write the answer in markdown.
- Give each document you draw on its own section, headed "## <document name>" with the name exactly as it appears after "Document:" in the Context.
- Use only facts stated in the Context. If the Context does not contain the answer, say that you don't know. Never invent facts.
- Never mention internal identifiers such as document IDs, chunk IDs, knowledge base IDs or collection names.
- Write inline equations as $...$ and display equations as $$...$$ on their own lines.
- When a passage describes a figure or image, refer to it by its caption in italics, for example *Figure 2: Revenue by quarter*.`

const (
	contextHeading    = "## Context"
	documentLabel     = "### Document: "
	passageSeparator  = "\n\n---\n\n"
	transcriptHeading = "## Conversation so far"
	humanPrefix       = "Human: "
	assistantPrefix   = "Assistant: "
)

// PromptAssembler renders the grounding prompt. Its output depends only on its input.
type PromptAssembler struct{}

// Skeleton is the system message without a conversation transcript. Its token count
// is the fixed cost the window manager budgets around.
func (a PromptAssembler) Skeleton(passages []vectorstore.Candidate) string {
	return a.SystemMessage(passages, nil)
}

// Assemble returns the system message followed by the user's query.
func (a PromptAssembler) Assemble(query string, passages []vectorstore.Candidate, history []Turn) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: a.SystemMessage(passages, history)},
		{Role: llm.RoleUser, Content: query},
	}
}

// SystemMessage renders the formatting contract, one context block per distinct
// document name in first-appearance order, and the transcript when history is non-empty.
func (a PromptAssembler) SystemMessage(passages []vectorstore.Candidate, history []Turn) string {
	var b strings.Builder
	b.WriteString(formattingContract)

	b.WriteString("\n\n")
	b.WriteString(contextHeading)
	for _, group := range groupByDocumentName(passages) {
		b.WriteString("\n\n")
		b.WriteString(documentLabel)
		b.WriteString(group.name)
		b.WriteString("\n\n")
		b.WriteString(strings.Join(group.texts, passageSeparator))
	}

	if len(history) > 0 {
		b.WriteString("\n\n")
		b.WriteString(transcriptHeading)
		b.WriteString("\n")
		for _, turn := range history {
			b.WriteString("\n")
			if turn.Role == RoleAssistant {
				b.WriteString(assistantPrefix)
			} else {
				b.WriteString(humanPrefix)
			}
			b.WriteString(turn.Content)
		}
	}

	return b.String()
}

type documentGroup struct {
	name  string
	texts []string
}

func groupByDocumentName(passages []vectorstore.Candidate) []documentGroup {
	index := make(map[string]int)
	var groups []documentGroup
	for _, p := range passages {
		i, ok := index[p.DocumentName]
		if !ok {
			i = len(groups)
			index[p.DocumentName] = i
			groups = append(groups, documentGroup{name: p.DocumentName})
		}
		groups[i].texts = append(groups[i].texts, p.Text)
	}
	return groups
}
