package rag

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"kbchat/internal/vectorstore"
)

var answerParser = goldmark.New()

// AuditSections lists the documents behind passages in first-appearance order and
// marks the ones the answer gives a "## <document name>" section.
func AuditSections(answer string, passages []vectorstore.Candidate) []Source {
	headings := sectionHeadings(answer)

	index := make(map[string]int)
	sources := make([]Source, 0)
	for _, p := range passages {
		i, ok := index[p.DocumentID]
		if !ok {
			i = len(sources)
			index[p.DocumentID] = i
			sources = append(sources, Source{
				DocumentID:   p.DocumentID,
				DocumentName: p.DocumentName,
				TopScore:     p.Score,
				Cited:        headings[normalizeSection(p.DocumentName)],
			})
		}
		sources[i].Passages++
		if p.Score > sources[i].TopScore {
			sources[i].TopScore = p.Score
		}
	}
	return sources
}

// sectionHeadings returns the normalized text of every level-2 heading.
func sectionHeadings(answer string) map[string]bool {
	content := []byte(answer)
	doc := answerParser.Parser().Parse(text.NewReader(content))

	headings := make(map[string]bool)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 2 {
			headings[normalizeSection(extractTextFromNode(heading, content))] = true
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return headings
}

func extractTextFromNode(n ast.Node, content []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			segment := v.Segment
			textBuilder.Write(segment.Value(content))
			if v.SoftLineBreak() {
				textBuilder.WriteByte(' ')
			}
		case *ast.String:
			textBuilder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return textBuilder.String()
}

// normalizeSection lower-cases a heading and strips markdown hashes and surrounding space.
func normalizeSection(section string) string {
	s := strings.TrimSpace(section)
	s = strings.TrimLeft(s, "#")
	return strings.ToLower(strings.TrimSpace(s))
}
