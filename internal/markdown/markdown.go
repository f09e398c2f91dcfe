// Package markdown provides document outlines and HTML rendering for
// article previews and notifications. The scoring engine keeps its own
// line-based scans; this package serves the diagnostic and display
// surfaces only.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Section - one heading with the word count of the prose under it.
type Section struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Words int    `json:"words"`
}

// Outline - structural snapshot of an article.
type Outline struct {
	Title      string    `json:"title"`
	Sections   []Section `json:"sections"`
	WordCount  int       `json:"word_count"`
	H2Count    int       `json:"h2_count"`
	Paragraphs int       `json:"paragraphs"`
	Lists      int       `json:"lists"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse walks the markdown AST and returns the document outline.
func Parse(content string) Outline {
	source := []byte(content)
	doc := md.Parser().Parse(text.NewReader(source))

	var outline Outline
	currentSection := -1

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(source))
			if node.Level == 1 && outline.Title == "" {
				outline.Title = title
			}
			if node.Level == 2 {
				outline.H2Count++
			}
			outline.Sections = append(outline.Sections, Section{Title: title, Level: node.Level})
			currentSection = len(outline.Sections) - 1
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			outline.Paragraphs++
			words := countNodeWords(node, source)
			outline.WordCount += words
			if currentSection >= 0 {
				outline.Sections[currentSection].Words += words
			}
			return ast.WalkSkipChildren, nil

		case *ast.List:
			outline.Lists++
			words := countNodeWords(node, source)
			outline.WordCount += words
			if currentSection >= 0 {
				outline.Sections[currentSection].Words += words
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return outline
}

// RenderHTML converts article markdown to HTML for previews and the
// editorial notification channel.
func RenderHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// countNodeWords counts words in every text segment under a node.
func countNodeWords(n ast.Node, source []byte) int {
	words := 0
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			seg := t.Segment
			words += len(strings.Fields(string(source[seg.Start:seg.Stop])))
		}
		return ast.WalkContinue, nil
	})
	return words
}
