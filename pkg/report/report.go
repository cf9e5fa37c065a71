// Package report renders a generation session as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/russross/blackfriday"

	"github.com/dskvich/artloop/pkg/domain"
)

// Markdown lays the session out as one section per generation. imageBase is
// the path from the report to the paintings directory.
func Markdown(s domain.Session, imageBase string) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Session %s\n\n", s.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "%d of %d generations completed.\n\n", len(s.Loops), s.TotalGenerations)

	for _, l := range s.Loops {
		fmt.Fprintf(&b, "## Generation %d\n\n", l.Generation)
		fmt.Fprintf(&b, "**Prompt:** %s\n\n", inline(l.Prompt))
		if l.ImageFilename != "" {
			fmt.Fprintf(&b, "![%s](%s/%s)\n\n", inline(l.Prompt), strings.TrimSuffix(imageBase, "/"), l.ImageFilename)
		}
		fmt.Fprintf(&b, "### Artist statement\n\n%s\n\n", escape(l.ArtistStatement))
		fmt.Fprintf(&b, "### Critic\n\n%s\n\n", escape(l.CriticOpinion))
		fmt.Fprintf(&b, "### Next prompt\n\n> %s\n\n", inline(l.NewPrompt))
	}

	return b.Bytes()
}

// The MarkdownCommon set, plus HTML_SAFELINK so links to anything but
// http(s), ftp and mailto render as plain text.
const (
	htmlFlags = blackfriday.HTML_USE_XHTML |
		blackfriday.HTML_USE_SMARTYPANTS |
		blackfriday.HTML_SMARTYPANTS_FRACTIONS |
		blackfriday.HTML_SMARTYPANTS_DASHES |
		blackfriday.HTML_SMARTYPANTS_LATEX_DASHES |
		blackfriday.HTML_SAFELINK

	extensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
		blackfriday.EXTENSION_TABLES |
		blackfriday.EXTENSION_FENCED_CODE |
		blackfriday.EXTENSION_AUTOLINK |
		blackfriday.EXTENSION_STRIKETHROUGH |
		blackfriday.EXTENSION_SPACE_HEADERS |
		blackfriday.EXTENSION_HEADER_IDS |
		blackfriday.EXTENSION_BACKSLASH_LINE_BREAK |
		blackfriday.EXTENSION_DEFINITION_LISTS
)

// HTML wraps the rendered Markdown in a minimal document.
func HTML(s domain.Session, imageBase string) []byte {
	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	body := blackfriday.Markdown(Markdown(s, imageBase), renderer, extensions)

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Session %s</title>\n", html.EscapeString(s.Timestamp.UTC().Format(time.RFC3339)))
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}

// escape keeps model output from being read as raw HTML.
func escape(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// inline flattens text onto one line for headings, quotes and alt text.
func inline(s string) string {
	return escape(strings.Join(strings.Fields(s), " "))
}
