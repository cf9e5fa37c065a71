package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dskvich/artloop/pkg/domain"
)

func testSession() domain.Session {
	return domain.Session{
		Timestamp:        time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		TotalGenerations: 2,
		Loops: []domain.Loop{{
			Generation:      1,
			Prompt:          "A SKULL\nFULL OF COLORFUL BRAINROT",
			ImageFilename:   "painting-1.png",
			ArtistStatement: "The work *interrogates* <script>alert(1)</script> saturation.",
			CriticOpinion:   "tl;dr: market-ready.",
			NewPrompt:       "a quiet archive",
		}},
	}
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(testSession(), "../paintings/"))

	assert.Contains(t, md, "# Session 2025-05-01T12:00:00Z")
	assert.Contains(t, md, "1 of 2 generations completed.")
	assert.Contains(t, md, "**Prompt:** A SKULL FULL OF COLORFUL BRAINROT")
	assert.Contains(t, md, "](../paintings/painting-1.png)")
	assert.Contains(t, md, "> a quiet archive")
}

func TestHTML(t *testing.T) {
	out := string(HTML(testSession(), "../paintings"))

	assert.Contains(t, out, "<title>Session 2025-05-01T12:00:00Z</title>")
	assert.Contains(t, out, "<h2>Generation 1</h2>")
	assert.Contains(t, out, `src="../paintings/painting-1.png"`)
	assert.Contains(t, out, "<em>interrogates</em>")
	assert.NotContains(t, out, "<script>")
}

func TestHTMLDropsUnsafeLinks(t *testing.T) {
	s := testSession()
	s.Loops[0].CriticOpinion = "see [here](javascript:alert(1)) or [there](https://example.com)"

	out := string(HTML(s, "../paintings"))

	assert.NotContains(t, out, `href="javascript:`)
	assert.Contains(t, out, "here")
	assert.Contains(t, out, `href="https://example.com"`)
}
