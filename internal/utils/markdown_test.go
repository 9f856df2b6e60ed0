package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown("**bold** and [a link](https://example.com)"))
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `href="https://example.com"`)
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	html := string(RenderMarkdown(`hello <script>alert("x")</script>`))
	assert.False(t, strings.Contains(html, "<script>"))
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`plain <b>bold</b> <script>alert("x")</script>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "plain")
}
