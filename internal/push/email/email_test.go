package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLEscapeEscapesAllFiveCharacters(t *testing.T) {
	in := `<script>alert("x & 'y'")</script>`
	out := htmlEscape(in)
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
	assert.Contains(t, out, "&lt;")
	assert.Contains(t, out, "&gt;")
	assert.Contains(t, out, "&amp;")
	assert.Contains(t, out, "&quot;")
	assert.Contains(t, out, "&#39;")
}

func TestRenderHTMLEscapesTitleAndBody(t *testing.T) {
	html := renderHTML("<b>Title</b>", "body & more")
	assert.Contains(t, html, "&lt;b&gt;Title&lt;/b&gt;")
	assert.Contains(t, html, "body &amp; more")
}
