// Package markup turns model answers into the lightweight HTML shown by the
// web page. It is a fixed chain of substitutions, not a markdown parser:
// output is deterministic but Format is not idempotent.
package markup

import (
	"regexp"
	"strings"
)

var (
	reBlankLines = regexp.MustCompile(`\n{2,}`)
	reCodeBlock  = regexp.MustCompile("```([a-zA-Z]*)\\n([\\s\\S]*?)```")
	reInlineCode = regexp.MustCompile("`([^`\\n]+)`")
	reListItem   = regexp.MustCompile(`(?m)^\s*[-*] (.*)`)
	reListWrap   = regexp.MustCompile(`<li>(.*?)</li>`)
	reStrong     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reEm         = regexp.MustCompile(`\*(.*?)\*`)

	// deepest level first so "## x" is not taken by the "# " rule
	reHeadings = []struct {
		re  *regexp.Regexp
		tag string
	}{
		{regexp.MustCompile(`(?im)^###### (.*)$`), "h6"},
		{regexp.MustCompile(`(?im)^##### (.*)$`), "h5"},
		{regexp.MustCompile(`(?im)^#### (.*)$`), "h4"},
		{regexp.MustCompile(`(?im)^### (.*)$`), "h3"},
		{regexp.MustCompile(`(?im)^## (.*)$`), "h2"},
		{regexp.MustCompile(`(?im)^# (.*)$`), "h1"},
	}

	codeEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Format converts text to HTML markup. Empty input gives empty output.
func Format(text string) string {
	if text == "" {
		return ""
	}

	text = CleanLatex(text)
	text = reBlankLines.ReplaceAllLiteralString(text, "\n")

	html := reCodeBlock.ReplaceAllStringFunc(text, func(block string) string {
		m := reCodeBlock.FindStringSubmatch(block)
		return `<pre><code class="language-` + m[1] + `">` + codeEscaper.Replace(m[2]) + `</code></pre>`
	})

	html = reInlineCode.ReplaceAllString(html, "<code>${1}</code>")

	for _, h := range reHeadings {
		html = h.re.ReplaceAllString(html, "<"+h.tag+">${1}</"+h.tag+">")
	}

	html = reListItem.ReplaceAllString(html, "<li>${1}</li>")
	html = reListWrap.ReplaceAllString(html, "<ul><li>${1}</li></ul>")

	html = reStrong.ReplaceAllString(html, "<strong>${1}</strong>")
	html = reEm.ReplaceAllString(html, "<em>${1}</em>")

	return strings.ReplaceAll(html, "\n", "<br>")
}
