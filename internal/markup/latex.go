package markup

import (
	"regexp"
	"strings"
)

var (
	reDisplayMath = regexp.MustCompile(`\$\$`)
	reLatexText   = regexp.MustCompile(`\\text\{([^}]+)\}`)
	reRightArrow  = regexp.MustCompile(`\\rightarrow`)
	reTo          = regexp.MustCompile(`\\to`)
	reTimes       = regexp.MustCompile(`\\times`)
	reCommand     = regexp.MustCompile(`\\[a-zA-Z]+`)
)

// CleanLatex strips the LaTeX fragments models like to emit in plain chat
// answers. Square brackets are padded with a space on the outside.
func CleanLatex(text string) string {
	if text == "" {
		return text
	}
	text = reDisplayMath.ReplaceAllString(text, "")
	text = reLatexText.ReplaceAllString(text, "${1}")
	text = reRightArrow.ReplaceAllLiteralString(text, "→")
	text = reTo.ReplaceAllLiteralString(text, "→")
	text = reTimes.ReplaceAllLiteralString(text, "×")
	text = reCommand.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "[", " [")
	text = strings.ReplaceAll(text, "]", "] ")
	return text
}
