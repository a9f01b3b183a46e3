package render

import (
	"regexp"
	"strings"
)

var (
	// bracketed annotations like 【完结】 or [转载]
	bracketRe = regexp.MustCompile(`[【\[].*?[】\]]`)
	parenRe   = regexp.MustCompile(`[（(]`)
	// trailing word-count suffixes ("110w字", "110万字") or any later token
	suffixRe = regexp.MustCompile(`\s+\d+(?:\.\d+)?[wW万]?(?:字|$)|\s+`)
)

// CleanName strips the noise reviewers pile onto names: bracketed
// annotations, everything from the first parenthesis on, and trailing
// word-count or whitespace-delimited suffixes.
func CleanName(text string) string {
	if text == "" {
		return text
	}
	text = bracketRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(cutAt(parenRe, text))
	return strings.TrimSpace(cutAt(suffixRe, text))
}

// CleanSource only cuts at the first parenthesis; sources routinely carry a
// "(转)" style suffix but no bracket noise worth removing.
func CleanSource(text string) string {
	return strings.TrimSpace(cutAt(parenRe, text))
}

func cutAt(re *regexp.Regexp, s string) string {
	if loc := re.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}
