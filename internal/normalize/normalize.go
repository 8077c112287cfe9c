// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans raw model output into plain, heading-labeled prose.
//
// Clean applies three passes in a fixed order: it removes the
// "Multiple Perspectives:" label, strips emphasis markers ('*'), and rewrites
// line-leading heading keywords into a canonical "Label: " form. Markers are
// stripped before headings are matched so that "**Summary:**" is recognized
// as a plain "Summary:" heading.
package normalize

import (
	"regexp"
	"strings"
)

// space matches every rune strings.TrimSpace removes. RE2's \s alone is
// ASCII-only, so a leading NBSP would otherwise hide a heading until the
// final trim exposed it.
const space = `[\s\v\x{85}\p{Z}]`

// perspectivePatterns match the unwanted label in its double-emphasis,
// single-emphasis, and plain forms. Order matters: the wrapped forms must be
// removed before the plain form would leave their markers behind.
var perspectivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*` + space + `*Multiple Perspectives` + space + `*:` + space + `*`),
	regexp.MustCompile(`(?i)\*` + space + `*Multiple Perspectives` + space + `*:` + space + `*`),
	regexp.MustCompile(`(?i)Multiple Perspectives` + space + `*:` + space + `*`),
}

// plainPerspective is the last of perspectivePatterns.
var plainPerspective = perspectivePatterns[len(perspectivePatterns)-1]

type heading struct {
	pattern   *regexp.Regexp
	canonical string
}

// headings are applied in this order.
var headings = []heading{
	newHeading("analysis", "Analysis"),
	newHeading("summary", "Summary"),
	newHeading("conclusion", "Conclusion"),
	newHeading("evaluation", "Evaluation"),
	newHeading("reasoning", "Reasoning"),
	newHeading("hypotheses", "Hypotheses"),
	newHeading("key insights", "Key Insights"),
	newHeading("recommendation", "Recommendation"),
}

func newHeading(keyword, canonical string) heading {
	return heading{
		pattern:   regexp.MustCompile(`(?mi)^` + space + `*` + regexp.QuoteMeta(keyword) + space + `*:` + space + `*`),
		canonical: canonical + ": ",
	}
}

// Clean normalizes model output. It is idempotent, and its result never
// contains an emphasis marker.
func Clean(text string) string {
	for _, re := range perspectivePatterns {
		text = re.ReplaceAllString(text, "")
	}

	text = strings.ReplaceAll(text, "*", "")

	// Stripping markers can expose a label split by them,
	// e.g. "Multiple *Perspectives:".
	for plainPerspective.MatchString(text) {
		text = plainPerspective.ReplaceAllString(text, "")
	}

	for _, h := range headings {
		text = h.pattern.ReplaceAllLiteralString(text, h.canonical)
	}

	return strings.TrimSpace(text)
}
