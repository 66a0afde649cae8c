package extract

import (
	"regexp"
	"strings"
)

// METAR recovery runs an ordered list of independent pattern matchers
// against the status cell's inner HTML. The first pattern that matches
// supplies the candidate; a single validation gate then accepts or
// discards it. Later patterns are not consulted once one has matched.

type metarPattern struct {
	name string
	re   *regexp.Regexp
}

var metarPatterns = []metarPattern{
	// Weather text on its own line after a break, up to the next break.
	{"strict", regexp.MustCompile(`(?s)<br ?/?>([A-Z]{4}\s\d{6}Z.*?)(?:<br ?/?>|$)`)},
	// Same, but wrapped under the feed's UTC header block.
	{"wrapped-header", regexp.MustCompile(`(?s)UTC</font><br><br ?/?>([A-Z]{4}\s\d{6}Z.*?)(?:<br ?/?>|$)`)},
	// Loose: require a trailing pressure group so we stop at a sane point.
	{"pressure-group", regexp.MustCompile(`([A-Z]{4}\s\d{6}Z\s[\w\s/]+\sQ\d{4}(?:\s+\w+)?)`)},
	// Bare: leading code and time only, anything up to the next tag.
	{"bare", regexp.MustCompile(`([A-Z]{4}\s\d{6}Z\s[^<]+)`)},
}

// metarValid is the shared acceptance gate: four uppercase letters, a
// space, a six-digit observation time, and "Z".
var metarValid = regexp.MustCompile(`^[A-Z]{4} \d{6}Z`)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Section labels that mark the end of weather text when the capture ran
// long into neighbouring cells.
var metarStopLabels = []string{"Listeners:", "Frequencies"}

// extractMETAR recovers a weather report from the status cell HTML, or
// returns "" when none can be validated.
func extractMETAR(spanHTML string) string {
	for _, p := range metarPatterns {
		m := p.re.FindStringSubmatch(spanHTML)
		if m == nil {
			continue
		}
		candidate := cleanMETAR(m[1])
		if metarValid.MatchString(candidate) {
			return candidate
		}
		// First match wins even when invalid: the row has no better
		// weather text elsewhere.
		return ""
	}
	return ""
}

// cleanMETAR strips markup and collapses whitespace, then truncates
// before any trailing non-weather section label.
func cleanMETAR(raw string) string {
	text := htmlTagRe.ReplaceAllString(raw, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	for _, label := range metarStopLabels {
		if i := strings.Index(text, label); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
	}
	return text
}
