package extract

import (
	"strings"
)

// CoarseRule tags a feed when any of its substrings appears in the row's
// title text. Title abbreviations are stable enough that plain substring
// matching is safe here.
type CoarseRule struct {
	Tag        string
	Substrings []string
}

// ExtendedRule tags a feed when any of its keywords appears as a whole
// token in the frequency text. Matching is case-insensitive.
type ExtendedRule struct {
	Tag      string
	Keywords []string
}

// Table bundles both keyword tables. It is data, not logic: tests swap in
// minimal tables without touching the extraction code.
type Table struct {
	Coarse   []CoarseRule
	Extended []ExtendedRule
}

// DefaultTable matches the channel naming conventions observed on the
// live feed directory.
var DefaultTable = Table{
	Coarse: []CoarseRule{
		{Tag: "Tower", Substrings: []string{"Twr"}},
		{Tag: "Approach", Substrings: []string{"App"}},
		{Tag: "Departure", Substrings: []string{"Dep"}},
		{Tag: "Ground", Substrings: []string{"Gnd"}},
		{Tag: "Center", Substrings: []string{"Ctr", "Center"}},
		{Tag: "ATIS", Substrings: []string{"ATIS"}},
	},
	Extended: []ExtendedRule{
		{Tag: "Tower", Keywords: []string{"Tower", "Twr", "TWR"}},
		{Tag: "Approach", Keywords: []string{"Approach", "App", "APP", "Arrival", "ARR"}},
		{Tag: "Departure", Keywords: []string{"Departure", "Dep", "DEP"}},
		{Tag: "Ground", Keywords: []string{"Ground", "Gnd", "GND"}},
		{Tag: "Center", Keywords: []string{"Center", "Centre", "Ctr", "CTR", "Control", "CTRL"}},
		{Tag: "ATIS", Keywords: []string{"ATIS", "Information", "Info", "INFO"}},
		{Tag: "Clearance", Keywords: []string{"Clearance", "Clnc", "CLNC", "Delivery", "Del", "DEL"}},
		{Tag: "Ramp", Keywords: []string{"Ramp", "Apron", "APN"}},
		{Tag: "Operations", Keywords: []string{"Operations", "Ops", "OPS"}},
		{Tag: "Radio", Keywords: []string{"Radio", "Unicom", "UNICOM"}},
		{Tag: "Director", Keywords: []string{"Director", "Dir", "DIR"}},
		{Tag: "Radar", Keywords: []string{"Radar", "RAD"}},
		{Tag: "Terminal", Keywords: []string{"Terminal", "TMA"}},
		{Tag: "Area", Keywords: []string{"Area", "ACC"}},
		{Tag: "Flight Service", Keywords: []string{"Flight Service", "FSS"}},
		{Tag: "Surface", Keywords: []string{"Surface", "SMC"}},
		{Tag: "Pre-Departure", Keywords: []string{"Pre-Departure", "PDC"}},
		{Tag: "Final", Keywords: []string{"Final", "FIN"}},
		{Tag: "Emergency", Keywords: []string{"Emergency", "EMERG"}},
	},
}

// CoarseTags returns the tags whose substrings appear in the title text.
func (t Table) CoarseTags(title string) []string {
	var tags []string
	for _, rule := range t.Coarse {
		for _, sub := range rule.Substrings {
			if strings.Contains(title, sub) {
				tags = appendUnique(tags, rule.Tag)
				break
			}
		}
	}
	return tags
}

// ExtendedTags returns the tags whose keywords appear as whole tokens in
// the frequency text, accumulated onto the given tag list without
// duplication.
func (t Table) ExtendedTags(frequencies string, tags []string) []string {
	if frequencies == "" {
		return tags
	}
	lower := strings.ToLower(frequencies)
	for _, rule := range t.Extended {
		for _, kw := range rule.Keywords {
			if containsToken(lower, strings.ToLower(kw)) {
				tags = appendUnique(tags, rule.Tag)
				break
			}
		}
	}
	return tags
}

// containsToken reports whether token occurs in text bounded on both
// sides by a space, colon, slash, or the string edge. This keeps "Tow"
// from matching inside "Tower".
func containsToken(text, token string) bool {
	if token == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(text[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if isTokenBoundary(text, start-1) && isTokenBoundary(text, end) {
			return true
		}
		from = start + 1
	}
}

func isTokenBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	switch text[i] {
	case ' ', ':', '/':
		return true
	}
	return false
}

func appendUnique(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
