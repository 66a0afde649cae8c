package extract

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/airband/feed-tracker/internal/types"
)

// Extractor turns one category page of raw markup into feed records.
// It is stateless apart from its configuration and safe for concurrent
// use across pages.
type Extractor struct {
	Table Table
	Now   func() time.Time
}

// New creates an Extractor with the default keyword table and a UTC
// wall clock.
func New() *Extractor {
	return &Extractor{
		Table: DefaultTable,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

var listenersRe = regexp.MustCompile(`Listeners:\s*(\d+)\s*out of\s*(\d+)`)

// Cells containing these labels are not listener-count cells even though
// they share the same styling.
var nonListenerLabels = []string{"Frequencies"}

// Blocks containing these labels are not frequency blocks.
var nonFrequencyLabels = []string{"Listeners:"}

// ExtractPage parses raw markup for one category page and returns the
// feed records in document order. Duplicates across pages are left to
// the merge engine. A page without the expected listing table yields an
// empty result, never an error.
func (e *Extractor) ExtractPage(html string) []types.FeedRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("extract: failed to parse page markup: %v", err)
		return nil
	}

	table := findListingTable(doc)
	if table == nil {
		log.Printf("extract: listing table not found on page")
		return nil
	}

	var records []types.FeedRecord
	table.Find(`td[bgcolor="lightgreen"], td[bgcolor="pink"]`).Each(func(_ int, cell *goquery.Selection) {
		row := cell.Closest("tr")
		if row.Length() == 0 {
			return
		}
		rec, ok := e.extractRow(row)
		if ok {
			records = append(records, rec)
		}
	})
	return records
}

// findListingTable locates the single table carrying the feed listing by
// its fixed structural signature.
func findListingTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.AttrOr("width", "") == "900" &&
			s.AttrOr("border", "") == "1" &&
			s.AttrOr("bordercolor", "") == "#333333" &&
			s.AttrOr("bgcolor", "") == "#EEEEEE" {
			found = s
			return false
		}
		return true
	})
	return found
}

// extractRow builds one FeedRecord from a feed row. Every field defaults
// independently; only a missing identity anchor drops the row. A panic
// while processing the row is logged and drops only that row.
func (e *Extractor) extractRow(row *goquery.Selection) (rec types.FeedRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extract: skipping row after error: %v", r)
			ok = false
		}
	}()

	anchor := row.Find("a[name]").First()
	icao, hasAnchor := anchor.Attr("name")
	if !hasAnchor || icao == "" {
		return rec, false
	}

	location := "Unknown"
	navFont := row.Find("font.nav").First()
	if nav := normalizeSpace(navFont.Text()); nav != "" {
		location = nav
	}

	status := types.StatusUnknown
	statusSpan := row.Find("span.purSep").First()
	if statusSpan.Length() > 0 {
		if font := statusSpan.Find("font").First(); font.Length() > 0 {
			status = types.NormalizeStatus(strings.TrimSpace(font.Text()))
		}
	}

	title := ""
	strong := row.Find("strong").First()
	if strong.Length() > 0 {
		title = strong.Text()
	}
	channelTypes := e.Table.CoarseTags(title)

	metar := ""
	if statusSpan.Length() > 0 {
		if spanHTML, err := goquery.OuterHtml(statusSpan); err == nil {
			metar = extractMETAR(spanHTML)
		}
	}

	listeners, totalListeners := extractListeners(row)

	frequencies := extractFrequencies(row)
	channelTypes = e.Table.ExtendedTags(frequencies, channelTypes)

	return types.FeedRecord{
		ICAO:           icao,
		Location:       location,
		Status:         status,
		Listeners:      listeners,
		TotalListeners: totalListeners,
		ChannelTypes:   channelTypes,
		METAR:          metar,
		Frequencies:    frequencies,
		Timestamp:      e.Now(),
		FeedName:       resolveFeedName(strong, navFont, location, icao),
	}, true
}

// extractListeners scans the row's purSep cells for the first
// "Listeners: X out of Y" pair, skipping cells that belong to other
// sections.
func extractListeners(row *goquery.Selection) (listeners, total int) {
	row.Find("font.purSep").EachWithBreak(func(_ int, font *goquery.Selection) bool {
		text := font.Text()
		if !strings.Contains(text, "Listeners:") {
			return true
		}
		for _, label := range nonListenerLabels {
			if strings.Contains(text, label) {
				return true
			}
		}
		m := listenersRe.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		listeners, _ = strconv.Atoi(m[1])
		total, _ = strconv.Atoi(m[2])
		return false
	})
	return listeners, total
}

// extractFrequencies finds the row's frequency block, falling back to
// the next sibling row when the listing splits frequencies out. Returns
// the first non-empty line of the block, or "".
func extractFrequencies(row *goquery.Selection) string {
	if freq := frequenciesInRow(row); freq != "" {
		return freq
	}
	if next := row.Next(); next.Length() > 0 {
		return frequenciesInRow(next)
	}
	return ""
}

func frequenciesInRow(row *goquery.Selection) string {
	freq := ""
	row.Find(`td[valign="top"]`).EachWithBreak(func(_ int, td *goquery.Selection) bool {
		font := td.Find("p font.purSep").First()
		if font.Length() == 0 {
			return true
		}
		text := strings.TrimSpace(font.Text())
		if text == "" {
			return true
		}
		for _, label := range nonFrequencyLabels {
			if strings.Contains(text, label) {
				return true
			}
		}
		freq = firstLine(text)
		return false
	})
	return freq
}

// resolveFeedName picks the display key for a row: the hyperlinked title,
// then the plain title unless it reads "DOWN", then the descriptive
// label cell, then a synthesized "{location} ({icao})".
func resolveFeedName(strong, navFont *goquery.Selection, location, icao string) string {
	if strong.Length() > 0 {
		if link := strong.Find("a").First(); link.Length() > 0 {
			if name := strings.TrimSpace(link.Text()); name != "" {
				return name
			}
		}
		if name := strings.TrimSpace(strong.Text()); name != "" && name != "DOWN" {
			return name
		}
	}
	if nav := normalizeSpace(navFont.Text()); nav != "" {
		return nav
	}
	return location + " (" + icao + ")"
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
