package testutils

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// FeedRow describes one feed row for MockFeedPage. Zero values produce a
// minimal but structurally valid row.
type FeedRow struct {
	ICAO           string
	FeedName       string
	Location       string
	Status         string // "UP" or "DOWN"; anything else renders as-is
	METAR          string
	Listeners      int
	TotalListeners int
	Frequencies    string

	// OmitAnchor drops the identity anchor so the row must be skipped.
	OmitAnchor bool
	// OmitTitleLink renders the title without a hyperlink. Combined with
	// Status "DOWN" the title reads "DOWN", as on the live directory.
	OmitTitleLink bool
	// SplitFrequencies moves the frequency block into a separate sibling
	// row, as some category pages render it.
	SplitFrequencies bool
}

// MockFeedPage renders a category page containing the given feed rows
// inside the listing table's structural signature.
func MockFeedPage(rows ...FeedRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><table width="900" border="1" bordercolor="#333333" bgcolor="#EEEEEE">`)
	for _, row := range rows {
		writeRow(&b, row)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

// MockPageWithoutListing renders a page that carries tables, none of
// which match the listing signature.
func MockPageWithoutListing() string {
	return `<html><body><table width="500" border="0"><tr><td>nothing here</td></tr></table></body></html>`
}

func writeRow(b *strings.Builder, row FeedRow) {
	color := "lightgreen"
	if row.Status == "DOWN" {
		color = "pink"
	}

	b.WriteString(`<tr><td bgcolor="` + color + `">`)
	if !row.OmitAnchor {
		fmt.Fprintf(b, `<a name="%s"></a>`, row.ICAO)
	}
	b.WriteString(title(row))
	b.WriteString(`</td>`)

	fmt.Fprintf(b, `<td><font class="nav">%s</font></td>`, row.Location)

	b.WriteString(`<td><span class="purSep"><font color="green">` + row.Status + `</font>`)
	if row.METAR != "" {
		b.WriteString(`<br />` + row.METAR)
	}
	b.WriteString(`</span><br />`)
	fmt.Fprintf(b, `<font class="purSep">Listeners: %d out of %d</font></td>`, row.Listeners, row.TotalListeners)

	if row.Frequencies != "" && !row.SplitFrequencies {
		fmt.Fprintf(b, `<td valign="top"><p><font class="purSep">%s</font></p></td>`, row.Frequencies)
	}
	b.WriteString(`</tr>`)

	if row.Frequencies != "" && row.SplitFrequencies {
		fmt.Fprintf(b, `<tr><td valign="top"><p><font class="purSep">%s</font></p></td></tr>`, row.Frequencies)
	}
}

func title(row FeedRow) string {
	switch {
	case row.OmitTitleLink && row.Status == "DOWN":
		return `<strong>DOWN</strong>`
	case row.OmitTitleLink:
		return `<strong>` + row.FeedName + `</strong>`
	default:
		return fmt.Sprintf(`<strong><a href="/play/%s.pls">%s</a></strong>`, strings.ToLower(row.ICAO), row.FeedName)
	}
}

// FixedClock returns a clock function frozen at the given instant.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// WaitForCondition waits for a condition to become true within timeout.
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
