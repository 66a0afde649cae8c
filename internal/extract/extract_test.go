package extract

import (
	"testing"
	"time"

	"github.com/airband/feed-tracker/internal/testutils"
	"github.com/airband/feed-tracker/internal/types"
)

var testClock = testutils.FixedClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

func newTestExtractor() *Extractor {
	e := New()
	e.Now = testClock
	return e
}

func TestExtractPage_FullRow(t *testing.T) {
	page := testutils.MockFeedPage(testutils.FeedRow{
		ICAO:           "ksea",
		FeedName:       "KSEA Twr",
		Location:       "Seattle, Washington",
		Status:         "UP",
		METAR:          "KSEA 150853Z 18004KT 10SM FEW025 12/08 A3012",
		Listeners:      5,
		TotalListeners: 120,
		Frequencies:    "Tower: 119.9 / Ground: 121.7",
	})

	records := newTestExtractor().ExtractPage(page)
	if len(records) != 1 {
		t.Fatalf("ExtractPage() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ICAO != "ksea" {
		t.Errorf("ICAO = %q, want %q", rec.ICAO, "ksea")
	}
	if rec.Location != "Seattle, Washington" {
		t.Errorf("Location = %q, want %q", rec.Location, "Seattle, Washington")
	}
	if rec.Status != types.StatusUp {
		t.Errorf("Status = %q, want %q", rec.Status, types.StatusUp)
	}
	if rec.Listeners != 5 || rec.TotalListeners != 120 {
		t.Errorf("Listeners = %d/%d, want 5/120", rec.Listeners, rec.TotalListeners)
	}
	if rec.METAR != "KSEA 150853Z 18004KT 10SM FEW025 12/08 A3012" {
		t.Errorf("METAR = %q", rec.METAR)
	}
	if rec.Frequencies != "Tower: 119.9 / Ground: 121.7" {
		t.Errorf("Frequencies = %q", rec.Frequencies)
	}
	if rec.FeedName != "KSEA Twr" {
		t.Errorf("FeedName = %q, want %q", rec.FeedName, "KSEA Twr")
	}
	if !rec.Timestamp.Equal(testClock()) {
		t.Errorf("Timestamp = %s, want injected clock instant %s", rec.Timestamp, testClock())
	}

	wantTags := []string{"Tower", "Ground"}
	assertTags(t, rec.ChannelTypes, wantTags)
}

func TestExtractPage_ListingTableMissing(t *testing.T) {
	records := newTestExtractor().ExtractPage(testutils.MockPageWithoutListing())
	if len(records) != 0 {
		t.Fatalf("ExtractPage() returned %d records for page without listing, want 0", len(records))
	}
}

func TestExtractPage_RowWithoutAnchorSkipped(t *testing.T) {
	page := testutils.MockFeedPage(
		testutils.FeedRow{ICAO: "KLAX", FeedName: "KLAX Twr", Location: "Los Angeles", Status: "UP"},
		testutils.FeedRow{OmitAnchor: true, FeedName: "Ghost Feed", Location: "Nowhere", Status: "UP"},
	)

	records := newTestExtractor().ExtractPage(page)
	if len(records) != 1 {
		t.Fatalf("ExtractPage() returned %d records, want 1 (anchorless row skipped)", len(records))
	}
	if records[0].FeedName != "KLAX Twr" {
		t.Errorf("FeedName = %q, want %q", records[0].FeedName, "KLAX Twr")
	}
}

func TestExtractPage_DownRowFeedNameFromLabelCell(t *testing.T) {
	page := testutils.MockFeedPage(testutils.FeedRow{
		ICAO:          "FLKK",
		Location:      "FLKK Twr/App",
		Status:        "DOWN",
		OmitTitleLink: true,
	})

	records := newTestExtractor().ExtractPage(page)
	if len(records) != 1 {
		t.Fatalf("ExtractPage() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Status != types.StatusDown {
		t.Errorf("Status = %q, want %q", rec.Status, types.StatusDown)
	}
	if rec.FeedName != "FLKK Twr/App" {
		t.Errorf("FeedName = %q, want label cell text %q", rec.FeedName, "FLKK Twr/App")
	}
}

func TestExtractPage_FieldDefaults(t *testing.T) {
	page := testutils.MockFeedPage(testutils.FeedRow{ICAO: "ZZZZ"})

	records := newTestExtractor().ExtractPage(page)
	if len(records) != 1 {
		t.Fatalf("ExtractPage() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Location != "Unknown" {
		t.Errorf("Location = %q, want default %q", rec.Location, "Unknown")
	}
	if rec.Status != types.StatusUnknown {
		t.Errorf("Status = %q, want %q", rec.Status, types.StatusUnknown)
	}
	if rec.Listeners != 0 || rec.TotalListeners != 0 {
		t.Errorf("Listeners = %d/%d, want 0/0", rec.Listeners, rec.TotalListeners)
	}
	if rec.METAR != "" {
		t.Errorf("METAR = %q, want empty", rec.METAR)
	}
	if rec.Frequencies != "" {
		t.Errorf("Frequencies = %q, want empty", rec.Frequencies)
	}
	if rec.FeedName != "Unknown (ZZZZ)" {
		t.Errorf("FeedName = %q, want synthesized fallback %q", rec.FeedName, "Unknown (ZZZZ)")
	}
}

func TestExtractPage_FrequenciesFromSiblingRow(t *testing.T) {
	page := testutils.MockFeedPage(testutils.FeedRow{
		ICAO:             "EGLL",
		FeedName:         "EGLL Twr",
		Location:         "London Heathrow",
		Status:           "UP",
		Frequencies:      "Tower: 118.5",
		SplitFrequencies: true,
	})

	records := newTestExtractor().ExtractPage(page)
	if len(records) != 1 {
		t.Fatalf("ExtractPage() returned %d records, want 1", len(records))
	}
	if records[0].Frequencies != "Tower: 118.5" {
		t.Errorf("Frequencies = %q, want sibling-row block %q", records[0].Frequencies, "Tower: 118.5")
	}
}

func TestExtractPage_DocumentOrderPreserved(t *testing.T) {
	page := testutils.MockFeedPage(
		testutils.FeedRow{ICAO: "KJFK", FeedName: "KJFK Twr", Location: "New York", Status: "UP"},
		testutils.FeedRow{ICAO: "KBOS", FeedName: "KBOS Twr", Location: "Boston", Status: "DOWN", OmitTitleLink: true},
		testutils.FeedRow{ICAO: "KORD", FeedName: "KORD Gnd", Location: "Chicago", Status: "UP"},
	)

	records := newTestExtractor().ExtractPage(page)
	if len(records) != 3 {
		t.Fatalf("ExtractPage() returned %d records, want 3", len(records))
	}

	wantOrder := []string{"KJFK", "KBOS", "KORD"}
	for i, want := range wantOrder {
		if records[i].ICAO != want {
			t.Errorf("records[%d].ICAO = %q, want %q", i, records[i].ICAO, want)
		}
	}
}

func TestExtractPage_SubstitutableTable(t *testing.T) {
	e := newTestExtractor()
	e.Table = Table{
		Extended: []ExtendedRule{{Tag: "Custom", Keywords: []string{"Special"}}},
	}

	page := testutils.MockFeedPage(testutils.FeedRow{
		ICAO:        "KSFO",
		FeedName:    "KSFO Twr",
		Location:    "San Francisco",
		Status:      "UP",
		Frequencies: "Special: 123.45",
	})

	records := e.ExtractPage(page)
	if len(records) != 1 {
		t.Fatalf("ExtractPage() returned %d records, want 1", len(records))
	}
	assertTags(t, records[0].ChannelTypes, []string{"Custom"})
}

func assertTags(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ChannelTypes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ChannelTypes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
