package catalog

import (
	"strings"
	"testing"
	"uclasoc/lib/scrapers/soc"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestExtractFilters(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<select id="Location_options">
			<option value="">Select a location</option>
			<option value="ROYCE154">Royce Hall 154</option>
			<option value="BOELTER3400">Boelter Hall 3400</option>
		</select>`))
	require.NoError(t, err)

	filters := ExtractFilters(doc)
	require.Equal(t, "ROYCE154", filters.Locations["Royce Hall 154"])
	require.Equal(t, "BOELTER3400", filters.Locations["Boelter Hall 3400"])
}

func TestCleanRecordCollapsesWhitespace(t *testing.T) {
	rec := soc.SectionRecord{
		Status:     []string{"Open  ", "  "},
		Waitlist:   " 0 of\n20 ",
		Day:        "MW",
		Time:       []string{" 10am -  11:50am "},
		Location:   "Royce   Hall 154",
		Units:      "4.0",
		Instructor: "Eggert,  P.R.",
	}

	out := CleanRecord(rec, Filters{}, ModePlain)
	require.Equal(t, []string{"Open"}, out.Status)
	require.Equal(t, "0 of 20", out.Waitlist)
	require.Equal(t, []string{"10am - 11:50am"}, out.Time)
	require.Equal(t, "Royce Hall 154", out.Location)
	require.Equal(t, "Eggert, P.R.", out.Instructor)
}

func TestCleanRecordHackerLocations(t *testing.T) {
	filters := Filters{Locations: map[string]string{"Royce Hall 154": "ROYCE154"}}
	rec := soc.SectionRecord{Location: "Royce  Hall 154"}

	out := CleanRecord(rec, filters, ModeHacker)
	require.Equal(t, "ROYCE154", out.Location)

	// plain mode keeps the label even when a code exists
	out = CleanRecord(rec, filters, ModePlain)
	require.Equal(t, "Royce Hall 154", out.Location)
}

func TestCleanRecordDropsIdentifiers(t *testing.T) {
	rec := soc.SectionRecord{
		ClassID:     "111111",
		SectionID:   "Lec 1",
		SectionLink: "https://sa.ucla.edu/ro/ClassDetail?id=1",
		Details:     soc.SectionDetails{CourseDescription: soc.OkField("text")},
	}

	out := CleanRecord(rec, Filters{}, ModePlain)
	require.Empty(t, out.ClassID)
	require.Empty(t, out.SectionID)
	require.Empty(t, out.SectionLink)
	require.Equal(t, soc.SectionDetails{}, out.Details)
}
