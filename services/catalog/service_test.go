package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"uclasoc/lib/scrapers/soc"
	"uclasoc/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages map[string]string
	calls map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: map[string]int{}}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	f.calls[pageURL]++
	page, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no page for %q", pageURL)
	}
	return page, nil
}

const subjectName = "Computer Science (COM SCI)"

func listingFixture(lastPage bool, courses ...[3]string) string {
	var b bytes.Buffer
	b.WriteString("<html><body>")
	for _, c := range courses {
		courseID, classID, title := c[0], c[1], c[2]
		fmt.Fprintf(&b, `<h3 id=%q>%s</h3>`, courseID+"-title", title)
		fmt.Fprintf(&b,
			`<script>addCourse();AddToCourseData(%q,{"classId":%q,"term":"25F"})</script>`,
			courseID, classID)
	}
	b.WriteString(`<div class="cls-section" id="111111_1"><p class="hide-small"><a href="/ro/ClassDetail?id=111111">Lec 1</a></p></div>`)
	if lastPage {
		b.WriteString(`<button id="lastPage_button"></button>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func summaryURLFor(classID string) string {
	return soc.CourseSummaryURL(json.RawMessage(
		fmt.Sprintf(`{"classId":%q,"term":"25F"}`, classID)))
}

const summary35L = `<html><body><div id="div_landing">
<div class="data_row primary-row" id="111111_1">
	<div class="statusColumn"><p>Open</p></div>
	<div class="waitlistColumn"><p>0 of 20</p></div>
	<div class="dayColumn"><p>MW</p></div>
	<div class="timeColumn"><p>meets from</p><p>10am-11:50am</p></div>
	<div class="locationColumn"><p>held at</p><p><button>Royce Hall 154</button></p></div>
	<div class="unitsColumn"><p>4.0</p></div>
	<div class="instructorColumn"><p>Eggert, P.R.</p></div>
</div>
<div class="data_row primary-row" id="333333_2">
	<p class="hide-small"><a href="/ro/ClassDetail?id=333333">Lec 2</a></p>
	<div class="statusColumn"><p>Closed</p></div>
	<div class="waitlistColumn"><p>5 of 5</p></div>
	<div class="dayColumn"><p>TR</p></div>
	<div class="timeColumn"><p>2pm-3:50pm</p></div>
	<div class="locationColumn"><p>Boelter 3400</p></div>
	<div class="unitsColumn"><p>4.0</p></div>
	<div class="instructorColumn"><p>Smallberg, D.</p></div>
</div>
</div></body></html>`

const summary599 = `<html><body><div id="div_landing">
<div class="data_row primary-row" id="222222_1">
	<p class="hide-small"><a href="/ro/ClassDetail?id=599A">1A</a></p>
	<div class="statusColumn"><p>Open</p></div>
</div>
<div class="data_row primary-row" id="222222_2">
	<p class="hide-small"><a href="/ro/ClassDetail?id=599B">1B</a></p>
	<div class="statusColumn"><p>Open</p></div>
</div>
<div class="data_row primary-row" id="222222_3">
	<p class="hide-small"><a href="/ro/ClassDetail?id=599C">1C</a></p>
	<div class="statusColumn"><p>Open</p></div>
</div>
</div></body></html>`

const detail35L = `<html><body><template id="ucla-sa-soc-app">
<div id="section">
	<p class="class_detail_title">Course Description</p>
	<p class="section_data">Intro to software construction.</p>
	<p class="class_detail_title">Class Description</p>
	<p class="section_data">   </p>
</div>
</template></body></html>`

const detail599 = `<html><body><template id="ucla-sa-soc-app">
<div id="section">
	<p class="class_detail_title">Course Description</p>
	<p class="section_data">Directed individual study.</p>
</div>
</template></body></html>`

const filtersFixture = `<html><body><select id="Location_options">
<option value="">Select a location</option>
<option value="ROYCE154">Royce Hall 154</option>
</select></body></html>`

func readExport(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSubjectQuietPaginates(t *testing.T) {
	pageOne := soc.CourseTitlesURL("25F", "COM SCI", subjectName, 1)
	pageTwo := soc.CourseTitlesURL("25F", "COM SCI", subjectName, 2)
	fetcher := newFakeFetcher(map[string]string{
		soc.ResultsURL("", ""): shellFixture,
		pageOne: listingFixture(false, [3]string{
			"111111_COMSCI0035L", "111111", "35L - Software Construction",
		}),
		pageTwo: "<html><body></body></html>",
	})

	var out bytes.Buffer
	err := NewService(fetcher).Subject(context.Background(), SubjectOptions{
		Term:    "25F",
		Subject: "com sci",
		Out:     &out,
	})
	require.NoError(t, err)

	require.Contains(t, out.String(), "COM SCI 35L - Software Construction")
	require.Equal(t, 1, fetcher.calls[pageOne])
	require.Equal(t, 1, fetcher.calls[pageTwo])
	require.Zero(t, fetcher.calls[summaryURLFor("111111")])
}

func TestSubjectUnknownSubject(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		soc.ResultsURL("", ""): shellFixture,
	})

	err := NewService(fetcher).Subject(context.Background(), SubjectOptions{
		Term:    "25F",
		Subject: "basket weaving",
		Out:     &bytes.Buffer{},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown subject area")
}

func TestSubjectReconcilesSections(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/catalog")
	defer cleanup()
	chdirTemp(t)

	fetcher := newFakeFetcher(map[string]string{
		soc.ResultsURL("", ""):             shellFixture,
		soc.ResultsURL("25F", "COM SCI"):   filtersFixture,
		summaryURLFor("111111"):            summary35L,
		soc.Absolutize("/ro/ClassDetail?id=111111"): detail35L,
		soc.CourseTitlesURL("25F", "COM SCI", subjectName, 1): listingFixture(true, [3]string{
			"111111_COMSCI0035L", "111111", "35L - Software Construction",
		}),
	})

	err := NewService(fetcher).Subject(context.Background(), SubjectOptions{
		Term:     "25F",
		Subject:  "COM SCI",
		Details:  true,
		Mode:     ModeHacker,
		CSV:      true,
		QuietCSV: true,
		Out:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	rows := readExport(t, "25F/COM_SCI.csv")
	require.Len(t, rows, 3)

	// first row has no anchor of its own; identifiers come off the
	// listing page's link index
	first := rows[1]
	require.Equal(t, "Lec 1", first[4])
	require.Equal(t, "https://sa.ucla.edu/ro/ClassDetail?id=111111", first[5])
	require.Equal(t, "Open", first[6])
	require.Equal(t, "0 of 20", first[7])
	require.Equal(t, "MW", first[8])
	require.Equal(t, "10am-11:50am", first[9])
	// hacker mode shortens the location through the filter table
	require.Equal(t, "ROYCE154", first[10])
	require.Equal(t, "Eggert, P.R.", first[12])
	require.Equal(t, "Intro to software construction.", first[13])
	require.Equal(t, "N/A (Empty)", first[14])
	require.Equal(t, "N/A", first[15])

	// second row carries its own anchor and keeps it; its detail page
	// is unreachable so the description degrades
	second := rows[2]
	require.Equal(t, "Lec 2", second[4])
	require.Equal(t, "https://sa.ucla.edu/ro/ClassDetail?id=333333", second[5])
	require.Equal(t, "Boelter 3400", second[10])
	require.Equal(t, "N/A (Failed to fetch page content)", second[13])
}

func TestSubjectSpecialCourseSharesDetails(t *testing.T) {
	chdirTemp(t)

	detailURL := soc.Absolutize("/ro/ClassDetail?id=599A")
	fetcher := newFakeFetcher(map[string]string{
		soc.ResultsURL("", ""):  shellFixture,
		summaryURLFor("222222"): summary599,
		detailURL:               detail599,
		soc.CourseTitlesURL("25F", "COM SCI", subjectName, 1): listingFixture(true, [3]string{
			"222222_COMSCI0599", "222222", "599 - Research for PhD Students",
		}),
	})

	err := NewService(fetcher).Subject(context.Background(), SubjectOptions{
		Term:     "25F",
		Subject:  "COM SCI",
		Details:  true,
		CSV:      true,
		QuietCSV: true,
		Out:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	// one detail fetch serves every section of the course
	require.Equal(t, 1, fetcher.calls[detailURL])
	require.Zero(t, fetcher.calls[soc.Absolutize("/ro/ClassDetail?id=599B")])
	require.Zero(t, fetcher.calls[soc.Absolutize("/ro/ClassDetail?id=599C")])

	rows := readExport(t, "25F/COM_SCI.csv")
	require.Len(t, rows, 4)
	for _, row := range rows[1:] {
		require.Equal(t, "Directed individual study.", row[13])
	}
	require.Equal(t, "1A", rows[1][4])
	require.Equal(t, "1B", rows[2][4])
	require.Equal(t, "1C", rows[3][4])
}

func TestRestoreAuthoritative(t *testing.T) {
	pre := soc.SectionRecord{
		ClassID:     "111111",
		SectionID:   "1A",
		SectionLink: "https://sa.ucla.edu/ro/ClassDetail?id=1",
		Details: soc.SectionDetails{
			CourseDescription: soc.OkField("kept"),
			ClassDescription:  soc.Field{State: soc.FieldEmpty},
		},
	}

	cleaned := CleanRecord(pre, Filters{}, ModePlain)
	restoreAuthoritative(&cleaned, pre)

	require.Equal(t, "1A", cleaned.SectionID)
	require.Equal(t, pre.SectionLink, cleaned.SectionLink)
	require.Equal(t, "111111", cleaned.ClassID)
	require.Equal(t, soc.OkField("kept"), cleaned.Details.CourseDescription)
	require.Equal(t, soc.Field{State: soc.FieldEmpty}, cleaned.Details.ClassDescription)
	require.Equal(t, soc.Field{}, cleaned.Details.Diversity)
}

func TestSubjectConnectionErrorRow(t *testing.T) {
	chdirTemp(t)

	fetcher := newFakeFetcher(map[string]string{
		soc.ResultsURL("", ""): shellFixture,
		soc.CourseTitlesURL("25F", "COM SCI", subjectName, 1): listingFixture(true, [3]string{
			"444444_COMSCI0111", "444444", "111 - Operating Systems Principles",
		}),
	})

	err := NewService(fetcher).Subject(context.Background(), SubjectOptions{
		Term:     "25F",
		Subject:  "COM SCI",
		Details:  true,
		CSV:      true,
		QuietCSV: true,
		Out:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	rows := readExport(t, "25F/COM_SCI.csv")
	require.Len(t, rows, 2)

	row := rows[1]
	require.Equal(t, "Unknown - Connection Error", row[6])
	require.Equal(t, "Unknown", row[7])
	require.Equal(t, "Unknown", row[12])
	require.Equal(t, "N/A (No URL provided)", row[13])
}
