package catalog

import (
	"strings"
	"uclasoc/lib/scrapers/soc"
	"uclasoc/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Mode selects the presentation cleaning style. "hacker" is the terse
// default; "plain" keeps the portal's human-readable wording.
type Mode string

const (
	ModePlain  Mode = "plain"
	ModeHacker Mode = "hacker"
)

// Filters carries the search-panel option tables used during cleaning.
// Locations maps a location's display label to its short option value.
type Filters struct {
	Locations map[string]string
}

// ExtractFilters reads the filter option lists off a subject's results page.
func ExtractFilters(doc *goquery.Document) Filters {
	locations := map[string]string{}
	doc.Find("#Location_options option").Each(func(_ int, opt *goquery.Selection) {
		label := strings.TrimSpace(opt.Text())
		if label == "" {
			return
		}
		value, _ := opt.Attr("value")
		locations[label] = value
	})
	return Filters{Locations: locations}
}

// CleanRecord rebuilds a record's display fields: whitespace collapsed,
// list entries tidied, and in hacker mode locations shortened to their
// option codes. Identifying fields and detail text do not survive cleaning;
// the reconciler re-asserts them afterwards.
func CleanRecord(rec soc.SectionRecord, filters Filters, mode Mode) soc.SectionRecord {
	out := soc.SectionRecord{}
	out.Status = cleanList(rec.Status)
	out.Waitlist = textutil.CollapseWhitespace(rec.Waitlist)
	out.Day = textutil.CollapseWhitespace(rec.Day)
	out.Time = cleanList(rec.Time)
	out.Units = textutil.CollapseWhitespace(rec.Units)
	out.Instructor = textutil.CollapseWhitespace(rec.Instructor)

	location := textutil.CollapseWhitespace(rec.Location)
	if mode == ModeHacker {
		code, ok := filters.Locations[location]
		if ok && code != "" {
			location = code
		}
	}
	out.Location = location

	return out
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = textutil.CollapseWhitespace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
