package soc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"uclasoc/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// A course summary page comes in two shapes. The legacy single-section shape
// repeats each column class twice (a header echo and the real value), so
// values are read from match index 1 across the whole page. The multi-row
// shape carries one data_row/primary-row container per section and columns
// are read within the row only. Both implement sectionShape.
type sectionShape interface {
	extract(ctx context.Context, doc *goquery.Document) []SectionRecord
}

// ExtractSections picks the shape present on the page and extracts one
// record per section row.
func ExtractSections(ctx context.Context, doc *goquery.Document) []SectionRecord {
	ctx, span := tracer.Start(ctx, "ExtractSections")
	defer span.End()

	var shape sectionShape = legacyShape{}
	if doc.Find("div.data_row.primary-row").Length() > 0 {
		shape = multiRowShape{}
	}

	records := shape.extract(ctx, doc)
	span.SetAttributes(attribute.Int("sections", len(records)))
	return records
}

type legacyShape struct{}

func (legacyShape) extract(ctx context.Context, doc *goquery.Document) []SectionRecord {
	rec, err := safeExtract(func() SectionRecord {
		return extractColumns(doc.Selection, func(class string) *goquery.Selection {
			// index 0 is the header echo, index 1 the real value
			return doc.Find("." + class).Eq(1)
		})
	})
	if err != nil {
		slog.WarnContext(ctx, "section extraction failed", "row", 0, "err", err)
		return []SectionRecord{errorRow(0)}
	}
	return []SectionRecord{rec}
}

type multiRowShape struct{}

func (multiRowShape) extract(ctx context.Context, doc *goquery.Document) []SectionRecord {
	rows := doc.Find("div.data_row.primary-row")
	records := make([]SectionRecord, 0, rows.Length())

	rows.Each(func(i int, row *goquery.Selection) {
		rec, err := safeExtract(func() SectionRecord {
			rec := extractColumns(row, func(class string) *goquery.Selection {
				return row.Find("." + class).First()
			})
			rec.ClassID = rowClassID(row)
			return rec
		})
		if err != nil {
			slog.WarnContext(ctx, "section extraction failed", "row", i, "err", err)
			rec = errorRow(i)
		}
		records = append(records, rec)
	})
	return records
}

// rowClassID reads the class id off a row's structured element id, the same
// underscore split used for the section link index.
func rowClassID(row *goquery.Selection) string {
	rowID, ok := row.Attr("id")
	if !ok {
		return ""
	}
	parts := strings.Split(rowID, "_")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// extractColumns reads every summary field from one scope. Column lookup is
// delegated so the two shapes can index differently. A missing column or
// empty value degrades to "N/A"; it never fails the row.
func extractColumns(scope *goquery.Selection, column func(class string) *goquery.Selection) SectionRecord {
	rec := SectionRecord{}

	rec.Status = htmlutil.TextFragments(column("statusColumn").Find("p").First())
	if len(rec.Status) == 0 {
		rec.Status = []string{"N/A"}
	}

	rec.Waitlist = orNA(htmlutil.FirstTextFragment(column("waitlistColumn").Find("p").First()))
	rec.Day = orNA(strings.TrimSpace(column("dayColumn").Find("p").First().Text()))

	// some layouts carry a screen-reader paragraph first; the visible
	// value is the second one when present
	rec.Time = htmlutil.TextFragments(secondOrFirst(column("timeColumn").Find("p")))
	if len(rec.Time) == 0 {
		rec.Time = []string{"N/A"}
	}

	locationP := secondOrFirst(column("locationColumn").Find("p"))
	button := locationP.Find("button")
	if button.Length() > 0 {
		rec.Location = strings.TrimSpace(button.First().Text())
	} else {
		rec.Location = strings.TrimSpace(locationP.Text())
	}
	rec.Location = orNA(rec.Location)

	rec.Units = orNA(htmlutil.FirstTextFragment(column("unitsColumn").Find("p").First()))
	rec.Instructor = orNA(htmlutil.FirstTextFragment(column("instructorColumn").Find("p").First()))

	// many rows have no own link; the reconciler fills it from the
	// listing page's link index
	anchor, ok := sectionAnchor(scope)
	if ok {
		rec.SectionID = anchor.Name
		rec.SectionLink = Absolutize(anchor.Href)
	}

	return rec
}

// sectionAnchor scans the scope for the first narrow-display title paragraph
// that actually contains an anchor.
func sectionAnchor(scope *goquery.Selection) (htmlutil.Anchor, bool) {
	var found htmlutil.Anchor
	ok := false
	scope.Find("p.hide-small").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		anchor, hasAnchor := htmlutil.FirstAnchor(p)
		if !hasAnchor {
			return true
		}
		found = anchor
		ok = true
		return false
	})
	return found, ok
}

func secondOrFirst(ps *goquery.Selection) *goquery.Selection {
	if ps.Length() > 1 {
		return ps.Eq(1)
	}
	return ps.First()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func safeExtract(fn func() SectionRecord) (rec SectionRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row extraction panic: %v", r)
		}
	}()
	return fn(), nil
}

// errorRow replaces a row whose extraction failed outright. Sibling rows are
// unaffected.
func errorRow(index int) SectionRecord {
	return SectionRecord{
		Status:     []string{"N/A"},
		Waitlist:   "N/A",
		Day:        "N/A",
		Time:       []string{"N/A"},
		Location:   "N/A",
		Units:      "N/A",
		Instructor: "N/A",
		SectionID:  fmt.Sprintf("Error_Row_%d", index),
	}
}
