package soc

import (
	"context"
	"log/slog"
	"strings"
	"uclasoc/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// The detail page embeds its real content inside this template element when
// served to clients without script support.
const detailTemplateSelector = "template#ucla-sa-soc-app"

const (
	titleCourseDescription = "Course Description"
	titleClassDescription  = "Class Description"
	titleGeneralEducation  = "General Education (GE)"
	titleWritingII         = "Writing II"
	titleDiversity         = "Diversity"
	titleClassNotes        = "Class Notes"
)

// FetchSectionDetails retrieves and parses one section's detail page. Every
// failure mode degrades to tagged fields rather than an error: no url means
// the fetch is skipped outright, exhausted retries mark the fetch failed,
// and a page without the expected content root comes back all-absent.
func FetchSectionDetails(ctx context.Context, fetcher PageFetcher, sectionURL string) SectionDetails {
	ctx, span := tracer.Start(ctx, "FetchSectionDetails")
	defer span.End()
	span.SetAttributes(attribute.String("url", sectionURL))

	if sectionURL == "" {
		return NoURLDetails()
	}

	text, err := fetcher.FetchPage(ctx, sectionURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return FetchFailedDetails()
	}

	details, err := ParseSectionDetails(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse detail page")
		return MissingDetails()
	}
	return details
}

// ParseSectionDetails extracts the six supplementary fields from detail page
// text. Parsing the same page twice yields identical output.
func ParseSectionDetails(ctx context.Context, pageText string) (SectionDetails, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return MissingDetails(), err
	}

	content := doc.Selection
	template := doc.Find(detailTemplateSelector).First()
	if template.Length() > 0 {
		inner, err := template.Html()
		if err == nil && strings.TrimSpace(inner) != "" {
			fragment, err := goquery.NewDocumentFromReader(strings.NewReader(inner))
			if err == nil {
				content = fragment.Selection
			}
		} else {
			slog.DebugContext(ctx, "detail template is empty, searching outer document")
		}
	}

	root := content.Find("div#section").First()
	if root.Length() == 0 && content != doc.Selection {
		root = doc.Find("div#section").First()
	}
	if root.Length() == 0 {
		return MissingDetails(), nil
	}

	return SectionDetails{
		CourseDescription: dataForTitle(root, titleCourseDescription),
		ClassDescription:  dataForTitle(root, titleClassDescription),
		GeneralEducation:  dataForTitle(root, titleGeneralEducation),
		WritingII:         dataForTitle(root, titleWritingII),
		Diversity:         dataForTitle(root, titleDiversity),
		ClassNotes:        dataForTitle(root, titleClassNotes),
	}, nil
}

// dataForTitle finds a title-marker paragraph whose exact trimmed text
// equals title, then its associated data element. Normally that is the next
// section_data sibling; "Class Notes" prefers an immediately following list,
// skipping past one empty intervening section_data paragraph if present.
func dataForTitle(root *goquery.Selection, title string) Field {
	titleP := findTitle(root, title)
	if titleP == nil {
		return Field{State: FieldMissing}
	}

	var data *goquery.Selection
	if title == titleClassNotes {
		next := titleP.Next()
		switch {
		case next.Length() == 0:
		case goquery.NodeName(next) == "ul":
			data = next
		case goquery.NodeName(next) == "p" && next.HasClass("section_data"):
			if strings.TrimSpace(next.Text()) == "" {
				listAfter := next.NextAllFiltered("ul").First()
				if listAfter.Length() > 0 {
					data = listAfter
				} else {
					data = next
				}
			} else {
				data = next
			}
		}
	}
	if data == nil {
		candidate := titleP.NextAllFiltered("p.section_data").First()
		if candidate.Length() == 0 {
			return Field{State: FieldMissing}
		}
		data = candidate
	}

	var text string
	if goquery.NodeName(data) == "ul" {
		text = renderList(data)
	} else {
		text = htmlutil.JoinedText(data, " ")
	}
	if strings.TrimSpace(text) == "" {
		return Field{State: FieldEmpty}
	}
	return OkField(text)
}

func findTitle(root *goquery.Selection, title string) *goquery.Selection {
	var found *goquery.Selection
	root.Find("p.class_detail_title").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if strings.TrimSpace(p.Text()) != title {
			return true
		}
		found = p
		return false
	})
	return found
}

// renderList joins the direct list items with " ; ". Links embedded in an
// item render as "<text> [<href>]" inside that item's text.
func renderList(list *goquery.Selection) string {
	var items []string
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		var parts []string
		li.Contents().Each(func(_ int, c *goquery.Selection) {
			name := goquery.NodeName(c)
			if name == "#comment" {
				return
			}

			text := strings.TrimSpace(c.Text())
			if name == "a" {
				href, _ := c.Attr("href")
				if href != "" {
					text = strings.TrimSpace(text + " [" + href + "]")
				}
			}
			if text != "" {
				parts = append(parts, text)
			}
		})

		item := strings.Join(parts, " ")
		if item != "" {
			items = append(items, item)
		}
	})
	return strings.Join(items, " ; ")
}
