package soc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"uclasoc/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// The listing page registers each course through a script call shaped
// AddToCourseData(<json string>, <json object>). The first literal is the
// page-local course id, the second the opaque course model.
var addToCourseDataRegex = regexp.MustCompile(`AddToCourseData\((.*),({.*})\)`)

// ExtractCourseModels pulls every registered course off a listing page in
// document order. A script whose literals fail to match or parse is logged
// and skipped; one malformed course must not block the rest of the page.
func ExtractCourseModels(ctx context.Context, doc *goquery.Document) []CourseModel {
	ctx, span := tracer.Start(ctx, "ExtractCourseModels")
	defer span.End()

	var models []CourseModel
	for _, script := range doc.Find("script").Nodes {
		text := htmlutil.GetText(script)
		if !strings.Contains(text, "addCourse") {
			continue
		}

		groups := addToCourseDataRegex.FindStringSubmatch(text)
		if len(groups) < 3 {
			slog.WarnContext(ctx, "addCourse script did not match AddToCourseData pattern")
			continue
		}

		var courseID string
		err := json.Unmarshal([]byte(groups[1]), &courseID)
		if err != nil {
			slog.WarnContext(ctx, "skipping course with malformed id literal", "err", err)
			continue
		}
		var model map[string]any
		err = json.Unmarshal([]byte(groups[2]), &model)
		if err != nil {
			slog.WarnContext(ctx, "skipping course with malformed model literal", "course_id", courseID, "err", err)
			continue
		}

		classID, _ := model["classId"].(string)
		models = append(models, CourseModel{
			CourseID: courseID,
			ClassID:  classID,
			Raw:      json.RawMessage(groups[2]),
		})
	}

	span.SetAttributes(attribute.Int("courses", len(models)))
	return models
}

// CourseTitle locates a course's title element by the page-local course id
// and splits it into number and name on the first " - ". A title with no
// separator comes back whole as the number.
func CourseTitle(doc *goquery.Document, courseID string) (number, name string, ok bool) {
	sel := doc.Find(fmt.Sprintf("[id=%q]", courseID+"-title"))
	title := htmlutil.FirstTextFragment(sel)
	if title == "" {
		return "", "", false
	}

	parts := strings.SplitN(title, " - ", 2)
	if len(parts) < 2 {
		return title, "", true
	}
	return parts[0], parts[1], true
}

// IsLastPage reports whether a listing page carries the paging widget's
// last-page marker. A page with zero registered courses also ends paging;
// this only saves the extra fetch.
func IsLastPage(doc *goquery.Document) bool {
	return doc.Find("#lastPage_button").Length() > 0
}
