package soc

import (
	"context"
	"log/slog"
	"strings"
	"uclasoc/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// ExtractSectionLinks builds a class id -> section link map from a listing
// page's cls-section containers. Container ids look like
// "587992201_COMSCI0599-section"; the part before the first underscore is
// the class id. Containers with malformed ids or no narrow-title anchor are
// skipped.
func ExtractSectionLinks(ctx context.Context, doc *goquery.Document) map[string]SectionLinkEntry {
	ctx, span := tracer.Start(ctx, "ExtractSectionLinks")
	defer span.End()

	links := map[string]SectionLinkEntry{}
	doc.Find(".cls-section").Each(func(_ int, div *goquery.Selection) {
		divID, ok := div.Attr("id")
		if !ok || divID == "" {
			return
		}
		parts := strings.Split(divID, "_")
		if len(parts) < 2 {
			return
		}
		classID := parts[0]

		anchor, ok := htmlutil.FirstAnchor(div.Find("p.hide-small").First())
		if !ok {
			return
		}

		// last write wins on a repeated class id. This mirrors the
		// portal's observed behavior; it may well be a bug on their
		// side, so at least leave a trace.
		_, dup := links[classID]
		if dup {
			slog.WarnContext(ctx, "duplicate class id in section index, keeping last", "class_id", classID)
		}
		links[classID] = SectionLinkEntry{
			SectionID:   anchor.Name,
			SectionLink: Absolutize(anchor.Href),
		}
	})

	span.SetAttributes(attribute.Int("sections", len(links)))
	return links
}
