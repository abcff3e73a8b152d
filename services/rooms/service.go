package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"uclasoc/lib/scrapers/soc"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/rooms")

type Building struct {
	Code  string
	Label string
}

// CalendarSlot is one scheduled block on a classroom's weekly grid.
type CalendarSlot struct {
	// field names follow the page's embedded json
	StartTime string `json:"strt_time"`
	StopTime  string `json:"stop_time"`
	Title     string `json:"title"`
}

type Service struct {
	fetcher soc.PageFetcher
}

func NewService(fetcher soc.PageFetcher) Service {
	return Service{fetcher: fetcher}
}

// Buildings fetches and prints the campus building table.
func (s Service) Buildings(ctx context.Context, out io.Writer) error {
	ctx, span := tracer.Start(ctx, "rooms:Buildings")
	defer span.End()

	text, err := s.fetcher.FetchPage(ctx, soc.BuildingListURL())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch building list")
		return fmt.Errorf("fetch building list: %w", err)
	}

	buildings, err := ExtractBuildings(text)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("buildings", len(buildings)))

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Code", "Building"})
	for _, b := range buildings {
		t.AppendRow(table.Row{b.Code, b.Label})
	}
	t.Render()
	return nil
}

// Room fetches and prints one classroom's schedule for a term.
func (s Service) Room(ctx context.Context, out io.Writer, term, building, room string) error {
	ctx, span := tracer.Start(ctx, "rooms:Room")
	defer span.End()
	span.SetAttributes(
		attribute.String("term", term),
		attribute.String("building", building),
		attribute.String("room", room),
	)

	text, err := s.fetcher.FetchPage(ctx, soc.ClassroomDetailURL(term, building, room))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch classroom detail")
		return fmt.Errorf("fetch classroom detail: %w", err)
	}

	slots, err := ExtractCalendar(text)
	if err != nil {
		span.RecordError(err)
		return err
	}
	for _, slot := range slots {
		fmt.Fprintf(out, "%s-%s %s\n", slot.StartTime, slot.StopTime, slot.Title)
	}
	return nil
}

// ExtractBuildings reads the building picker options off the grid search page.
func ExtractBuildings(pageText string) ([]Building, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return nil, err
	}

	var buildings []Building
	doc.Find("#Building_options option").Each(func(_ int, opt *goquery.Selection) {
		label := strings.TrimSpace(opt.Text())
		code, _ := opt.Attr("value")
		if label == "" && code == "" {
			return
		}
		buildings = append(buildings, Building{Code: code, Label: label})
	})
	return buildings, nil
}

// The classroom grid embeds its schedule as a calendarData script literal.
var calendarDataRegex = regexp.MustCompile(`calendarData\s*=\s*(\[.*\])`)

func ExtractCalendar(pageText string) ([]CalendarSlot, error) {
	groups := calendarDataRegex.FindStringSubmatch(pageText)
	if len(groups) < 2 {
		return nil, fmt.Errorf("calendar data literal not found on classroom page")
	}

	var slots []CalendarSlot
	err := json.Unmarshal([]byte(groups[1]), &slots)
	if err != nil {
		return nil, fmt.Errorf("decode calendar data: %w", err)
	}
	return slots, nil
}
