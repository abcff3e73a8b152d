package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"uclasoc/lib/scrapers/soc"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/catalog")

// Service reconciles the three schedule-of-classes page types into one
// record set per course: listing pages feed the course models and the
// section link index, summary pages feed the per-section rows, and detail
// pages feed the long-form supplementary text.
type Service struct {
	fetcher soc.PageFetcher
}

func NewService(fetcher soc.PageFetcher) Service {
	return Service{fetcher: fetcher}
}

// Course numbers containing these substrings fan out into sections that all
// share one set of supplementary detail fields, authoritative on the first
// section only. A plain substring test, so "1599A" false-positives; that
// matches the portal's own behavior.
var specialCourseNumbers = []string{"299", "596", "597", "598", "599"}

func isSpecialCourse(number string) bool {
	for _, special := range specialCourseNumbers {
		if strings.Contains(number, special) {
			return true
		}
	}
	return false
}

type SubjectOptions struct {
	Term    string
	Subject string
	// Details false suppresses all summary and detail fetches; only
	// course titles are listed.
	Details  bool
	Mode     Mode
	CSV      bool
	QuietCSV bool
	// Out receives terminal output. Defaults to os.Stdout; diagnostics
	// go through slog instead.
	Out io.Writer
}

// CourseRecord is one finished per-section output row.
type CourseRecord struct {
	Subject     string
	SubjectName string
	Number      string
	Name        string
	// HasData is false in quiet mode, where no section facts were
	// fetched for the course.
	HasData bool
	Record  soc.SectionRecord
}

// Subject runs the full pipeline for one subject area in one term.
func (s Service) Subject(ctx context.Context, opts SubjectOptions) error {
	ctx, span := tracer.Start(ctx, "catalog:Subject")
	defer span.End()
	span.SetAttributes(
		attribute.String("term", opts.Term),
		attribute.String("subject", opts.Subject),
	)

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	// the only fatal fetch: without the subject table nothing can run
	text, err := s.fetcher.FetchPage(ctx, soc.ResultsURL("", ""))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch results shell page")
		return fmt.Errorf("fetch results page: %w", err)
	}
	table, err := ParseSubjectTable(text)
	if err != nil {
		span.RecordError(err)
		return err
	}
	subject, err := table.Lookup(opts.Subject)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "resolved subject area", "code", subject.Code, "name", subject.Name)

	filters := s.subjectFilters(ctx, opts.Term, subject.Code)

	var all []CourseRecord
	missingLinks := 0

	page := 1
	for {
		listing, err := s.fetcher.FetchPage(ctx, soc.CourseTitlesURL(opts.Term, subject.Code, subject.Name, page))
		if err != nil {
			slog.WarnContext(ctx, "listing page fetch failed, stopping pagination", "page", page, "err", err)
			break
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(listing))
		if err != nil {
			slog.WarnContext(ctx, "listing page did not parse, stopping pagination", "page", page, "err", err)
			break
		}

		links := soc.ExtractSectionLinks(ctx, doc)
		models := soc.ExtractCourseModels(ctx, doc)
		if len(models) == 0 {
			break
		}

		for _, model := range models {
			number, name, ok := soc.CourseTitle(doc, model.CourseID)
			if !ok {
				slog.WarnContext(ctx, "course title element missing, skipping course", "course_id", model.CourseID)
				continue
			}

			records := s.course(ctx, courseContext{
				model:   model,
				number:  number,
				links:   links,
				filters: filters,
				opts:    opts,
			}, &missingLinks)

			for _, rec := range records {
				rec.Subject = subject.Code
				rec.SubjectName = subject.Name
				rec.Number = number
				rec.Name = name

				if !(opts.CSV && opts.QuietCSV) {
					displayCourse(opts.Out, rec, opts.Details)
				}
				if opts.CSV {
					all = append(all, rec)
				}
			}
		}

		if soc.IsLastPage(doc) {
			break
		}
		page++
	}

	if missingLinks > 0 {
		slog.WarnContext(ctx, "sections missing a section link", "count", missingLinks)
	}
	span.SetAttributes(attribute.Int("missing_section_links", missingLinks))

	if opts.CSV && len(all) > 0 {
		path, err := WriteCSV(opts.Term, subject.Code, all)
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		slog.InfoContext(ctx, "courses exported", "path", path, "rows", len(all))
	}
	return nil
}

// subjectFilters fetches the subject's filtered results page for its option
// tables. Losing it only degrades cleaning, never the run.
func (s Service) subjectFilters(ctx context.Context, term, subjectCode string) Filters {
	text, err := s.fetcher.FetchPage(ctx, soc.ResultsURL(term, subjectCode))
	if err != nil {
		slog.WarnContext(ctx, "filter page fetch failed, cleaning without filters", "err", err)
		return Filters{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		slog.WarnContext(ctx, "filter page did not parse, cleaning without filters", "err", err)
		return Filters{}
	}
	return ExtractFilters(doc)
}

type courseContext struct {
	model   soc.CourseModel
	number  string
	links   map[string]soc.SectionLinkEntry
	filters Filters
	opts    SubjectOptions
}

// course produces the finished record set for one course. In quiet mode it
// is a single title-only record; otherwise one reconciled record per
// section row.
func (s Service) course(ctx context.Context, cc courseContext, missingLinks *int) []CourseRecord {
	ctx, span := tracer.Start(ctx, "catalog:course")
	defer span.End()
	span.SetAttributes(attribute.String("number", cc.number))

	if !cc.opts.Details {
		return []CourseRecord{{}}
	}

	rows := s.summaryRows(ctx, cc.model)

	special := isSpecialCourse(cc.number)
	// shared supplementary text for special courses, authoritative on
	// the first section; scoped to this course only
	var shared *soc.SectionDetails

	out := make([]CourseRecord, 0, len(rows))
	for i := range rows {
		row := rows[i]

		// link-index fallback fills identifiers only when the row
		// carries none of its own
		key := row.ClassID
		if key == "" {
			key = cc.model.ClassID
		}
		entry, ok := cc.links[key]
		if ok {
			if row.SectionID == "" {
				row.SectionID = entry.SectionID
			}
			if row.SectionLink == "" {
				row.SectionLink = entry.SectionLink
			}
		}

		if row.SectionLink == "" {
			*missingLinks++
			slog.WarnContext(ctx, "section link missing", "course", cc.number, "row", i)
		}

		switch {
		case special:
			if shared == nil {
				details := soc.FetchSectionDetails(ctx, s.fetcher, row.SectionLink)
				shared = &details
			}
			row.Details = *shared
		case row.SectionLink != "":
			row.Details = soc.FetchSectionDetails(ctx, s.fetcher, row.SectionLink)
		default:
			row.Details = soc.NoURLDetails()
		}

		pre := row
		cleaned := CleanRecord(row, cc.filters, cc.opts.Mode)
		restoreAuthoritative(&cleaned, pre)

		out = append(out, CourseRecord{HasData: true, Record: cleaned})
	}
	return out
}

// summaryRows fetches and extracts a course's section rows. Exhausted
// retries degrade to a single connection-error row; a page that does not
// parse degrades to an extraction-error row.
func (s Service) summaryRows(ctx context.Context, model soc.CourseModel) []soc.SectionRecord {
	text, err := s.fetcher.FetchPage(ctx, soc.CourseSummaryURL(model.Raw))
	if err != nil {
		slog.WarnContext(ctx, "course summary fetch failed", "course_id", model.CourseID, "err", err)
		return []soc.SectionRecord{unknownRow("Unknown - Connection Error")}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		slog.WarnContext(ctx, "course summary did not parse", "course_id", model.CourseID, "err", err)
		return []soc.SectionRecord{unknownRow("Unknown - Extraction Error")}
	}
	return soc.ExtractSections(ctx, doc)
}

func unknownRow(status string) soc.SectionRecord {
	return soc.SectionRecord{
		Status:     []string{status},
		Waitlist:   "Unknown",
		Day:        "Unknown",
		Time:       []string{"Unknown"},
		Location:   "Unknown",
		Units:      "Unknown",
		Instructor: "Unknown",
	}
}

// restoreAuthoritative re-asserts identifying and detail fields that
// cleaning dropped. A populated section id or link must never be replaced
// with an emptier value.
func restoreAuthoritative(cleaned *soc.SectionRecord, pre soc.SectionRecord) {
	cleaned.ClassID = pre.ClassID
	if cleaned.SectionID == "" {
		cleaned.SectionID = pre.SectionID
	}
	if cleaned.SectionLink == "" {
		cleaned.SectionLink = pre.SectionLink
	}
	restoreField(&cleaned.Details.CourseDescription, pre.Details.CourseDescription)
	restoreField(&cleaned.Details.ClassDescription, pre.Details.ClassDescription)
	restoreField(&cleaned.Details.GeneralEducation, pre.Details.GeneralEducation)
	restoreField(&cleaned.Details.WritingII, pre.Details.WritingII)
	restoreField(&cleaned.Details.Diversity, pre.Details.Diversity)
	restoreField(&cleaned.Details.ClassNotes, pre.Details.ClassNotes)
}

func restoreField(cleaned *soc.Field, pre soc.Field) {
	lost := cleaned.State == soc.FieldMissing && cleaned.Value == ""
	had := pre.State != soc.FieldMissing || pre.Value != ""
	if lost && had {
		*cleaned = pre
	}
}
