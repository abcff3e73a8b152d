package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"uclasoc/lib/textutil"
)

var csvHeader = []string{
	"Subject",
	"Subject Name",
	"Number",
	"Name",
	"Section ID",
	"Section Link",
	"Status",
	"Waitlist",
	"Day",
	"Time",
	"Location",
	"Units",
	"Instructor",
	"Course Description",
	"Class Description Detail",
	"General Education GE",
	"Writing II Requirement",
	"Diversity Info",
	"Class Notes",
}

// WriteCSV exports one subject's records to <term>/<subject>.csv, creating
// the term directory as needed. Returns the written path.
func WriteCSV(term, subjectCode string, records []CourseRecord) (string, error) {
	dir := term
	if dir == "" {
		dir = "current"
	}
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", fmt.Errorf("create term directory: %w", err)
	}
	path := filepath.Join(dir, textutil.SanitizeFilename(subjectCode)+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write(csvHeader)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		err = w.Write(csvRow(rec))
		if err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

// csvRow flattens a record. Title-only records keep their section columns
// blank rather than carrying sentinel text.
func csvRow(rec CourseRecord) []string {
	row := []string{rec.Subject, rec.SubjectName, rec.Number, rec.Name}
	if !rec.HasData {
		for len(row) < len(csvHeader) {
			row = append(row, "")
		}
		return row
	}

	r := rec.Record
	return append(row,
		r.SectionID,
		r.SectionLink,
		strings.Join(r.Status, " "),
		r.Waitlist,
		r.Day,
		strings.Join(r.Time, " "),
		r.Location,
		r.Units,
		r.Instructor,
		r.Details.CourseDescription.Render(),
		r.Details.ClassDescription.Render(),
		r.Details.GeneralEducation.Render(),
		r.Details.WritingII.Render(),
		r.Details.Diversity.Render(),
		r.Details.ClassNotes.Render(),
	)
}
