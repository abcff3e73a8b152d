package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// displayCourse prints one record to the terminal. Quiet records are a
// single title line; full records get the title followed by a key/value
// table of the section facts.
func displayCourse(out io.Writer, rec CourseRecord, details bool) {
	title := fmt.Sprintf("%s %s", rec.Subject, rec.Number)
	if rec.Name != "" {
		title += " - " + rec.Name
	}
	fmt.Fprintln(out, title)

	if !rec.HasData {
		return
	}

	r := rec.Record
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Section", r.SectionID},
		{"Link", r.SectionLink},
		{"Status", strings.Join(r.Status, " ")},
		{"Waitlist", r.Waitlist},
		{"Day", r.Day},
		{"Time", strings.Join(r.Time, " ")},
		{"Location", r.Location},
		{"Units", r.Units},
		{"Instructor", r.Instructor},
	})
	if details {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Course Description", r.Details.CourseDescription.Render()},
			{"Class Description", r.Details.ClassDescription.Render()},
			{"General Education", r.Details.GeneralEducation.Render()},
			{"Writing II", r.Details.WritingII.Render()},
			{"Diversity", r.Details.Diversity.Render()},
			{"Class Notes", r.Details.ClassNotes.Render()},
		})
	}
	t.Render()
}
