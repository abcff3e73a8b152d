package soc

// FieldState tags the outcome of extracting a single detail field.
// Extraction logic carries the tag; the sentinel strings the portal's
// consumers expect are produced only at the output boundary by Render.
type FieldState int

const (
	// FieldMissing means the field's title was not found on the page.
	FieldMissing FieldState = iota
	FieldOk
	// FieldEmpty means the title was found but its data was blank.
	FieldEmpty
	// FieldNoURL means no detail fetch was attempted, there was no link.
	FieldNoURL
	// FieldFetchFailed means the detail fetch was attempted and the
	// transport gave up.
	FieldFetchFailed
)

type Field struct {
	State FieldState
	Value string
}

func OkField(value string) Field {
	return Field{State: FieldOk, Value: value}
}

// Render produces the exact sentinel vocabulary consumers depend on.
func (f Field) Render() string {
	switch f.State {
	case FieldOk:
		return f.Value
	case FieldEmpty:
		return "N/A (Empty)"
	case FieldNoURL:
		return "N/A (No URL provided)"
	case FieldFetchFailed:
		return "N/A (Failed to fetch page content)"
	default:
		return "N/A"
	}
}

// MissingDetails is the all-absent detail set, used when the content root
// cannot be located at all.
func MissingDetails() SectionDetails {
	return SectionDetails{}
}

// NoURLDetails marks a section whose details were never fetched because it
// carries no detail link. Only the course description gets the specific
// sentinel; the rest stay plain absent.
func NoURLDetails() SectionDetails {
	d := MissingDetails()
	d.CourseDescription = Field{State: FieldNoURL}
	return d
}

// FetchFailedDetails marks a section whose detail fetch exhausted its
// retries.
func FetchFailedDetails() SectionDetails {
	d := MissingDetails()
	d.CourseDescription = Field{State: FieldFetchFailed}
	return d
}
