package soc

import "encoding/json"

// CourseModel is one course discovered on a course-titles listing page. The
// portal registers each course through an embedded AddToCourseData script
// call; CourseID is the page-local id used to locate the course's title
// element and Raw is the untouched model literal, echoed back verbatim when
// requesting the course's summary.
type CourseModel struct {
	CourseID string
	// ClassID joins the course onto the page's section link index.
	// May be empty.
	ClassID string
	Raw     json.RawMessage
}

// SectionLinkEntry is one (section label, detail url) pair from a listing
// page's section containers, keyed by class id. SectionLink is always an
// absolute url.
type SectionLinkEntry struct {
	SectionID   string
	SectionLink string
}

// SectionRecord is the per-section fact sheet assembled from the summary
// page, the link index and the detail page. An empty SectionID/SectionLink
// means "absent"; the reconciler may fill them from the link index.
type SectionRecord struct {
	ClassID     string
	Status      []string
	Waitlist    string
	Day         string
	Time        []string
	Location    string
	Units       string
	Instructor  string
	SectionID   string
	SectionLink string
	Details     SectionDetails
}

// SectionDetails holds the six long-form supplementary fields from a
// section's detail page.
type SectionDetails struct {
	CourseDescription Field
	ClassDescription  Field
	GeneralEducation  Field
	WritingII         Field
	Diversity         Field
	ClassNotes        Field
}
