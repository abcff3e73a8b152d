package soc

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Origin is the schedule-of-classes host. Site-relative links scraped out of
// pages are absolutized against it.
const Origin = "https://sa.ucla.edu"

const socBase = Origin + "/ro/Public/SOC"

// ResultsURL is the search results shell page. With an empty term/subject it
// still serves the subject-area table embedded in its scripts.
func ResultsURL(term, subject string) string {
	query := url.Values{}
	if term != "" {
		query.Set("t", term)
	}
	if subject != "" {
		query.Set("sBy", "subject")
		query.Set("subj", subject)
	}
	if len(query) == 0 {
		return socBase + "/Results"
	}
	return socBase + "/Results?" + query.Encode()
}

// CourseTitlesURL is one page of the unfiltered course list for a subject.
func CourseTitlesURL(term, subject, subjectName string, page int) string {
	query := url.Values{}
	query.Set("search_by", "subject")
	query.Set("subj_area_cd", subject)
	query.Set("subj_area_name", subjectName)
	query.Set("t", term)
	query.Set("pageNumber", strconv.Itoa(page))
	return socBase + "/Results/CourseTitlesView?" + query.Encode()
}

// CourseSummaryURL requests the section summary rows for one course. The
// model literal scraped off the listing page is echoed back untouched; the
// portal rejects reserialized models whose key order changed.
func CourseSummaryURL(model json.RawMessage) string {
	query := url.Values{}
	query.Set("model", string(model))
	query.Set("FilterFlags", `{"enrollment_status":null,"advanced":null,"meet_days":null,"start_time":null,"end_time":null,"meet_locations":null,"meet_units":null,"instructor":null,"class_career":null,"impacted":null,"enrollment_restrictions":null,"enforced_requisites":null,"individual_studies":null,"summer_session":null}`)
	return socBase + "/Results/GetCourseSummary?" + query.Encode()
}

func BuildingListURL() string {
	return Origin + "/ro/ClassroomGridSearch/GetBuildingList"
}

func ClassroomDetailURL(term, building, room string) string {
	query := url.Values{}
	query.Set("t", term)
	query.Set("building", building)
	query.Set("room", room)
	return Origin + "/ro/ClassroomGridSearch/Detail?" + query.Encode()
}

// Absolutize prefixes site-relative paths with the portal origin. Absolute
// urls pass through untouched.
func Absolutize(href string) string {
	if strings.HasPrefix(href, "/") {
		return Origin + href
	}
	return href
}
