package soc

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages map[string]string
	calls int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	f.calls++
	page, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("unreachable: %s", pageURL)
	}
	return page, nil
}

const detailPage = `
<html><body>
<template id="ucla-sa-soc-app">
	<div id="section">
		<p class="class_detail_title">Course Description</p>
		<p class="section_data">Covers <b>testing</b> of software systems.</p>
		<p class="class_detail_title">Class Description</p>
		<p class="section_data"></p>
		<p class="class_detail_title">General Education (GE)</p>
		<p class="section_data">Not a GE course.</p>
		<p class="class_detail_title">Diversity</p>
		<p class="section_data">Meets diversity requirement.</p>
		<p class="class_detail_title">Class Notes</p>
		<p class="section_data"></p>
		<ul>
			<li>Enrollment is restricted. <a href="/enroll">Enrollment page</a></li>
			<li>Bring a laptop.</li>
		</ul>
	</div>
</template>
</body></html>`

func TestParseSectionDetails(t *testing.T) {
	details, err := ParseSectionDetails(context.Background(), detailPage)
	require.NoError(t, err)

	require.Equal(t, "Covers testing of software systems.", details.CourseDescription.Render())
	require.Equal(t, "N/A (Empty)", details.ClassDescription.Render())
	require.Equal(t, "Not a GE course.", details.GeneralEducation.Render())
	// title not present on the page at all
	require.Equal(t, "N/A", details.WritingII.Render())
	require.Equal(t, "Meets diversity requirement.", details.Diversity.Render())
	require.Equal(
		t,
		"Enrollment is restricted. Enrollment page [/enroll] ; Bring a laptop.",
		details.ClassNotes.Render(),
	)
}

func TestParseSectionDetailsIdempotent(t *testing.T) {
	first, err := ParseSectionDetails(context.Background(), detailPage)
	require.NoError(t, err)
	second, err := ParseSectionDetails(context.Background(), detailPage)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("detail extraction is not idempotent (-first +second):\n%s", diff)
	}
}

func TestParseSectionDetailsClassNotesImmediateList(t *testing.T) {
	details, err := ParseSectionDetails(context.Background(), `
<div id="section">
	<p class="class_detail_title">Class Notes</p>
	<ul><li>First note.</li><li>Second note.</li></ul>
</div>`)
	require.NoError(t, err)
	require.Equal(t, "First note. ; Second note.", details.ClassNotes.Render())
}

func TestParseSectionDetailsClassNotesPlainParagraph(t *testing.T) {
	details, err := ParseSectionDetails(context.Background(), `
<div id="section">
	<p class="class_detail_title">Class Notes</p>
	<p class="section_data">Single paragraph note.</p>
</div>`)
	require.NoError(t, err)
	require.Equal(t, "Single paragraph note.", details.ClassNotes.Render())
}

func TestParseSectionDetailsEmptyTemplateFallsBack(t *testing.T) {
	details, err := ParseSectionDetails(context.Background(), `
<html><body>
<template id="ucla-sa-soc-app"></template>
<div id="section">
	<p class="class_detail_title">Course Description</p>
	<p class="section_data">Found outside the template.</p>
</div>
</body></html>`)
	require.NoError(t, err)
	require.Equal(t, "Found outside the template.", details.CourseDescription.Render())
}

func TestParseSectionDetailsNoContentRoot(t *testing.T) {
	details, err := ParseSectionDetails(context.Background(), `<html><body><p>nothing</p></body></html>`)
	require.NoError(t, err)
	require.Equal(t, "N/A", details.CourseDescription.Render())
	require.Equal(t, "N/A", details.ClassNotes.Render())
}

func TestFetchSectionDetailsNoURL(t *testing.T) {
	fetcher := &fakeFetcher{}
	details := FetchSectionDetails(context.Background(), fetcher, "")
	require.Equal(t, 0, fetcher.calls)
	require.Equal(t, "N/A (No URL provided)", details.CourseDescription.Render())
	require.Equal(t, "N/A", details.Diversity.Render())
}

func TestFetchSectionDetailsFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{}
	details := FetchSectionDetails(context.Background(), fetcher, "https://sa.ucla.edu/ro/ClassDetail?id=1")
	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, "N/A (Failed to fetch page content)", details.CourseDescription.Render())
	require.Equal(t, "N/A", details.ClassDescription.Render())
	require.Equal(t, "N/A", details.GeneralEducation.Render())
	require.Equal(t, "N/A", details.WritingII.Render())
	require.Equal(t, "N/A", details.Diversity.Render())
	require.Equal(t, "N/A", details.ClassNotes.Render())
}

func TestFetchSectionDetailsFromTemplate(t *testing.T) {
	url := "https://sa.ucla.edu/ro/ClassDetail?id=587990001"
	fetcher := &fakeFetcher{pages: map[string]string{url: detailPage}}

	details := FetchSectionDetails(context.Background(), fetcher, url)
	require.Equal(t, "Covers testing of software systems.", details.CourseDescription.Render())
}
