package catalog

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"uclasoc/lib/textutil"

	"github.com/antzucaro/matchr"
)

// The results shell page registers the subject-area picker through a script
// call whose first argument is an html-escaped JSON array of
// {value, label} pairs.
var searchPanelRegex = regexp.MustCompile(`SearchPanelSetup\('(\[.*\])'`)

type Subject struct {
	Code string `json:"value"`
	Name string `json:"label"`
}

// SubjectTable resolves user-supplied subject areas ("com sci", "COM SCI",
// "ComSci") to the portal's canonical code and display name.
type SubjectTable struct {
	byKey    map[string]Subject
	subjects []Subject
}

func ParseSubjectTable(pageText string) (SubjectTable, error) {
	groups := searchPanelRegex.FindStringSubmatch(pageText)
	if len(groups) < 2 {
		return SubjectTable{}, fmt.Errorf("subject table literal not found on results page")
	}

	var subjects []Subject
	err := json.Unmarshal([]byte(html.UnescapeString(groups[1])), &subjects)
	if err != nil {
		return SubjectTable{}, fmt.Errorf("decode subject table: %w", err)
	}

	byKey := make(map[string]Subject, len(subjects))
	for _, s := range subjects {
		byKey[textutil.NormalizeSubject(s.Code)] = s
	}
	return SubjectTable{byKey: byKey, subjects: subjects}, nil
}

func (t SubjectTable) Len() int {
	return len(t.subjects)
}

// Lookup resolves a subject area, suggesting the closest known codes when
// the input matches nothing.
func (t SubjectTable) Lookup(subject string) (Subject, error) {
	s, ok := t.byKey[textutil.NormalizeSubject(subject)]
	if ok {
		return s, nil
	}

	suggestions := t.closest(subject, 3)
	if len(suggestions) == 0 {
		return Subject{}, fmt.Errorf("unknown subject area %q", subject)
	}
	return Subject{}, fmt.Errorf(
		"unknown subject area %q, did you mean: %s",
		subject,
		strings.Join(suggestions, ", "),
	)
}

func (t SubjectTable) closest(subject string, n int) []string {
	key := textutil.NormalizeSubject(subject)

	type scored struct {
		code       string
		similarity float64
	}
	ranked := make([]scored, 0, len(t.subjects))
	for _, s := range t.subjects {
		sim := matchr.JaroWinkler(key, textutil.NormalizeSubject(s.Code), false)
		nameSim := matchr.JaroWinkler(key, textutil.NormalizeSubject(s.Name), false)
		if nameSim > sim {
			sim = nameSim
		}
		ranked = append(ranked, scored{code: s.Code, similarity: sim})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	var out []string
	for _, r := range ranked {
		if len(out) == n || r.similarity < 0.6 {
			break
		}
		out = append(out, r.code)
	}
	return out
}
