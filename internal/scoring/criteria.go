// Package scoring decides which criteria a session may rate and records scores,
// comments and the user-authored Other criterion into the draft.
package scoring

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// DefaultFallbackCriteria is offered when a service point has no catalog criteria.
var DefaultFallbackCriteria = []string{"Cleanliness", "Language Use", "Waiting Time", "Overall Impression"}

const OtherLabel = "Other"

type Kind int

const (
	KindCatalog Kind = iota
	KindCustom
)

// Criterion identifies a ratable entry. Catalog criteria are keyed by name;
// the custom entry has a single slot in the draft and needs no key.
type Criterion struct {
	Kind Kind
	Name string
}

func Catalog(name string) Criterion { return Criterion{Kind: KindCatalog, Name: name} }

func Custom() Criterion { return Criterion{Kind: KindCustom, Name: OtherLabel} }

func (c Criterion) IsCustom() bool { return c.Kind == KindCustom }

// ResolveCriteria returns the catalog criterion names of sp in display order,
// or fallback when sp has none. Titles spelling "other" are dropped since the
// custom entry always exists.
func ResolveCriteria(sp models.ServicePoint, fallback []string) []string {
	catalog := slices.Clone(sp.Criteria)
	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].DisplayOrder < catalog[j].DisplayOrder
	})

	names := make([]string, 0, len(catalog))
	for _, c := range catalog {
		title := strings.TrimSpace(c.Title)
		if title == "" || isOtherName(title) {
			continue
		}
		names = append(names, title)
	}
	if len(names) > 0 {
		return names
	}

	out := make([]string, 0, len(fallback))
	for _, name := range fallback {
		if !isOtherName(name) {
			out = append(out, name)
		}
	}
	return out
}

// CanAdvance reports whether every selected criterion carries a score in [1,5].
func CanAdvance(selected []string, scores map[string]int) bool {
	for _, name := range selected {
		if isOtherName(name) {
			continue
		}
		score, ok := scores[name]
		if !ok || !validScore(score) {
			return false
		}
	}
	return true
}

// Abbreviate shortens a custom label for tile display: five runes then "...".
func Abbreviate(label string) string {
	if utf8.RuneCountInString(label) <= 5 {
		return label
	}
	return string([]rune(label)[:5]) + "..."
}

func validScore(score int) bool { return score >= 1 && score <= 5 }

func isOtherName(name string) bool { return strings.EqualFold(strings.TrimSpace(name), OtherLabel) }
