// Package terms models academic terms and the term filters passed to
// catalog queries.
package terms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownSeason is returned for term codes other than B, C and D.
var ErrUnknownSeason = errors.New("unknown term season")

var (
	seasonDigits = map[string]string{"B": "2", "C": "5", "D": "8"}
	seasonNames  = map[string]string{"B": "spring", "C": "summer", "D": "fall"}
)

// Term is one academic term as published in the term definitions.
type Term struct {
	Year        int       `yaml:"term_yr"`
	Code        string    `yaml:"term_cd"`
	Name        string    `yaml:"term_name"`
	Status      string    `yaml:"term_status"`
	StatusDesc  string    `yaml:"term_status_desc"`
	CurrentFlag string    `yaml:"current_tb_term_flag"`
	Start       time.Time `yaml:"term_start_date"`
	End         time.Time `yaml:"term_end_date"`
}

// CampusSolutionsID returns the four digit SIS term id, e.g. "2178" for
// Fall 2017. It returns "" when the term code is not a known season.
func (t Term) CampusSolutionsID() string {
	digit, ok := seasonDigits[strings.ToUpper(strings.TrimSpace(t.Code))]
	if !ok || t.Year < 1900 {
		return ""
	}
	return fmt.Sprintf("2%02d%s", t.Year%100, digit)
}

// Slug returns the campus key such as "fall-2017".
func (t Term) Slug() string {
	name, ok := seasonNames[strings.ToUpper(strings.TrimSpace(t.Code))]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s-%d", name, t.Year)
}

// Contains reports whether at falls within the term dates. End is a calendar
// date, so the whole last day counts.
func (t Term) Contains(at time.Time) bool {
	return !at.Before(t.Start) && at.Before(t.End.AddDate(0, 0, 1))
}

// ParseCampusSolutionsID splits a SIS term id into year and term code.
// Years are assumed to fall in 2000-2099.
func ParseCampusSolutionsID(id string) (int, string, error) {
	id = strings.TrimSpace(id)
	if len(id) != 4 || id[0] != '2' {
		return 0, "", fmt.Errorf("invalid term id %q", id)
	}
	yy, err := strconv.Atoi(id[1:3])
	if err != nil {
		return 0, "", fmt.Errorf("invalid term id %q: %w", id, err)
	}
	for code, digit := range seasonDigits {
		if id[3:] == digit {
			return 2000 + yy, code, nil
		}
	}
	return 0, "", fmt.Errorf("term id %q: %w", id, ErrUnknownSeason)
}

// Filter constrains catalog queries to a set of terms. A nil or empty Filter
// means "no term constraint".
type Filter []Term

// Empty reports whether the filter imposes no constraint.
func (f Filter) Empty() bool {
	return len(f) == 0
}

// IDs returns the Campus Solutions ids in filter order.
func (f Filter) IDs() []string {
	ids := make([]string, 0, len(f))
	for _, t := range f {
		ids = append(ids, t.CampusSolutionsID())
	}
	return ids
}

// Catalog is an immutable set of terms ordered by term id.
type Catalog struct {
	terms  []Term
	bySlug map[string]Term
	byID   map[string]Term
}

// NewCatalog indexes ts. Terms with an unknown season are rejected.
func NewCatalog(ts []Term) (*Catalog, error) {
	c := &Catalog{
		terms:  make([]Term, 0, len(ts)),
		bySlug: make(map[string]Term, len(ts)),
		byID:   make(map[string]Term, len(ts)),
	}
	for _, t := range ts {
		id := t.CampusSolutionsID()
		if id == "" {
			return nil, fmt.Errorf("term %d/%q: %w", t.Year, t.Code, ErrUnknownSeason)
		}
		t.Code = strings.ToUpper(strings.TrimSpace(t.Code))
		c.terms = append(c.terms, t)
		c.bySlug[t.Slug()] = t
		c.byID[id] = t
	}
	sort.SliceStable(c.terms, func(i, j int) bool {
		return c.terms[i].CampusSolutionsID() < c.terms[j].CampusSolutionsID()
	})
	return c, nil
}

// Campus looks a term up by slug, e.g. "spring-2018".
func (c *Catalog) Campus(slug string) (Term, bool) {
	t, ok := c.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	return t, ok
}

// ByID looks a term up by Campus Solutions id.
func (c *Catalog) ByID(id string) (Term, bool) {
	t, ok := c.byID[strings.TrimSpace(id)]
	return t, ok
}

// All returns the terms in chronological order.
func (c *Catalog) All() []Term {
	out := make([]Term, len(c.terms))
	copy(out, c.terms)
	return out
}

// Current returns the term containing now, or else the next term to start.
func (c *Catalog) Current(now time.Time) (Term, bool) {
	for _, t := range c.terms {
		if t.Contains(now) {
			return t, true
		}
	}
	for _, t := range c.terms {
		if t.Start.After(now) {
			return t, true
		}
	}
	return Term{}, false
}

// Filter resolves slugs into a Filter, failing on the first unknown slug.
func (c *Catalog) Filter(slugs ...string) (Filter, error) {
	f := make(Filter, 0, len(slugs))
	for _, s := range slugs {
		t, ok := c.Campus(s)
		if !ok {
			return nil, fmt.Errorf("unknown term %q", s)
		}
		f = append(f, t)
	}
	return f, nil
}
