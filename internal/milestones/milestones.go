// Package milestones holds the graduate academic-progress lookup tables:
// milestone descriptions and ordering, qualifying-exam statuses, and the
// form notices shown next to milestones that still need paperwork.
//
// The tables are built once on first use and never mutated afterwards, so
// every function here is safe for concurrent use.
package milestones

import (
	"sort"
	"strings"
	"sync"
)

const (
	// QEStatusCodePassed is the qualifying exam "passed" status code.
	QEStatusCodePassed = "P"
	// StatusCodeCompleted marks a milestone as done; no form notice applies.
	StatusCodeCompleted = "Y"

	QEStatusFailed          = "Failed"
	QEStatusPartiallyFailed = "Partially Failed"
	QEStatusPassed          = "Passed"

	QEApprovalMilestone = "AAGQEAPRV"
	QEResultsMilestone  = "AAGQERESLT"

	formRequired = "(Form Required)"
)

// Definition describes one milestone code.
type Definition struct {
	Code        string
	Description string
	Order       int
}

type registry struct {
	milestones        map[string]Definition
	statuses          map[string]string
	formNotifications map[string]string
}

var (
	once sync.Once
	reg  *registry
)

func tables() *registry {
	once.Do(func() {
		defs := []Definition{
			{Code: "AAGADVMAS1", Description: "Advancement to Candidacy (Thesis Plan)", Order: 2},
			{Code: "AAGADVMAS2", Description: "Advancement to Candidacy (Capstone Plan)", Order: 3},
			{Code: "AAGACADP1", Description: "Thesis File Date", Order: 5},
			{Code: QEApprovalMilestone, Description: "Approval for Qualifying Exam", Order: 1},
			{Code: QEResultsMilestone, Description: "Qualifying Exam Results", Order: 2},
			{Code: "AAGADVPHD", Description: "Advancement to Candidacy", Order: 3},
			{Code: "AAGDISSERT", Description: "Dissertation File Date", Order: 5},
			{Code: "AAGACADP2", Description: "Capstone", Order: 6},
		}
		r := &registry{
			milestones: make(map[string]Definition, len(defs)),
			statuses: map[string]string{
				"F":                 QEStatusFailed,
				"PF":                QEStatusPartiallyFailed,
				QEStatusCodePassed:  QEStatusPassed,
				"N":                 "Not Satisfied",
				StatusCodeCompleted: "Completed",
			},
			formNotifications: map[string]string{
				"AAGADVMAS1":        formRequired,
				QEApprovalMilestone: formRequired,
			},
		}
		for _, d := range defs {
			r.milestones[d.Code] = d
		}
		reg = r
	})
	return reg
}

// normalize trims and upper-cases code. ok is false for blank input.
func normalize(code string) (string, bool) {
	key := strings.ToUpper(strings.TrimSpace(code))
	return key, key != ""
}

// Lookup returns the full definition for a milestone code.
func Lookup(code string) (Definition, bool) {
	key, ok := normalize(code)
	if !ok {
		return Definition{}, false
	}
	d, ok := tables().milestones[key]
	return d, ok
}

// Describe returns the human-readable milestone name.
func Describe(code string) (string, bool) {
	d, ok := Lookup(code)
	return d.Description, ok
}

// OrderOf returns the display rank of a milestone.
func OrderOf(code string) (int, bool) {
	d, ok := Lookup(code)
	return d.Order, ok
}

// StatusOf returns the description of a milestone status code.
func StatusOf(statusCode string) (string, bool) {
	key, ok := normalize(statusCode)
	if !ok {
		return "", false
	}
	s, ok := tables().statuses[key]
	return s, ok
}

// FormNotificationOf returns the form notice for an incomplete milestone.
// Completed milestones (status "Y") never carry a notice.
func FormNotificationOf(code, statusCode string) (string, bool) {
	if status, _ := normalize(statusCode); status == StatusCodeCompleted {
		return "", false
	}
	key, ok := normalize(code)
	if !ok {
		return "", false
	}
	n, ok := tables().formNotifications[key]
	return n, ok
}

// All returns every milestone ordered by rank, then code.
func All() []Definition {
	m := tables().milestones
	out := make([]Definition, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Code < out[j].Code
	})
	return out
}
