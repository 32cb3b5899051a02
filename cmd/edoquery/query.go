package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"edoquery/internal/edo"
	"edoquery/internal/terms"
	"edoquery/pkg/db"
)

// params are the query command flags. filter is resolved from termSlugs.
type params struct {
	uid        string
	studentID  string
	personID   string
	termID     string
	career     string
	course     string
	search     string
	desigCode  string
	sectionIDs []string
	careers    []string
	termSlugs  []string
	filter     terms.Filter
}

func (p params) value(flag string) string {
	switch flag {
	case "uid":
		return p.uid
	case "student-id":
		return p.studentID
	case "person-id":
		return p.personID
	case "term-id":
		return p.termID
	case "career":
		return p.career
	case "course":
		return p.course
	case "search":
		return p.search
	case "desig":
		return p.desigCode
	case "section":
		return strings.Join(p.sectionIDs, ",")
	case "careers":
		return strings.Join(p.careers, ",")
	default:
		return ""
	}
}

type operation struct {
	requires []string
	run      func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error)
}

func one(row db.Row, ok bool, err error) ([]db.Row, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return []db.Row{}, nil
	}
	return []db.Row{row}, nil
}

func boolRow(name string, v bool, err error) ([]db.Row, error) {
	if err != nil {
		return nil, err
	}
	return []db.Row{{name: v}}, nil
}

func firstSection(p params) string {
	if len(p.sectionIDs) == 0 {
		return ""
	}
	return p.sectionIDs[0]
}

var operations = map[string]operation{
	"term-unit-totals": {
		requires: []string{"uid", "careers", "term-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return one(q.TermUnitTotals(ctx, p.uid, p.careers, p.termID))
		},
	},
	"term-law-unit-totals": {
		requires: []string{"uid", "careers", "term-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return one(q.TermLawUnitTotals(ctx, p.uid, p.careers, p.termID))
		},
	},
	"careers": {
		requires: []string{"uid"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.Careers(ctx, p.uid)
		},
	},
	"enrolled-sections": {
		requires: []string{"uid"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.EnrolledSections(ctx, p.uid, p.filter)
		},
	},
	"instructing-sections": {
		requires: []string{"uid"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.InstructingSections(ctx, p.uid, p.filter)
		},
	},
	"section-final-exams": {
		requires: []string{"term-id", "section"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.SectionFinalExams(ctx, p.termID, firstSection(p))
		},
	},
	"law-enrollment": {
		requires: []string{"uid", "career", "term-id", "section", "desig"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return one(q.LawEnrollment(ctx, p.uid, p.career, p.termID, firstSection(p), p.desigCode))
		},
	},
	"concurrent-student-status": {
		requires: []string{"student-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return one(q.ConcurrentStudentStatus(ctx, p.studentID))
		},
	},
	"transfer-credit": {
		requires: []string{"uid"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.TransferCreditDetailed(ctx, p.uid)
		},
	},
	"associated-secondary-sections": {
		requires: []string{"term-id", "section"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.AssociatedSecondarySections(ctx, p.termID, firstSection(p))
		},
	},
	"section-meetings": {
		requires: []string{"term-id", "section"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.SectionMeetings(ctx, p.termID, firstSection(p))
		},
	},
	"section-instructors": {
		requires: []string{"term-id", "section"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.SectionInstructors(ctx, p.termID, firstSection(p))
		},
	},
	"cross-listed-course-title": {
		requires: []string{"course"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return one(q.CrossListedCourseTitle(ctx, p.course))
		},
	},
	"subject-areas": {
		run: func(ctx context.Context, q *edo.Queries, _ params) ([]db.Row, error) {
			return q.SubjectAreas(ctx)
		},
	},
	"enrolled-students": {
		requires: []string{"section", "term-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.EnrolledStudents(ctx, firstSection(p), p.termID)
		},
	},
	"rosters": {
		requires: []string{"section", "term-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.Rosters(ctx, p.sectionIDs, p.termID)
		},
	},
	"sections": {
		requires: []string{"term-id", "section"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.SectionsByIDs(ctx, p.termID, p.sectionIDs)
		},
	},
	"instructing-legacy-terms": {
		requires: []string{"person-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.InstructingLegacyTerms(ctx, p.personID)
		},
	},
	"has-instructor-history": {
		requires: []string{"uid"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			has, err := q.HasInstructorHistory(ctx, p.uid, p.filter)
			return boolRow("has_instructor_history", has, err)
		},
	},
	"has-student-history": {
		requires: []string{"uid"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			has, err := q.HasStudentHistory(ctx, p.uid, p.filter)
			return boolRow("has_student_history", has, err)
		},
	},
	"grading-dates": {
		run: func(ctx context.Context, q *edo.Queries, _ params) ([]db.Row, error) {
			return q.GradingDates(ctx)
		},
	},
	"section-reserved-capacity": {
		requires: []string{"term-id", "section"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.SectionReservedCapacityCount(ctx, p.termID, firstSection(p))
		},
	},
	"student-term-cpp": {
		requires: []string{"student-id"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.StudentTermCPP(ctx, p.studentID)
		},
	},
	"search-students": {
		requires: []string{"search"},
		run: func(ctx context.Context, q *edo.Queries, p params) ([]db.Row, error) {
			return q.SearchStudents(ctx, p.search)
		},
	},
	"terms": {
		run: func(ctx context.Context, q *edo.Queries, _ params) ([]db.Row, error) {
			return q.Terms(ctx)
		},
	},
}

func operationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupOperation(name string, p params) (operation, error) {
	op, ok := operations[name]
	if !ok {
		return operation{}, fmt.Errorf("unknown operation %q (one of: %s)", name, strings.Join(operationNames(), ", "))
	}
	for _, f := range op.requires {
		if strings.TrimSpace(p.value(f)) == "" {
			return operation{}, fmt.Errorf("operation %s requires --%s", name, f)
		}
	}
	return op, nil
}

func newQueryCmd(a *app) *cobra.Command {
	var p params

	cmd := &cobra.Command{
		Use:   "query <operation>",
		Short: "Run a catalog query",
		Long:  "Run a catalog query. Operations: " + strings.Join(operationNames(), ", "),
		Example: `  # Fall 2017 enrollments of one student
  edoquery query enrolled-sections --uid 61889 --terms fall-2017

  # Rosters for two sections as JSON
  edoquery query rosters --term-id 2178 --section 31001 --section 31002 -o json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: operationNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := lookupOperation(args[0], p)
			if err != nil {
				return err
			}

			if p.termID != "" {
				if _, _, err := terms.ParseCampusSolutionsID(p.termID); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if len(p.termSlugs) > 0 {
				catalog, err := a.Terms(ctx)
				if err != nil {
					return err
				}
				if p.filter, err = catalog.Filter(p.termSlugs...); err != nil {
					return err
				}
			}

			q, err := a.Queries()
			if err != nil {
				return err
			}
			rows, err := op.run(ctx, q, p)
			if err != nil {
				return err
			}
			return renderRows(cmd.OutOrStdout(), rows, a.format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.uid, "uid", "", "Campus uid")
	f.StringVar(&p.studentID, "student-id", "", "SIS student id")
	f.StringVar(&p.personID, "person-id", "", "Instructor id")
	f.StringVar(&p.termID, "term-id", "", "SIS term id, e.g. 2178")
	f.StringVar(&p.career, "career", "", "Academic career, e.g. LAW")
	f.StringVar(&p.course, "course", "", "Course display name, e.g. \"AMERSTD 102\"")
	f.StringVar(&p.search, "search", "", "Student search text")
	f.StringVar(&p.desigCode, "desig", "", "Requirement designation code")
	f.StringSliceVar(&p.sectionIDs, "section", nil, "Class section id (repeatable)")
	f.StringSliceVar(&p.careers, "careers", nil, "Academic careers (repeatable)")
	f.StringSliceVar(&p.termSlugs, "terms", nil, "Term filter as slugs, e.g. fall-2017 (repeatable)")
	return cmd
}
