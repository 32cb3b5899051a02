package edo

import (
	"context"
	"fmt"

	"edoquery/internal/terms"
	"edoquery/pkg/db"
)

// legacyTermCutoff is the first term served by Campus Solutions. Older
// instructing history lives in the legacy system.
const legacyTermCutoff = "2168"

// InstructingSections returns the sections a person teaches, newest term
// first. A non-empty filter limits the result to those terms.
func (q *Queries) InstructingSections(ctx context.Context, uid string, filter terms.Filter) ([]db.Row, error) {
	if blank(uid) {
		return emptyRows(), nil
	}
	inTerms, err := termClause(`instr."term-id"`, filter)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT DISTINCT`+sectionColumns+`,
  sec."enrollmentStatus-maxEnroll" AS enroll_limit,
  sec."enrollmentStatus-maxWaitlist" AS waitlist_limit,
  sec."startDate" AS start_date,
  sec."endDate" AS end_date
FROM SISEDO.ASSIGNEDINSTRUCTORV00_VW instr
JOIN SISEDO.CLASSSECTIONALLV01_MVW sec ON (
  instr."term-id" = sec."term-id" AND
  instr."session-id" = sec."session-id" AND
  instr."cs-course-id" = sec."id" AND
  sec."status-code" IN ('A','S'))`+sectionJoins+`
WHERE instr."campus-uid" = ?
  %s
ORDER BY term_id DESC, course_display_name, "primary" DESC, instruction_format, section_num`, inTerms)
	return q.list(ctx, "instructing_sections", query, instructingSectionSchema, uid)
}

// InstructingLegacyTerms returns the pre-Campus Solutions terms in which a
// person taught, newest first.
func (q *Queries) InstructingLegacyTerms(ctx context.Context, personID string) ([]db.Row, error) {
	if blank(personID) {
		return emptyRows(), nil
	}
	query := `
SELECT DISTINCT instr."term-id" AS term_id
FROM SISEDO.ASSIGNEDINSTRUCTORV00_VW instr
WHERE instr."instructor-id" = ?
  AND instr."term-id" < ?
ORDER BY term_id DESC`
	return q.cachedList(ctx, "legacy_terms:"+personID, "instructing_legacy_terms", query, legacyTermSchema, personID, legacyTermCutoff)
}

// HasInstructorHistory reports whether a person taught in any of the filtered
// terms, or in any term when filter is empty.
func (q *Queries) HasInstructorHistory(ctx context.Context, uid string, filter terms.Filter) (bool, error) {
	if blank(uid) {
		return false, nil
	}
	inTerms, err := termClause(`instr."term-id"`, filter)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
SELECT COUNT(instr."cs-course-id") AS history_count
FROM SISEDO.ASSIGNEDINSTRUCTORV00_VW instr
WHERE instr."campus-uid" = ?
  %s`, inTerms)
	return q.exists(ctx, "has_instructor_history", query, uid)
}
