package edo

import (
	"context"
	"fmt"
	"strings"

	"edoquery/internal/terms"
	"edoquery/pkg/db"
)

// maxSearchResults caps SearchStudents.
const maxSearchResults = 50

// TermUnitTotals returns a student's earned and enrolled unit totals for one
// term across the given careers.
func (q *Queries) TermUnitTotals(ctx context.Context, uid string, careers []string, termID string) (db.Row, bool, error) {
	if blank(uid, termID) || len(careers) == 0 {
		return nil, false, nil
	}
	in, err := StringList(careers)
	if err != nil {
		return nil, false, err
	}
	query := fmt.Sprintf(`
SELECT
  SUM(tot."UNT_PASSD_GPA" + tot."UNT_PASSD_NOGPA") AS total_earned_units,
  SUM(tot."UNT_TAKEN_GPA" + tot."UNT_TAKEN_NOGPA") AS total_enrolled_units,
  MAX(tot."GRADING_COMPLETE") AS grading_complete
FROM SISEDO.CLC_STDNT_CAR_TERMV00_VW tot
WHERE tot."CAMPUS_ID" = ?
  AND tot."STRM" = ?
  AND tot."ACAD_CAREER" IN (%s)`, in)
	return q.one(ctx, "term_unit_totals", query, termUnitTotalsSchema, uid, termID)
}

// TermLawUnitTotals returns a student's law unit totals for one term across
// the given careers.
func (q *Queries) TermLawUnitTotals(ctx context.Context, uid string, careers []string, termID string) (db.Row, bool, error) {
	if blank(uid, termID) || len(careers) == 0 {
		return nil, false, nil
	}
	in, err := StringList(careers)
	if err != nil {
		return nil, false, err
	}
	query := fmt.Sprintf(`
SELECT
  SUM(tot."UNITS_EARNED_LAW") AS total_earned_law_units,
  SUM(tot."UNITS_TAKEN_LAW") AS total_enrolled_law_units
FROM SISEDO.CLC_STDNT_CAR_TERM_LAWV00_VW tot
WHERE tot."CAMPUS_ID" = ?
  AND tot."STRM" = ?
  AND tot."ACAD_CAREER" IN (%s)`, in)
	return q.one(ctx, "term_law_unit_totals", query, termLawUnitTotalsSchema, uid, termID)
}

// Careers returns a student's academic careers with cumulative units.
func (q *Queries) Careers(ctx context.Context, uid string) ([]db.Row, error) {
	if blank(uid) {
		return emptyRows(), nil
	}
	query := `
SELECT
  car."ACAD_CAREER" AS acad_career,
  car."PROGRAM_STATUS" AS program_status,
  car."TOT_CUMULATIVE" AS total_cumulative_units,
  car."LAW_CUMULATIVE" AS total_cumulative_law_units
FROM SISEDO.CLC_STDNT_CAREERV00_VW car
WHERE car."CAMPUS_ID" = ?
ORDER BY acad_career`
	return q.list(ctx, "careers", query, careerSchema, uid)
}

// ConcurrentStudentStatus returns whether a student is concurrently enrolled
// through extension.
func (q *Queries) ConcurrentStudentStatus(ctx context.Context, studentID string) (db.Row, bool, error) {
	if blank(studentID) {
		return nil, false, nil
	}
	query := `
SELECT con."CONCURRENT_STATUS" AS concurrent_status
FROM SISEDO.CLC_STDNT_CONCURRENTV00_VW con
WHERE con."STUDENT_ID" = ?`
	return q.one(ctx, "concurrent_student_status", query, concurrentStatusSchema, studentID)
}

// TransferCreditDetailed returns every transfer credit posting of a student.
func (q *Queries) TransferCreditDetailed(ctx context.Context, uid string) ([]db.Row, error) {
	if blank(uid) {
		return emptyRows(), nil
	}
	query := `
SELECT
  tc."ACAD_CAREER" AS career,
  tc."SCHOOL_DESCR" AS school_descr,
  tc."TRANSFER_UNITS" AS transfer_units,
  tc."LAW_TRANSFER_UNITS" AS law_transfer_units,
  tc."RQMNT_DESIGNTN" AS requirement_designation,
  tc."GRADE_POINTS" AS grade_points,
  tc."TERM_ID" AS term_id
FROM SISEDO.CLC_TRANSFER_CREDIT_SCHLV00_VW tc
WHERE tc."CAMPUS_ID" = ?
ORDER BY career, term_id, school_descr`
	return q.list(ctx, "transfer_credit_detailed", query, transferCreditSchema, uid)
}

// StudentTermCPP returns the career, program and plan a student held in each
// term.
func (q *Queries) StudentTermCPP(ctx context.Context, studentID string) ([]db.Row, error) {
	if blank(studentID) {
		return emptyRows(), nil
	}
	query := `
SELECT DISTINCT
  cpp."TERM_ID" AS term_id,
  cpp."ACAD_CAREER" AS acad_career,
  cpp."ACAD_CAREER_DESCR" AS acad_career_descr,
  cpp."ACAD_PROGRAM" AS acad_program,
  cpp."ACAD_PLAN" AS acad_plan
FROM SISEDO.STUDENT_TERM_CPPV00_VW cpp
WHERE cpp."STUDENT_ID" = ?
ORDER BY term_id, acad_career, acad_program, acad_plan`
	return q.list(ctx, "student_term_cpp", query, termCPPSchema, studentID)
}

// SearchStudents matches search against student ids, campus uids and legal
// or preferred names. The term is matched case-insensitively as a substring.
func (q *Queries) SearchStudents(ctx context.Context, search string) ([]db.Row, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return emptyRows(), nil
	}
	pattern := "%" + likeEscaper.Replace(strings.ToUpper(search)) + "%"
	query := fmt.Sprintf(`
SELECT DISTINCT
  std."STUDENT_ID" AS student_id,
  std."CAMPUS_ID" AS campus_uid,
  std."OPRID" AS oprid,
  std."FIRST_NAME_LEGAL" AS first_name_legal,
  std."MIDDLE_NAME_LEGAL" AS middle_name_legal,
  std."LAST_NAME_LEGAL" AS last_name_legal,
  std."FIRST_NAME_PREFERRED" AS first_name_preferred,
  std."MIDDLE_NAME_PREFERRED" AS middle_name_preferred,
  std."EMAIL_ADDRESS" AS email,
  std."ACADPROG_DESCR" AS academic_programs
FROM SISEDO.CLC_STUDENT_SEARCHV00_VW std
WHERE std."STUDENT_ID" LIKE ? ESCAPE '\'
  OR std."CAMPUS_ID" LIKE ? ESCAPE '\'
  OR UPPER(std."FIRST_NAME_LEGAL" || ' ' || std."LAST_NAME_LEGAL") LIKE ? ESCAPE '\'
  OR UPPER(std."FIRST_NAME_PREFERRED" || ' ' || std."LAST_NAME_LEGAL") LIKE ? ESCAPE '\'
ORDER BY last_name_legal, first_name_legal, student_id
FETCH FIRST %d ROWS ONLY`, maxSearchResults)
	return q.list(ctx, "search_students", query, studentSearchSchema, pattern, pattern, pattern, pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// HasStudentHistory reports whether a student has any enrollment in the
// filtered terms, or in any term when filter is empty.
func (q *Queries) HasStudentHistory(ctx context.Context, uid string, filter terms.Filter) (bool, error) {
	if blank(uid) {
		return false, nil
	}
	inTerms, err := termClause(`enr."TERM_ID"`, filter)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
SELECT COUNT(enr."CLASS_SECTION_ID") AS history_count
FROM SISEDO.CC_ENROLLMENTV00_VW enr
WHERE enr."CAMPUS_UID" = ?
  %s`, inTerms)
	return q.exists(ctx, "has_student_history", query, uid)
}
