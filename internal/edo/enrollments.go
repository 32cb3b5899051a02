package edo

import (
	"context"
	"fmt"

	"edoquery/internal/terms"
	"edoquery/pkg/db"
)

// EnrolledSections returns a student's enrolled and waitlisted sections,
// newest term first. A non-empty filter limits the result to those terms.
// The requirements designation is only reported for LAW course careers.
func (q *Queries) EnrolledSections(ctx context.Context, uid string, filter terms.Filter) ([]db.Row, error) {
	if blank(uid) {
		return emptyRows(), nil
	}
	inTerms, err := termClause(`enr."TERM_ID"`, filter)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT DISTINCT`+sectionColumns+`,
  sec."enrollmentStatus-maxEnroll" AS enroll_limit,
  enr."STDNT_ENRL_STATUS_CODE" AS enroll_status,
  enr."WAITLISTPOSITION" AS waitlist_position,
  enr."UNITS_TAKEN" AS units_taken,
  enr."UNITS_EARNED" AS units_earned,
  enr."GRADE_MARK" AS grade,
  enr."GRADE_POINTS" AS grade_points,
  enr."GRADING_BASIS_CODE" AS grading_basis,
  enr."ACAD_CAREER" AS acad_career,
  CASE WHEN crs."academicCareer-code" = 'LAW' THEN enr."RQMNT_DESIGNTN" ELSE NULL END AS rqmnt_designtn
FROM SISEDO.CC_ENROLLMENTV00_VW enr
JOIN SISEDO.CLASSSECTIONALLV01_MVW sec ON (
  enr."TERM_ID" = sec."term-id" AND
  enr."SESSION_ID" = sec."session-id" AND
  enr."CLASS_SECTION_ID" = sec."id" AND
  sec."status-code" IN ('A','S'))`+sectionJoins+`
WHERE enr."CAMPUS_UID" = ?
  AND enr."STDNT_ENRL_STATUS_CODE" != 'D'
  %s
ORDER BY term_id DESC, course_display_name, "primary" DESC, instruction_format, section_num`, inTerms)
	return q.list(ctx, "enrolled_sections", query, enrolledSectionSchema, uid)
}

// EnrolledStudents returns the enrolled and waitlisted students of a section.
func (q *Queries) EnrolledStudents(ctx context.Context, sectionID, termID string) ([]db.Row, error) {
	if blank(sectionID, termID) {
		return emptyRows(), nil
	}
	query := `
SELECT DISTINCT
  enr."CLASS_SECTION_ID" AS section_id,
  enr."CAMPUS_UID" AS ldap_uid,
  enr."STUDENT_ID" AS student_id,
  enr."STDNT_ENRL_STATUS_CODE" AS enroll_status,
  enr."WAITLISTPOSITION" AS waitlist_position,
  enr."UNITS_TAKEN" AS units,
  enr."GRADING_BASIS_CODE" AS grading_basis
FROM SISEDO.CC_ENROLLMENTV00_VW enr
WHERE enr."CLASS_SECTION_ID" = ?
  AND enr."TERM_ID" = ?
  AND enr."STDNT_ENRL_STATUS_CODE" != 'D'
ORDER BY student_id`
	return q.list(ctx, "enrolled_students", query, enrolledStudentSchema, sectionID, termID)
}

// Rosters returns the enrollments of several sections of one term together
// with each student's plan and career.
func (q *Queries) Rosters(ctx context.Context, sectionIDs []string, termID string) ([]db.Row, error) {
	if blank(termID) || len(sectionIDs) == 0 {
		return emptyRows(), nil
	}
	ids, err := StringList(sectionIDs)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT DISTINCT
  enr."CLASS_SECTION_ID" AS section_id,
  enr."CAMPUS_UID" AS ldap_uid,
  enr."STUDENT_ID" AS student_id,
  enr."STDNT_ENRL_STATUS_CODE" AS enroll_status,
  enr."WAITLISTPOSITION" AS waitlist_position,
  enr."UNITS_TAKEN" AS units,
  enr."GRADING_BASIS_CODE" AS grading_basis,
  plan."ACADPLAN_DESCR" AS major,
  plan."ACADCAREER_CODE" AS academic_career,
  plan."TERMS_IN_ATTENDANCE_GROUP" AS terms_in_attendance_group,
  plan."STATUSINPLAN_STATUS_CODE" AS statusinplan_status_code
FROM SISEDO.CC_ENROLLMENTV00_VW enr
LEFT OUTER JOIN SISEDO.CLC_STUDENT_PLANV00_VW plan ON (
  plan."STUDENT_ID" = enr."STUDENT_ID" AND
  plan."ACADCAREER_CODE" = enr."ACAD_CAREER")
WHERE enr."CLASS_SECTION_ID" IN (%s)
  AND enr."TERM_ID" = ?
  AND enr."STDNT_ENRL_STATUS_CODE" != 'D'
ORDER BY section_id, student_id`, ids)
	return q.list(ctx, "rosters", query, rosterSchema, termID)
}

// LawEnrollment returns law units for one enrollment that fulfills the given
// requirement designation.
func (q *Queries) LawEnrollment(ctx context.Context, uid, career, termID, sectionID, requireDesigCode string) (db.Row, bool, error) {
	if blank(uid, career, termID, sectionID, requireDesigCode) {
		return nil, false, nil
	}
	query := `
SELECT
  enr."UNITS_TAKEN_LAW" AS units_taken_law,
  enr."UNITS_EARNED_LAW" AS units_earned_law,
  desig."DESCRFORMAL" AS rqmnt_desg_descr
FROM SISEDO.CLC_ENROLLMENT_LAWV00_VW enr
LEFT OUTER JOIN SISEDO.CLC_RQMNT_DESIGV00_VW desig ON (
  desig."RQMNT_DESIGNTN" = enr."RQMNT_DESIGNTN")
WHERE enr."CAMPUS_UID" = ?
  AND enr."ACAD_CAREER" = ?
  AND enr."TERM_ID" = ?
  AND enr."CLASS_SECTION_ID" = ?
  AND enr."RQMNT_DESIGNTN" = ?`
	return q.one(ctx, "law_enrollment", query, lawEnrollmentSchema, uid, career, termID, sectionID, requireDesigCode)
}
