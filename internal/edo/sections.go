package edo

import (
	"context"
	"fmt"
	"strings"

	"edoquery/pkg/db"
)

// sectionColumns is shared by every statement that returns a class section
// joined to its course (aliases sec and crs).
const sectionColumns = `
  sec."id" AS section_id,
  sec."term-id" AS term_id,
  sec."session-id" AS session_id,
  TRIM(crs."title") AS course_title,
  TRIM(crs."transcriptTitle") AS course_title_short,
  crs."subjectArea" AS dept_name,
  crs."classSubjectArea" AS dept_code,
  crs."academicCareer-code" AS course_career_code,
  sec."primary" AS "primary",
  sec."sectionNumber" AS section_num,
  sec."component-code" AS instruction_format,
  sec."primaryAssociatedSectionId" AS primary_associated_section_id,
  sec."displayName" AS section_display_name,
  xlat."topicDescr" AS topic_description,
  crs."displayName" AS course_display_name,
  crs."catalogNumber-formatted" AS catalog_id,
  crs."catalogNumber-number" AS catalog_root,
  crs."catalogNumber-prefix" AS catalog_prefix,
  crs."catalogNumber-suffix" AS catalog_suffix`

// sectionJoins joins sec to its course version and display-name topic.
const sectionJoins = `
  JOIN SISEDO.API_COURSEV01_MVW crs ON (
    crs."cms-version-independent-id" = sec."cms-version-independent-id" AND
    crs."cms-id" = sec."cms-id")
  LEFT OUTER JOIN SISEDO.DISPLAYNAMEXLATV01_MVW xlat ON (
    xlat."classDisplayName" = sec."displayName")`

// AssociatedSecondarySections returns the non-primary sections (discussions,
// labs) attached to a primary section.
func (q *Queries) AssociatedSecondarySections(ctx context.Context, termID, sectionID string) ([]db.Row, error) {
	if blank(termID, sectionID) {
		return emptyRows(), nil
	}
	query := `
SELECT DISTINCT` + sectionColumns + `
FROM SISEDO.CLASSSECTIONALLV01_MVW sec` + sectionJoins + `
WHERE sec."term-id" = ?
  AND sec."primaryAssociatedSectionId" = ?
  AND sec."primary" = 'false'
  AND sec."status-code" IN ('A','S')
ORDER BY section_display_name, section_num`
	return q.list(ctx, "associated_secondary_sections", query, sectionSchema, termID, sectionID)
}

// SectionsByIDs returns the sections of one term named by sectionIDs, in
// section id order. An empty id list returns no rows without querying.
func (q *Queries) SectionsByIDs(ctx context.Context, termID string, sectionIDs []string) ([]db.Row, error) {
	if blank(termID) || len(sectionIDs) == 0 {
		return emptyRows(), nil
	}
	ids, err := StringList(sectionIDs)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT DISTINCT`+sectionColumns+`
FROM SISEDO.CLASSSECTIONALLV01_MVW sec`+sectionJoins+`
WHERE sec."term-id" = ?
  AND sec."id" IN (%s)
ORDER BY section_id`, ids)
	return q.list(ctx, "sections_by_ids", query, sectionSchema, termID)
}

// SectionMeetings returns the meeting patterns of a section.
func (q *Queries) SectionMeetings(ctx context.Context, termID, sectionID string) ([]db.Row, error) {
	if blank(termID, sectionID) {
		return emptyRows(), nil
	}
	query := `
SELECT DISTINCT
  mtg."cs-course-id" AS section_id,
  mtg."term-id" AS term_id,
  mtg."session-id" AS session_id,
  TRIM(mtg."location-descr") AS location,
  mtg."meetsDays" AS meeting_days,
  mtg."startTime" AS meeting_start_time,
  mtg."endTime" AS meeting_end_time,
  mtg."printInScheduleOfClasses" AS print_in_schedule_of_classes,
  mtg."startDate" AS meeting_start_date,
  mtg."endDate" AS meeting_end_date
FROM SISEDO.MEETINGV00_VW mtg
WHERE mtg."term-id" = ?
  AND mtg."cs-course-id" = ?
ORDER BY meeting_start_date, meeting_start_time`
	return q.list(ctx, "section_meetings", query, meetingSchema, termID, sectionID)
}

// SectionFinalExams returns the scheduled final exams of a section.
func (q *Queries) SectionFinalExams(ctx context.Context, termID, sectionID string) ([]db.Row, error) {
	if blank(termID, sectionID) {
		return emptyRows(), nil
	}
	query := `
SELECT
  exam."TERM_ID" AS term_id,
  exam."SESSION_ID" AS session_id,
  exam."CLASS_SECTION_ID" AS section_id,
  exam."EXAM_TYPE" AS exam_type,
  exam."EXAM_DT" AS exam_date,
  exam."EXAM_START_TIME" AS exam_start_time,
  exam."EXAM_END_TIME" AS exam_end_time,
  TRIM(exam."FACILITY_DESCR") AS location,
  exam."EXAM_EXCEPTION" AS exam_exception,
  exam."FINALIZED" AS finalized
FROM SISEDO.CLC_FINAL_EXAM_INFOV00_VW exam
WHERE exam."TERM_ID" = ?
  AND exam."CLASS_SECTION_ID" = ?
ORDER BY exam_date, exam_start_time`
	return q.list(ctx, "section_final_exams", query, finalExamSchema, termID, sectionID)
}

// SectionInstructors returns the instructors assigned to a section.
func (q *Queries) SectionInstructors(ctx context.Context, termID, sectionID string) ([]db.Row, error) {
	if blank(termID, sectionID) {
		return emptyRows(), nil
	}
	query := `
SELECT DISTINCT
  TRIM(instr."formattedName") AS person_name,
  TRIM(instr."givenName") AS first_name,
  TRIM(instr."familyName") AS last_name,
  instr."campus-uid" AS ldap_uid,
  instr."role-code" AS role_code,
  instr."role-descr" AS role_description,
  instr."printInScheduleOfClasses" AS print_in_schedule
FROM SISEDO.ASSIGNEDINSTRUCTORV00_VW instr
WHERE instr."term-id" = ?
  AND instr."cs-course-id" = ?
  AND TRIM(instr."instructor-id") IS NOT NULL
ORDER BY role_code, last_name`
	return q.list(ctx, "section_instructors", query, instructorSchema, termID, sectionID)
}

// CrossListedCourseTitle returns the title of a course by display name, e.g.
// "AMERSTD 102".
func (q *Queries) CrossListedCourseTitle(ctx context.Context, courseCode string) (db.Row, bool, error) {
	courseCode = strings.TrimSpace(courseCode)
	if courseCode == "" {
		return nil, false, nil
	}
	query := `
SELECT
  TRIM(crs."title") AS course_title,
  TRIM(crs."transcriptTitle") AS course_title_short
FROM SISEDO.API_COURSEV01_MVW crs
WHERE crs."displayName" = ?
  AND crs."status-code" = 'ACTIVE'
ORDER BY crs."fromDate" DESC
FETCH FIRST 1 ROWS ONLY`
	rows, err := q.cachedList(ctx, "course_title:"+courseCode, "cross_listed_course_title", query, courseTitleSchema, courseCode)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// SubjectAreas returns every distinct course subject area.
func (q *Queries) SubjectAreas(ctx context.Context) ([]db.Row, error) {
	query := `
SELECT DISTINCT crs."subjectArea" AS subjectarea
FROM SISEDO.API_COURSEV01_MVW crs
WHERE crs."subjectArea" IS NOT NULL
ORDER BY subjectarea`
	return q.cachedList(ctx, "subject_areas", "subject_areas", query, subjectAreaSchema)
}

// SectionReservedCapacityCount returns how many reserved-seating rules apply
// to a section.
func (q *Queries) SectionReservedCapacityCount(ctx context.Context, termID, sectionID string) ([]db.Row, error) {
	if blank(termID, sectionID) {
		return emptyRows(), nil
	}
	query := `
SELECT COUNT(rsv."RESERVED_SEAT_ID") AS reserved_seating_rules_count
FROM SISEDO.CLASS_RESERVED_SEATSV00_VW rsv
WHERE rsv."TERM_ID" = ?
  AND rsv."CLASS_SECTION_ID" = ?`
	return q.list(ctx, "section_reserved_capacity_count", query, reservedCapacitySchema, termID, sectionID)
}

// GradingDates returns the mid-term and final grading windows by career and
// session.
func (q *Queries) GradingDates(ctx context.Context) ([]db.Row, error) {
	query := `
SELECT DISTINCT
  gd."ACAD_CAREER" AS acad_career,
  gd."TERM_ID" AS term_id,
  gd."SESSION_CODE" AS session_id,
  gd."MID_TERM_BEGIN_DT" AS mid_term_begin_date,
  gd."MID_TERM_END_DT" AS mid_term_end_date,
  gd."FINAL_BEGIN_DT" AS final_begin_date,
  gd."FINAL_END_DT" AS final_end_date
FROM SISEDO.CLC_GRADING_DATESV00_VW gd
ORDER BY term_id DESC, acad_career, session_id`
	return q.list(ctx, "grading_dates", query, gradingDatesSchema)
}
