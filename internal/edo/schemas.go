package edo

import "edoquery/pkg/db"

// Column schemas for catalog statements. Columns not listed keep the value
// the driver returned.
var (
	sectionSchema = db.Strings(
		"section_id", "term_id", "session_id",
		"course_title", "course_title_short", "dept_name", "dept_code", "course_career_code",
		"primary", "section_num", "instruction_format", "primary_associated_section_id",
		"section_display_name", "topic_description", "course_display_name",
		"catalog_id", "catalog_root", "catalog_prefix", "catalog_suffix",
	)

	enrolledSectionSchema = sectionSchema.With(db.Schema{
		"enroll_limit":      db.KindInt,
		"enroll_status":     db.KindFlag,
		"waitlist_position": db.KindInt,
		"units_taken":       db.KindDecimal,
		"units_earned":      db.KindDecimal,
		"grade":             db.KindString,
		"grade_points":      db.KindDecimal,
		"grading_basis":     db.KindString,
		"acad_career":       db.KindString,
		"rqmnt_designtn":    db.KindString,
	})

	instructingSectionSchema = sectionSchema.With(db.Schema{
		"enroll_limit":   db.KindInt,
		"waitlist_limit": db.KindInt,
		"start_date":     db.KindDate,
		"end_date":       db.KindDate,
	})

	finalExamSchema = db.Schema{
		"term_id":         db.KindString,
		"session_id":      db.KindString,
		"section_id":      db.KindString,
		"exam_type":       db.KindFlag,
		"exam_date":       db.KindDate,
		"exam_start_time": db.KindTime,
		"exam_end_time":   db.KindTime,
		"location":        db.KindString,
		"exam_exception":  db.KindFlag,
		"finalized":       db.KindFlag,
	}

	meetingSchema = db.Strings(
		"section_id", "term_id", "session_id", "location", "meeting_days",
		"meeting_start_time", "meeting_end_time",
	).With(db.Schema{
		"print_in_schedule_of_classes": db.KindFlag,
		"meeting_start_date":           db.KindDate,
		"meeting_end_date":             db.KindDate,
	})

	instructorSchema = db.Strings(
		"person_name", "first_name", "last_name", "ldap_uid", "role_code", "role_description",
	).With(db.Schema{"print_in_schedule": db.KindFlag})

	courseTitleSchema  = db.Strings("course_title", "course_title_short")
	subjectAreaSchema  = db.Strings("subjectarea")
	legacyTermSchema   = db.Strings("term_id")
	historyCountSchema = db.Schema{"history_count": db.KindInt}

	enrolledStudentSchema = db.Schema{
		"section_id":        db.KindString,
		"ldap_uid":          db.KindString,
		"student_id":        db.KindString,
		"enroll_status":     db.KindFlag,
		"waitlist_position": db.KindInt,
		"units":             db.KindDecimal,
		"grading_basis":     db.KindString,
	}

	rosterSchema = enrolledStudentSchema.With(db.Strings(
		"major", "academic_career", "terms_in_attendance_group", "statusinplan_status_code",
	))

	termUnitTotalsSchema = db.Schema{
		"total_earned_units":   db.KindDecimal,
		"total_enrolled_units": db.KindDecimal,
		"grading_complete":     db.KindFlag,
	}

	termLawUnitTotalsSchema = db.Schema{
		"total_earned_law_units":   db.KindDecimal,
		"total_enrolled_law_units": db.KindDecimal,
	}

	careerSchema = db.Schema{
		"acad_career":                db.KindString,
		"program_status":             db.KindString,
		"total_cumulative_units":     db.KindDecimal,
		"total_cumulative_law_units": db.KindDecimal,
	}

	lawEnrollmentSchema = db.Schema{
		"units_taken_law":  db.KindDecimal,
		"units_earned_law": db.KindDecimal,
		"rqmnt_desg_descr": db.KindString,
	}

	concurrentStatusSchema = db.Schema{"concurrent_status": db.KindFlag}

	transferCreditSchema = db.Schema{
		"career":                  db.KindString,
		"school_descr":            db.KindString,
		"transfer_units":          db.KindDecimal,
		"law_transfer_units":      db.KindDecimal,
		"requirement_designation": db.KindString,
		"grade_points":            db.KindDecimal,
		"term_id":                 db.KindString,
	}

	gradingDatesSchema = db.Schema{
		"acad_career":         db.KindString,
		"term_id":             db.KindString,
		"session_id":          db.KindString,
		"mid_term_begin_date": db.KindDate,
		"mid_term_end_date":   db.KindDate,
		"final_begin_date":    db.KindDate,
		"final_end_date":      db.KindDate,
	}

	reservedCapacitySchema = db.Schema{"reserved_seating_rules_count": db.KindInt}

	termCPPSchema = db.Strings("term_id", "acad_career", "acad_career_descr", "acad_program", "acad_plan")

	studentSearchSchema = db.Strings(
		"student_id", "campus_uid", "oprid",
		"first_name_legal", "middle_name_legal", "last_name_legal",
		"first_name_preferred", "middle_name_preferred", "email", "academic_programs",
	)

	termDefinitionSchema = db.Schema{
		"term_yr":              db.KindInt,
		"term_cd":              db.KindString,
		"term_name":            db.KindString,
		"term_status":          db.KindString,
		"term_status_desc":     db.KindString,
		"current_tb_term_flag": db.KindFlag,
		"term_start_date":      db.KindDate,
		"term_end_date":        db.KindDate,
	}
)
