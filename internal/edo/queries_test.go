package edo

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edoquery/internal/terms"
	"edoquery/pkg/db"
)

func newMockQueries(t *testing.T, dialect db.Dialect, opts ...Option) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})
	exec := db.NewExecutor(conn, dialect, zap.NewNop(), 0)
	return NewQueries(exec, zap.NewNop(), opts...), mock
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

var fall2017 = terms.Term{Year: 2017, Code: "D"}

func TestEnrolledSections(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	cols := []string{"section_id", "term_id", "course_display_name", "enroll_limit", "waitlist_position", "units_taken", "enroll_status", "rqmnt_designtn"}
	mock.ExpectQuery(regexp.QuoteMeta(`AND enr."TERM_ID" IN ('2178')`)).
		WithArgs("61889").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("31001", "2178", "LAW 201", "120", 3, "4.0", "E ", nil).
			AddRow("31002", "2178", "MATH 1A", 300, nil, 4, "W", nil))

	rows, err := q.EnrolledSections(context.Background(), "61889", terms.Filter{fall2017})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(120), rows[0]["enroll_limit"])
	assert.Equal(t, int64(3), rows[0]["waitlist_position"])
	units, ok := rows[0].Decimal("units_taken")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("4").Equal(units))
	assert.Equal(t, "E", rows[0]["enroll_status"])
	assert.True(t, rows[0].IsNull("rqmnt_designtn"))

	assert.Nil(t, rows[1]["waitlist_position"])
	assert.Equal(t, int64(300), rows[1]["enroll_limit"])
}

func TestEnrolledSections_EmptyFilterIsUnconstrained(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	mock.ExpectQuery(`(?s)WHERE enr\."CAMPUS_UID" = \?\s+AND enr\."STDNT_ENRL_STATUS_CODE" != 'D'\s+ORDER BY`).
		WithArgs("61889").
		WillReturnRows(sqlmock.NewRows([]string{"section_id"}))

	rows, err := q.EnrolledSections(context.Background(), "61889", nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestEnrolledSections_InvalidFilterTermFails(t *testing.T) {
	q, _ := newMockQueries(t, db.Question)

	_, err := q.EnrolledSections(context.Background(), "61889", terms.Filter{{Year: 2017, Code: "Z"}})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestQueries_ShortCircuitWithoutRoundTrip(t *testing.T) {
	q, _ := newMockQueries(t, db.Question)
	ctx := context.Background()

	lists := map[string]func() ([]db.Row, error){
		"rosters without sections":   func() ([]db.Row, error) { return q.Rosters(ctx, nil, "2178") },
		"sections by empty ids":      func() ([]db.Row, error) { return q.SectionsByIDs(ctx, "2178", []string{}) },
		"meetings for blank section": func() ([]db.Row, error) { return q.SectionMeetings(ctx, "2178", " ") },
		"careers for blank uid":      func() ([]db.Row, error) { return q.Careers(ctx, "") },
		"blank search":               func() ([]db.Row, error) { return q.SearchStudents(ctx, "  ") },
	}
	for name, fn := range lists {
		t.Run(name, func(t *testing.T) {
			rows, err := fn()
			require.NoError(t, err)
			assert.NotNil(t, rows)
			assert.Empty(t, rows)
		})
	}

	row, ok, err := q.TermUnitTotals(ctx, "61889", nil, "2178")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, row)

	has, err := q.HasInstructorHistory(ctx, "", nil)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestConcurrentStudentStatus(t *testing.T) {
	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		wantOK   bool
		wantFlag string
	}{
		{
			name:     "found",
			rows:     sqlmock.NewRows([]string{"CONCURRENT_STATUS"}).AddRow("Y "),
			wantOK:   true,
			wantFlag: "Y",
		},
		{
			name:   "absent",
			rows:   sqlmock.NewRows([]string{"CONCURRENT_STATUS"}),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, mock := newMockQueries(t, db.Question)
			mock.ExpectQuery(regexp.QuoteMeta(`con."STUDENT_ID" = ?`)).WithArgs("11667051").WillReturnRows(tt.rows)

			row, ok, err := q.ConcurrentStudentStatus(context.Background(), "11667051")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				flag, _ := row.Flag("concurrent_status")
				assert.Equal(t, tt.wantFlag, flag)
			}
		})
	}
}

func TestTermUnitTotals_CareerList(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	mock.ExpectQuery(regexp.QuoteMeta(`tot."ACAD_CAREER" IN ('UGRD','LAW')`)).
		WithArgs("61889", "2178").
		WillReturnRows(sqlmock.NewRows([]string{"total_earned_units", "total_enrolled_units", "grading_complete"}).
			AddRow(12.5, "16", "N"))

	row, ok, err := q.TermUnitTotals(context.Background(), "61889", []string{"UGRD", "LAW"}, "2178")
	require.NoError(t, err)
	require.True(t, ok)
	earned, _ := row.Decimal("total_earned_units")
	assert.Equal(t, "12.5", earned.String())
	enrolled, _ := row.Decimal("total_enrolled_units")
	assert.Equal(t, "16", enrolled.String())
}

func TestHasHistory(t *testing.T) {
	tests := []struct {
		name   string
		count  any
		filter terms.Filter
		expect string
		want   bool
	}{
		{name: "history in filtered terms", count: 3, filter: terms.Filter{fall2017}, expect: regexp.QuoteMeta(`IN ('2178')`), want: true},
		{name: "no history", count: 0, filter: terms.Filter{fall2017}, expect: regexp.QuoteMeta(`IN ('2178')`), want: false},
		{name: "empty filter", count: "1", filter: nil, expect: `(?s)= \?\s*$`, want: true},
	}

	for _, tt := range tests {
		t.Run("student "+tt.name, func(t *testing.T) {
			q, mock := newMockQueries(t, db.Question)
			mock.ExpectQuery(tt.expect).WithArgs("61889").
				WillReturnRows(sqlmock.NewRows([]string{"HISTORY_COUNT"}).AddRow(tt.count))

			got, err := q.HasStudentHistory(context.Background(), "61889", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
		t.Run("instructor "+tt.name, func(t *testing.T) {
			q, mock := newMockQueries(t, db.Question)
			mock.ExpectQuery(tt.expect).WithArgs("904715").
				WillReturnRows(sqlmock.NewRows([]string{"history_count"}).AddRow(tt.count))

			got, err := q.HasInstructorHistory(context.Background(), "904715", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueries_DriverErrorPassesThrough(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	driverErr := errors.New("ORA-00942: table or view does not exist")
	mock.ExpectQuery("CLC_GRADING_DATESV00_VW").WillReturnError(driverErr)

	rows, err := q.GradingDates(context.Background())
	assert.Nil(t, rows)
	assert.Same(t, driverErr, err)
}

func TestSectionMeetings_OracleBinds(t *testing.T) {
	q, mock := newMockQueries(t, db.Oracle)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE mtg."term-id" = :1`) + `\s+` + regexp.QuoteMeta(`AND mtg."cs-course-id" = :2`)).
		WithArgs("2178", "31001").
		WillReturnRows(sqlmock.NewRows([]string{"section_id", "meeting_start_date", "print_in_schedule_of_classes"}).
			AddRow("31001", "2017-08-23 00:00:00", "Y"))

	rows, err := q.SectionMeetings(context.Background(), "2178", "31001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2017, 8, 23, 0, 0, 0, 0, time.UTC), rows[0]["meeting_start_date"])
}

func TestRosters(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	mock.ExpectQuery(regexp.QuoteMeta(`enr."CLASS_SECTION_ID" IN ('31001','31002')`)).
		WithArgs("2178").
		WillReturnRows(sqlmock.NewRows([]string{"section_id", "ldap_uid", "units", "major"}).
			AddRow("31001", "61889", "4", "Letters & Sci Undeclared UG"))

	rows, err := q.Rosters(context.Background(), []string{"31001", "31002"}, "2178")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Letters & Sci Undeclared UG", rows[0]["major"])
}

func TestSearchStudents_EscapesWildcards(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	pattern := `%50\%%`
	mock.ExpectQuery("FETCH FIRST 50 ROWS ONLY").
		WithArgs(pattern, pattern, pattern, pattern).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))

	rows, err := q.SearchStudents(context.Background(), "50%")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSubjectAreas_ReadThroughCache(t *testing.T) {
	cache := newMemoryCache()
	q, mock := newMockQueries(t, db.Question, WithReferenceCache(cache))

	mock.ExpectQuery("subjectArea").
		WillReturnRows(sqlmock.NewRows([]string{"SUBJECTAREA"}).AddRow("ASTRON").AddRow("MATH"))

	first, err := q.SubjectAreas(context.Background())
	require.NoError(t, err)
	second, err := q.SubjectAreas(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "MATH", second[1]["subjectarea"])
	assert.Contains(t, cache.entries, "edo:other_sql:subject_areas")
}

func TestSubjectAreas_CacheFailureFallsThrough(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	q, mock := newMockQueries(t, db.Question, WithReferenceCache(cache))

	mock.ExpectQuery("subjectArea").WillReturnRows(sqlmock.NewRows([]string{"subjectarea"}).AddRow("ASTRON"))

	rows, err := q.SubjectAreas(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, cache.gets)
}

func TestEnrolledSections_BypassesCache(t *testing.T) {
	cache := newMemoryCache()
	q, mock := newMockQueries(t, db.Question, WithReferenceCache(cache))

	mock.ExpectQuery("CC_ENROLLMENTV00_VW").WithArgs("61889").WillReturnRows(sqlmock.NewRows([]string{"section_id"}))

	_, err := q.EnrolledSections(context.Background(), "61889", nil)
	require.NoError(t, err)
	assert.Zero(t, cache.gets)
}

func TestCrossListedCourseTitle(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	mock.ExpectQuery("FETCH FIRST 1 ROWS ONLY").WithArgs("AMERSTD 102").
		WillReturnRows(sqlmock.NewRows([]string{"course_title", "course_title_short"}).
			AddRow("Examining U.S. Cultures in Time", "US CULTURES IN TIME"))

	row, ok, err := q.CrossListedCourseTitle(context.Background(), " AMERSTD 102 ")
	require.NoError(t, err)
	require.True(t, ok)
	title, _ := row.String("course_title")
	assert.Equal(t, "Examining U.S. Cultures in Time", title)
}

func TestCrossListedCourseTitle_MissIsNotCached(t *testing.T) {
	cache := newMemoryCache()
	q, mock := newMockQueries(t, db.Question, WithReferenceCache(cache))
	cols := []string{"course_title", "course_title_short"}

	mock.ExpectQuery("FETCH FIRST 1 ROWS ONLY").WithArgs("amerstd 102").
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery("FETCH FIRST 1 ROWS ONLY").WithArgs("AMERSTD 102").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("Examining U.S. Cultures in Time", "US CULTURES IN TIME"))

	_, ok, err := q.CrossListedCourseTitle(context.Background(), "amerstd 102")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, cache.entries)

	row, ok, err := q.CrossListedCourseTitle(context.Background(), "AMERSTD 102")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Examining U.S. Cultures in Time", row["course_title"])
	assert.Contains(t, cache.entries, "edo:other_sql:course_title:AMERSTD 102")
}

func TestReferenceCache_KeysAreNamespacedByDialect(t *testing.T) {
	cache := newMemoryCache()
	for _, dialect := range []db.Dialect{db.Oracle, db.Postgres} {
		q, mock := newMockQueries(t, dialect, WithReferenceCache(cache))
		mock.ExpectQuery("subjectArea").
			WillReturnRows(sqlmock.NewRows([]string{"subjectarea"}).AddRow(dialect.Name))

		rows, err := q.SubjectAreas(context.Background())
		require.NoError(t, err)
		assert.Equal(t, dialect.Name, rows[0]["subjectarea"])
	}

	assert.Contains(t, cache.entries, "edo:oracle:subject_areas")
	assert.Contains(t, cache.entries, "edo:postgresql:subject_areas")
}

func TestInstructingLegacyTerms(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	mock.ExpectQuery(regexp.QuoteMeta(`instr."term-id" < ?`)).WithArgs("904715", legacyTermCutoff).
		WillReturnRows(sqlmock.NewRows([]string{"term_id"}).AddRow("2165").AddRow("2162"))

	rows, err := q.InstructingLegacyTerms(context.Background(), "904715")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2165", rows[0]["term_id"])
}

func TestTerms_FeedCatalog(t *testing.T) {
	q, mock := newMockQueries(t, db.Question)

	start := time.Date(2017, 8, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("CLC_TERMV00_VW").
		WillReturnRows(sqlmock.NewRows([]string{"TERM_YR", "TERM_CD", "TERM_NAME", "CURRENT_TB_TERM_FLAG", "TERM_START_DATE", "TERM_END_DATE"}).
			AddRow("2017", "D", "Fall 2017", "Y", start, start.AddDate(0, 4, 0)))

	rows, err := q.Terms(context.Background())
	require.NoError(t, err)

	catalog, err := terms.FromRows(rows)
	require.NoError(t, err)
	term, ok := catalog.ByID("2178")
	require.True(t, ok)
	assert.Equal(t, "fall-2017", term.Slug())
	assert.Equal(t, start, term.Start)
}

func TestQueries_CatalogStatements(t *testing.T) {
	ctx := context.Background()
	examDay := time.Date(2017, 12, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		match string
		args  []driver.Value
		cols  []string
		row   []driver.Value
		run   func(q *Queries) ([]db.Row, error)
		check func(t *testing.T, rows []db.Row)
	}{
		{
			name:  "term law unit totals",
			match: regexp.QuoteMeta(`tot."ACAD_CAREER" IN ('LAW')`),
			args:  []driver.Value{"61889", "2178"},
			cols:  []string{"total_earned_law_units", "total_enrolled_law_units"},
			row:   []driver.Value{"3", "4.5"},
			run: func(q *Queries) ([]db.Row, error) {
				row, ok, err := q.TermLawUnitTotals(ctx, "61889", []string{"LAW"}, "2178")
				if !ok {
					return nil, err
				}
				return []db.Row{row}, err
			},
			check: func(t *testing.T, rows []db.Row) {
				d, ok := rows[0].Decimal("total_enrolled_law_units")
				require.True(t, ok)
				assert.Equal(t, "4.5", d.String())
			},
		},
		{
			name:  "instructing sections with filter",
			match: regexp.QuoteMeta(`AND instr."term-id" IN ('2178')`),
			args:  []driver.Value{"904715"},
			cols:  []string{"section_id", "waitlist_limit", "start_date"},
			row:   []driver.Value{"31001", "20", "2017-08-23"},
			run: func(q *Queries) ([]db.Row, error) {
				return q.InstructingSections(ctx, "904715", terms.Filter{fall2017})
			},
			check: func(t *testing.T, rows []db.Row) {
				assert.Equal(t, int64(20), rows[0]["waitlist_limit"])
				assert.Equal(t, time.Date(2017, 8, 23, 0, 0, 0, 0, time.UTC), rows[0]["start_date"])
			},
		},
		{
			name:  "section final exams",
			match: "CLC_FINAL_EXAM_INFOV00_VW",
			args:  []driver.Value{"2178", "31001"},
			cols:  []string{"exam_date", "exam_start_time", "exam_type"},
			row:   []driver.Value{examDay.Add(13 * time.Hour), "2017-12-14 15:00:00", "Y "},
			run: func(q *Queries) ([]db.Row, error) {
				return q.SectionFinalExams(ctx, "2178", "31001")
			},
			check: func(t *testing.T, rows []db.Row) {
				assert.Equal(t, examDay, rows[0]["exam_date"])
				assert.Equal(t, examDay.Add(15*time.Hour), rows[0]["exam_start_time"])
				assert.Equal(t, "Y", rows[0]["exam_type"])
			},
		},
		{
			name:  "law enrollment",
			match: regexp.QuoteMeta(`enr."RQMNT_DESIGNTN" = ?`),
			args:  []driver.Value{"61889", "LAW", "2178", "31001", "LPR"},
			cols:  []string{"units_taken_law", "units_earned_law", "rqmnt_desg_descr"},
			row:   []driver.Value{"3", "3", "Professional Responsibility"},
			run: func(q *Queries) ([]db.Row, error) {
				row, ok, err := q.LawEnrollment(ctx, "61889", "LAW", "2178", "31001", "LPR")
				if !ok {
					return nil, err
				}
				return []db.Row{row}, err
			},
			check: func(t *testing.T, rows []db.Row) {
				assert.Equal(t, "Professional Responsibility", rows[0]["rqmnt_desg_descr"])
			},
		},
		{
			name:  "transfer credit",
			match: "CLC_TRANSFER_CREDIT_SCHLV00_VW",
			args:  []driver.Value{"61889"},
			cols:  []string{"career", "transfer_units", "law_transfer_units"},
			row:   []driver.Value{"UGRD", "8.0", nil},
			run: func(q *Queries) ([]db.Row, error) {
				return q.TransferCreditDetailed(ctx, "61889")
			},
			check: func(t *testing.T, rows []db.Row) {
				assert.True(t, rows[0].IsNull("law_transfer_units"))
			},
		},
		{
			name:  "associated secondary sections",
			match: regexp.QuoteMeta(`sec."primaryAssociatedSectionId" = ?`),
			args:  []driver.Value{"2178", "31001"},
			cols:  []string{"section_id", "primary"},
			row:   []driver.Value{"31005", "false"},
			run: func(q *Queries) ([]db.Row, error) {
				return q.AssociatedSecondarySections(ctx, "2178", "31001")
			},
			check: func(t *testing.T, rows []db.Row) {
				assert.Equal(t, "false", rows[0]["primary"])
			},
		},
		{
			name:  "section instructors",
			match: "ASSIGNEDINSTRUCTORV00_VW",
			args:  []driver.Value{"2178", "31001"},
			cols:  []string{"ldap_uid", "role_code"},
			row:   []driver.Value{"904715", "PI"},
			run: func(q *Queries) ([]db.Row, error) {
				return q.SectionInstructors(ctx, "2178", "31001")
			},
		},
		{
			name:  "enrolled students",
			match: regexp.QuoteMeta(`enr."CLASS_SECTION_ID" = ?`),
			args:  []driver.Value{"31001", "2178"},
			cols:  []string{"student_id", "waitlist_position"},
			row:   []driver.Value{"11667051", nil},
			run: func(q *Queries) ([]db.Row, error) {
				return q.EnrolledStudents(ctx, "31001", "2178")
			},
		},
		{
			name:  "sections by ids",
			match: regexp.QuoteMeta(`sec."id" IN ('31001','31002')`),
			args:  []driver.Value{"2178"},
			cols:  []string{"section_id"},
			row:   []driver.Value{"31001"},
			run: func(q *Queries) ([]db.Row, error) {
				return q.SectionsByIDs(ctx, "2178", []string{"31001", "31002"})
			},
		},
		{
			name:  "reserved capacity count",
			match: "CLASS_RESERVED_SEATSV00_VW",
			args:  []driver.Value{"2178", "31001"},
			cols:  []string{"reserved_seating_rules_count"},
			row:   []driver.Value{"2"},
			run: func(q *Queries) ([]db.Row, error) {
				return q.SectionReservedCapacityCount(ctx, "2178", "31001")
			},
			check: func(t *testing.T, rows []db.Row) {
				assert.Equal(t, int64(2), rows[0]["reserved_seating_rules_count"])
			},
		},
		{
			name:  "student term cpp",
			match: "STUDENT_TERM_CPPV00_VW",
			args:  []driver.Value{"11667051"},
			cols:  []string{"term_id", "acad_plan"},
			row:   []driver.Value{"2178", "25000U"},
			run: func(q *Queries) ([]db.Row, error) {
				return q.StudentTermCPP(ctx, "11667051")
			},
		},
		{
			name:  "careers",
			match: "CLC_STDNT_CAREERV00_VW",
			args:  []driver.Value{"61889"},
			cols:  []string{"acad_career", "total_cumulative_units"},
			row:   []driver.Value{"UGRD", 98.5},
			run: func(q *Queries) ([]db.Row, error) {
				return q.Careers(ctx, "61889")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, mock := newMockQueries(t, db.Question)
			mock.ExpectQuery(tt.match).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows(tt.cols).AddRow(tt.row...))

			rows, err := tt.run(q)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			if tt.check != nil {
				tt.check(t, rows)
			}
		})
	}
}
