package terms

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edoquery/pkg/db"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTerm_CampusSolutionsID(t *testing.T) {
	tests := []struct {
		year int
		code string
		want string
		slug string
	}{
		{year: 2017, code: "D", want: "2178", slug: "fall-2017"},
		{year: 2018, code: "B", want: "2182", slug: "spring-2018"},
		{year: 2018, code: "c", want: "2185", slug: "summer-2018"},
		{year: 2007, code: "B", want: "2072", slug: "spring-2007"},
		{year: 2018, code: "X", want: "", slug: ""},
	}
	for _, tt := range tests {
		term := Term{Year: tt.year, Code: tt.code}
		assert.Equal(t, tt.want, term.CampusSolutionsID(), "%d %s", tt.year, tt.code)
		assert.Equal(t, tt.slug, term.Slug())
	}
}

func TestParseCampusSolutionsID(t *testing.T) {
	year, code, err := ParseCampusSolutionsID("2188")
	require.NoError(t, err)
	assert.Equal(t, 2018, year)
	assert.Equal(t, "D", code)

	_, _, err = ParseCampusSolutionsID("2189")
	assert.ErrorIs(t, err, ErrUnknownSeason)

	for _, bad := range []string{"", "188", "3188", "2x88"} {
		_, _, err = ParseCampusSolutionsID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilter(t *testing.T) {
	var none Filter
	assert.True(t, none.Empty())
	assert.Empty(t, none.IDs())

	f := Filter{{Year: 2018, Code: "B"}, {Year: 2018, Code: "D"}}
	assert.False(t, f.Empty())
	assert.Equal(t, []string{"2182", "2188"}, f.IDs())
}

func TestCatalog(t *testing.T) {
	c, err := NewCatalog([]Term{
		{Year: 2018, Code: "D", Start: date(2018, 8, 15), End: date(2018, 12, 14)},
		{Year: 2018, Code: "b", Start: date(2018, 1, 9), End: date(2018, 5, 11)},
		{Year: 2017, Code: "D", Start: date(2017, 8, 16), End: date(2017, 12, 15)},
	})
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "2178", all[0].CampusSolutionsID())
	assert.Equal(t, "2188", all[2].CampusSolutionsID())

	spring, ok := c.Campus("Spring-2018")
	assert.True(t, ok)
	assert.Equal(t, "B", spring.Code)

	_, ok = c.ByID("2182")
	assert.True(t, ok)
	_, ok = c.Campus("fall-1999")
	assert.False(t, ok)

	current, ok := c.Current(date(2018, 3, 1))
	assert.True(t, ok)
	assert.Equal(t, "2182", current.CampusSolutionsID())

	next, ok := c.Current(date(2018, 6, 1))
	assert.True(t, ok)
	assert.Equal(t, "2188", next.CampusSolutionsID())

	_, ok = c.Current(date(2019, 6, 1))
	assert.False(t, ok)

	f, err := c.Filter("spring-2018", "fall-2018")
	require.NoError(t, err)
	assert.Equal(t, []string{"2182", "2188"}, f.IDs())

	_, err = c.Filter("winter-2018")
	assert.Error(t, err)
}

func TestCatalog_CurrentOnLastDay(t *testing.T) {
	c, err := NewCatalog([]Term{
		{Year: 2017, Code: "D", Start: date(2017, 8, 16), End: date(2017, 12, 15)},
		{Year: 2018, Code: "B", Start: date(2018, 1, 9), End: date(2018, 5, 11)},
	})
	require.NoError(t, err)

	tests := []struct {
		at   time.Time
		want string
	}{
		{date(2017, 12, 15), "fall-2017"},
		{date(2017, 12, 15).Add(10 * time.Hour), "fall-2017"},
		{date(2017, 12, 16).Add(-time.Nanosecond), "fall-2017"},
		{date(2017, 12, 16), "spring-2018"},
	}
	for _, tt := range tests {
		current, ok := c.Current(tt.at)
		require.True(t, ok, tt.at)
		assert.Equal(t, tt.want, current.Slug(), tt.at)
	}
}

func TestNewCatalog_RejectsUnknownSeason(t *testing.T) {
	_, err := NewCatalog([]Term{{Year: 2018, Code: "Q"}})
	assert.ErrorIs(t, err, ErrUnknownSeason)
}

func TestLoadDefinitionsFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "terms.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
terms:
  - term_yr: 2017
    term_cd: D
    term_name: Fall
    term_status: FT
    term_status_desc: Current Fall
    current_tb_term_flag: "N"
    term_start_date: 2017-08-16T00:00:00Z
    term_end_date: 2017-12-15T00:00:00Z
`), 0o600))

	c, err := LoadDefinitionsFile(yamlPath)
	require.NoError(t, err)
	fall, ok := c.Campus("fall-2017")
	require.True(t, ok)
	assert.Equal(t, "Current Fall", fall.StatusDesc)
	assert.Equal(t, date(2017, 8, 16), fall.Start)

	jsonPath := filepath.Join(dir, "terms.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"terms": [{"term_yr": 2018, "term_cd": "B", "term_name": "Spring"}]}`), 0o600))

	c, err = LoadDefinitionsFile(jsonPath)
	require.NoError(t, err)
	spring, ok := c.ByID("2182")
	require.True(t, ok)
	assert.Equal(t, "Spring", spring.Name)

	_, err = LoadDefinitionsFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFromRows(t *testing.T) {
	rows := []db.Row{
		{
			"term_yr":              int64(2018),
			"term_cd":              "C",
			"term_name":            "Summer",
			"current_tb_term_flag": "N",
			"term_start_date":      date(2018, 5, 21),
			"term_end_date":        date(2018, 8, 10),
		},
	}
	c, err := FromRows(rows)
	require.NoError(t, err)
	summer, ok := c.Campus("summer-2018")
	require.True(t, ok)
	assert.Equal(t, "Summer", summer.Name)
	assert.Equal(t, date(2018, 8, 10), summer.End)

	_, err = FromRows([]db.Row{{"term_cd": "C"}})
	assert.Error(t, err)
}
