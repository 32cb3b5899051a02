package edo

import (
	"context"

	"edoquery/pkg/db"
)

// Terms returns the term definitions published by the database, in
// chronological order. terms.FromRows turns the result into a catalog.
func (q *Queries) Terms(ctx context.Context) ([]db.Row, error) {
	query := `
SELECT
  term."TERM_YR" AS term_yr,
  term."TERM_CD" AS term_cd,
  term."TERM_NAME" AS term_name,
  term."TERM_STATUS" AS term_status,
  term."TERM_STATUS_DESC" AS term_status_desc,
  term."CURRENT_TB_TERM_FLAG" AS current_tb_term_flag,
  term."TERM_START_DATE" AS term_start_date,
  term."TERM_END_DATE" AS term_end_date
FROM SISEDO.CLC_TERMV00_VW term
ORDER BY term_start_date`
	return q.list(ctx, "terms", query, termDefinitionSchema)
}
