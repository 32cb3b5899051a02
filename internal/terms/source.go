package terms

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"edoquery/pkg/db"
)

type definitionsFile struct {
	Terms []Term `yaml:"terms"`
}

// LoadDefinitionsFile reads a term definitions document. JSON documents are
// accepted too since JSON is valid YAML.
func LoadDefinitionsFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read term definitions: %w", err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes a {"terms": [...]} document.
func ParseDefinitions(data []byte) (*Catalog, error) {
	var doc definitionsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode term definitions: %w", err)
	}
	return NewCatalog(doc.Terms)
}

// FromRows builds a Catalog from rows returned by the term definitions query.
// Rows must carry term_yr and term_cd; the remaining columns are optional.
func FromRows(rows []db.Row) (*Catalog, error) {
	ts := make([]Term, 0, len(rows))
	for i, r := range rows {
		year, ok := r.Int("term_yr")
		if !ok {
			return nil, fmt.Errorf("term row %d: missing term_yr", i)
		}
		code, ok := r.String("term_cd")
		if !ok {
			return nil, fmt.Errorf("term row %d: missing term_cd", i)
		}
		t := Term{Year: int(year), Code: strings.TrimSpace(code)}
		t.Name, _ = r.String("term_name")
		t.Status, _ = r.String("term_status")
		t.StatusDesc, _ = r.String("term_status_desc")
		t.CurrentFlag, _ = r.Flag("current_tb_term_flag")
		t.Start, _ = r.Time("term_start_date")
		t.End, _ = r.Time("term_end_date")
		ts = append(ts, t)
	}
	return NewCatalog(ts)
}
