package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"edoquery/internal/milestones"
	"edoquery/internal/terms"
	"edoquery/pkg/db"
)

func newMilestoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "milestone [code] [status]",
		Short: "Describe academic-progress milestones",
		Example: `  # Every milestone in display order
  edoquery milestone

  # One milestone with its status and form notice
  edoquery milestone AAGADVMAS1 N`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := milestoneRows(args)
			if err != nil {
				return err
			}
			return renderRows(cmd.OutOrStdout(), rows, a.format)
		},
	}
}

func milestoneRows(args []string) ([]db.Row, error) {
	if len(args) == 0 {
		all := milestones.All()
		rows := make([]db.Row, 0, len(all))
		for _, d := range all {
			rows = append(rows, db.Row{"code": d.Code, "description": d.Description, "order": int64(d.Order)})
		}
		return rows, nil
	}

	d, ok := milestones.Lookup(args[0])
	if !ok {
		return nil, fmt.Errorf("unknown milestone %q", args[0])
	}
	row := db.Row{"code": d.Code, "description": d.Description, "order": int64(d.Order)}
	if len(args) == 2 {
		row["status"] = nil
		if s, ok := milestones.StatusOf(args[1]); ok {
			row["status"] = s
		}
		row["form_notification"] = nil
		if n, ok := milestones.FormNotificationOf(args[0], args[1]); ok {
			row["form_notification"] = n
		}
	}
	return []db.Row{row}, nil
}

func newTermsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Show academic term definitions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known terms, marking the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.Terms(cmd.Context())
			if err != nil {
				return err
			}
			now, err := a.Now()
			if err != nil {
				return err
			}
			current, _ := catalog.Current(now)
			return renderRows(cmd.OutOrStdout(), termRows(catalog.All(), current), a.format)
		},
	})
	return cmd
}

func termRows(ts []terms.Term, current terms.Term) []db.Row {
	rows := make([]db.Row, 0, len(ts))
	for _, t := range ts {
		id := t.CampusSolutionsID()
		rows = append(rows, db.Row{
			"term_id":    id,
			"slug":       t.Slug(),
			"name":       strings.TrimSpace(t.Name),
			"start_date": t.Start,
			"end_date":   t.End,
			"current":    id == current.CampusSolutionsID(),
		})
	}
	return rows
}
