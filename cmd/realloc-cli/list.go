package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func listCmd(app *cliApp) *cobra.Command {
	var leaveID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored suggestions of a leave request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.container()
			if err != nil {
				return err
			}
			views, err := deps.Reallocations.ListByLeave(cmd.Context(), leaveID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tPERIOD\tSUBJECT\tSECTION\tSUBSTITUTE\tSCORE\tSTATUS")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\t%s\n",
					v.ReallocationDate.Format("2006-01-02"),
					v.PeriodNumber,
					v.SubjectCode,
					v.Section,
					v.SubstituteFacultyName,
					v.Score,
					v.Status,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d suggestions\n", len(views))
			return nil
		},
	}
	cmd.Flags().StringVar(&leaveID, "leave", "", "Leave request ID (required)")
	_ = cmd.MarkFlagRequired("leave")
	return cmd
}
