package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/faculty-realloc-api/internal/dto"
)

func generateCmd(app *cliApp) *cobra.Command {
	var req dto.ReallocateRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate substitute suggestions for a leave request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.container()
			if err != nil {
				return err
			}
			result, err := deps.Reallocations.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			fmt.Fprintf(out, "teaching days: %d, skipped: %d, unassigned: %d\n", result.TeachingDays, result.Skipped, len(result.Unassigned))
			for _, miss := range result.Unassigned {
				best := "n/a"
				if miss.BestScore != nil {
					best = fmt.Sprintf("%d", *miss.BestScore)
				}
				fmt.Fprintf(out, "  unassigned %s period %d slot %s (best score %s)\n", miss.Date, miss.PeriodNumber, miss.TimetableSlotID, best)
			}
			if req.DryRun {
				for _, s := range result.Suggestions {
					fmt.Fprintf(out, "  %s slot %s -> %s (%s)\n", s.ReallocationDate.Format("2006-01-02"), s.TimetableSlotID, s.SubstituteFacultyID, s.Notes)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.LeaveRequestID, "leave", "", "Leave request ID (required)")
	cmd.Flags().StringVar(&req.FacultyID, "faculty", "", "Absent faculty ID (required)")
	cmd.Flags().StringVar(&req.StartDate, "from", "", "First day of absence, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&req.EndDate, "to", "", "Last day of absence, YYYY-MM-DD (required)")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Compute suggestions without storing them")
	for _, name := range []string{"leave", "faculty", "from", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
