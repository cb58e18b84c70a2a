package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photorestore/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check folders and external tools before a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			color := isTerminal(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkStatus(r, color), yesNo(!r.Optional), r.Detail})
			}
			fmt.Fprintln(out, renderTable("", []string{"Check", "Status", "Required", "Detail"}, rows, nil))

			if err := preflight.Err(results); err != nil {
				return err
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}
}

func checkStatus(r preflight.Result, color bool) string {
	switch {
	case r.Passed:
		return colorize("OK", ansiGreen, color)
	case r.Optional:
		return colorize("WARN", ansiYellow, color)
	default:
		return colorize("FAIL", ansiRed, color)
	}
}
