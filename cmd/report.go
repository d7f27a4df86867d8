package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"missionreport/logger"
)

var (
	reportMissionID int64
	reportZip       bool
	reportOut       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Renders a mission report or attachment archive to a file",
	Example: `  missionreport report --mission 3
  missionreport report --mission 3 --zip --out ./out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportMissionID <= 0 {
			return fmt.Errorf("--mission is required")
		}
		svc, err := buildServices(cmd.Context())
		if err != nil {
			return err
		}
		out, err := svc.reports.Generate(cmd.Context(), reportMissionID, reportZip)
		if err != nil {
			return fmt.Errorf("generating report for mission %d: %w", reportMissionID, err)
		}

		target := out.Filename
		if reportOut != "" {
			target = reportOut
			if info, err := os.Stat(reportOut); err == nil && info.IsDir() {
				target = filepath.Join(reportOut, out.Filename)
			}
		}
		if err := os.WriteFile(target, out.Body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		logger.Info("Wrote %s (%d bytes)", target, len(out.Body))
		fmt.Fprintln(cmd.OutOrStdout(), target)
		return nil
	},
}

func init() {
	reportCmd.Flags().Int64VarP(&reportMissionID, "mission", "m", 0, "mission id")
	reportCmd.Flags().BoolVar(&reportZip, "zip", false, "write the attachment archive instead of the document")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file or directory (default: generated name in the current directory)")
	rootCmd.AddCommand(reportCmd)
}
