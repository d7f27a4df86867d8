package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"missionreport/core"
	"missionreport/database"
	"missionreport/logger"
)

var reconcileMissionID int64

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repairs the stored test case and supporting data orders of a mission",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reconcileMissionID <= 0 {
			return fmt.Errorf("--mission is required")
		}
		ctx := cmd.Context()
		if _, err := database.GetMissionByID(ctx, reconcileMissionID); err != nil {
			return err
		}
		svc, err := buildServices(ctx)
		if err != nil {
			return err
		}

		tcs, err := database.ListTestCasesByMission(ctx, reconcileMissionID)
		if err != nil {
			return err
		}
		_, dirty, err := svc.testOrder.Reconcile(ctx, reconcileMissionID, core.Entries(tcs))
		if err != nil {
			return err
		}
		repaired := 0
		if dirty {
			repaired++
		}
		for _, tc := range tcs {
			items, err := database.ListSupportingDataByTestCase(ctx, tc.ID)
			if err != nil {
				return err
			}
			_, dirty, err := svc.dataOrder.Reconcile(ctx, tc.ID, core.Entries(items))
			if err != nil {
				return err
			}
			if dirty {
				repaired++
			}
		}
		logger.Info("Reconciled mission %d: %d of %d orders repaired", reconcileMissionID, repaired, len(tcs)+1)
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d orders repaired\n", repaired, len(tcs)+1)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().Int64VarP(&reconcileMissionID, "mission", "m", 0, "mission id")
	rootCmd.AddCommand(reconcileCmd)
}
