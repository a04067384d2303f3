package cmd

import (
	"fmt"
	"text/tabwriter"

	"driveplane/pkg/api"

	"github.com/spf13/cobra"
)

var comboCmd = &cobra.Command{
	Use:   "combo",
	Short: "Preview and insert combo tasks (admin)",
	Long: `Insert a combo task into a running session.

Anchors:
  beginning       position 1
  after_current   right after the current task
  end             after the last task
  after_task      right after --after-task
  custom          at --position

While the user has a purchase in flight the combo is placed after the current
task, whatever anchor was asked for. Use "combo preview" to see the resulting
queue first.`,
}

func comboRequest(cmd *cobra.Command) (api.ComboRequest, error) {
	flags := cmd.Flags()
	anchor, _ := flags.GetString("anchor")
	afterTask, _ := flags.GetString("after-task")
	position, _ := flags.GetInt("position")
	products, _ := flags.GetStringSlice("product")
	name, _ := flags.GetString("name")
	description, _ := flags.GetString("description")

	if len(products) == 0 {
		return api.ComboRequest{}, fmt.Errorf("at least one --product is required")
	}
	if name == "" {
		return api.ComboRequest{}, fmt.Errorf("--name is required")
	}

	return api.ComboRequest{
		Anchor:       anchor,
		AnchorTaskID: afterTask,
		Position:     position,
		ProductIDs:   products,
		Name:         name,
		Description:  description,
	}, nil
}

var comboPreviewCmd = &cobra.Command{
	Use:   "preview [session_id]",
	Short: "Show the queue an insertion would produce",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req, err := comboRequest(cmd)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		preview, err := client.PreviewCombo(args[0], req)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("%sPreview at version %d%s: combo lands at #%d", colorBold, preview.Version, colorReset, preview.AssignedOrder)
		if preview.AssignedOrder != preview.RequestedOrder {
			cmd.Printf(" (requested #%d)", preview.RequestedOrder)
		}
		cmd.Printf(", %d task(s) shift\n", preview.ShiftedCount)
		printWarnings(cmd, preview.Warnings)
		cmd.Println()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "#\tTASK ID\tKIND\tSTATUS\tTOTAL\t")
		for _, e := range preview.Entries {
			id, marker := e.TaskID, ""
			if e.IsNew {
				id, marker = "(new)", "◀"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\n", e.Order, id, e.Kind, e.Status, e.Total, marker)
		}
		w.Flush()
		cmd.Println()
		printProgress(cmd, preview.Progress)
	},
}

var comboInsertCmd = &cobra.Command{
	Use:   "insert [session_id]",
	Short: "Insert a combo task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req, err := comboRequest(cmd)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		req.ExpectedVersion = expectedVersion(cmd)

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.InsertCombo(args[0], req)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Combo inserted: %s at #%d (%d shifted, version %d)\n",
			result.TaskID, result.AssignedOrder, result.ShiftedCount, result.Version)
		printWarnings(cmd, result.Warnings)
	},
}

func init() {
	for _, c := range []*cobra.Command{comboPreviewCmd, comboInsertCmd} {
		c.Flags().String("anchor", "after_current", "Insertion anchor")
		c.Flags().String("after-task", "", "Anchor task id for --anchor after_task")
		c.Flags().Int("position", 0, "1-based position for --anchor custom")
		c.Flags().StringSlice("product", nil, "Product id (repeatable)")
		c.Flags().String("name", "", "Combo name (required)")
		c.Flags().String("description", "", "Combo description")
	}
	comboInsertCmd.Flags().Int64("expected-version", 0, "Reject the insert if the session moved past this version")

	comboCmd.AddCommand(comboPreviewCmd, comboInsertCmd)
	rootCmd.AddCommand(comboCmd)
}
