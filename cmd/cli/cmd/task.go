package cmd

import (
	"driveplane/pkg/api"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Work the current task of a session",
}

var taskPurchaseCmd = &cobra.Command{
	Use:   "purchase [task_id]",
	Short: "Start the purchase of the current task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.BeginPurchase(args[0], api.VersionRequest{ExpectedVersion: expectedVersion(cmd)})
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("%s Purchase started for task #%d (%s)\n", statusIcon(result.Task.Status), result.Task.OrderInDrive, result.Task.ID)
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete [task_id]",
	Short: "Report the outcome of the current task's purchase",
	Long: `Complete the current task. With --failed the task stays current so the
purchase can be retried; no compensation is paid.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed, _ := cmd.Flags().GetBool("failed")
		outcome := "success"
		if failed {
			outcome = "failed"
		}

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.CompleteTask(args[0], api.CompleteTaskRequest{
			PurchaseOutcome: outcome,
			ExpectedVersion: expectedVersion(cmd),
		})
		if err != nil {
			printError(cmd, err)
			return
		}

		if !result.Success {
			cmd.Printf("%s Purchase failed, task #%d stays current (%d attempt(s))\n",
				statusIcon("FAILED"), result.Task.OrderInDrive, result.Task.Attempts)
			return
		}

		cmd.Printf("%s Task #%d completed: +%.2f commission, %.2f refunded\n",
			statusIcon(result.Task.Status), result.Task.OrderInDrive, result.CompensatedAmount, result.Refund)
		if result.NewCurrentTaskID != nil {
			cmd.Printf("  Next task: %s\n", *result.NewCurrentTaskID)
		} else {
			cmd.Println("  No tasks left in the queue.")
		}
		printProgress(cmd, result.Progress)
	},
}

var taskRateCmd = &cobra.Command{
	Use:   "rate [task_id]",
	Short: "Rate a completed task for a bonus",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		ratingType, _ := flags.GetString("type")
		stars, _ := flags.GetInt("stars")
		review, _ := flags.GetString("review")
		text, _ := flags.GetString("text")

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.SubmitRating(args[0], api.RatingRequest{
			RatingType:    ratingType,
			Stars:         stars,
			ReviewText:    review,
			GeneratedText: text,
		})
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Rating accepted: +%.2f bonus\n", result.BonusAmount)
	},
}

func init() {
	for _, c := range []*cobra.Command{taskPurchaseCmd, taskCompleteCmd} {
		c.Flags().Int64("expected-version", 0, "Reject the call if the session moved past this version")
	}
	taskCompleteCmd.Flags().Bool("failed", false, "Report a failed purchase")

	taskRateCmd.Flags().String("type", "manual", "Rating type: manual or ai")
	taskRateCmd.Flags().Int("stars", 0, "Stars, 1-5 (manual)")
	taskRateCmd.Flags().String("review", "", "Review text (manual)")
	taskRateCmd.Flags().String("text", "", "Generated review text (ai)")

	taskCmd.AddCommand(taskPurchaseCmd, taskCompleteCmd, taskRateCmd)
	rootCmd.AddCommand(taskCmd)
}
