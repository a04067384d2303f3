package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"driveplane/pkg/api"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start and inspect drive sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a drive session",
	Long: `Start a drive session for the calling user. Administrators pass --user to
start one on a user's behalf.`,
	Run: func(cmd *cobra.Command, args []string) {
		tier, _ := cmd.Flags().GetString("tier")
		user, _ := cmd.Flags().GetString("user")

		if tier == "" {
			cmd.Println("Error: --tier is required")
			return
		}

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		session, err := client.StartSession(api.StartSessionRequest{Tier: tier, UserID: user})
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Session started: %s\n\n", session.ID)
		printSession(cmd, session)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session_id]",
	Short: "Show a session queue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, ok := newClient(cmd)
		if !ok {
			return
		}

		session, err := client.GetSession(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}
		if printStructured(cmd, session) {
			return
		}
		printSession(cmd, session)
	},
}

var sessionProgressCmd = &cobra.Command{
	Use:   "progress [session_id]",
	Short: "Show session progress",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, ok := newClient(cmd)
		if !ok {
			return
		}

		p, err := client.GetProgress(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}
		if printStructured(cmd, p) {
			return
		}
		printProgress(cmd, *p)
	},
}

var sessionLedgerCmd = &cobra.Command{
	Use:   "ledger [session_id]",
	Short: "List compensation records of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, ok := newClient(cmd)
		if !ok {
			return
		}

		ledger, err := client.GetLedger(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}
		if printStructured(cmd, ledger) {
			return
		}
		if len(ledger.Records) == 0 {
			cmd.Println("No compensation records yet.")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTASK ID\tTYPE\tAMOUNT\tREFUND\tTIER\tAT")
		for _, r := range ledger.Records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
				r.ID, r.TaskItemID, r.Type, r.Amount, r.Refund, r.TierAtTime, r.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		cmd.Printf("\nTotal compensation: %.2f (refunded %.2f)\n", ledger.TotalAmount, ledger.TotalRefunded)
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset [session_id]",
	Short: "Reset a session to its first task (admin)",
	Long:  `Return every task to PENDING and make the first task current. Compensation already paid is kept.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, ok := newClient(cmd)
		if !ok {
			return
		}

		session, err := client.ResetSession(args[0], api.VersionRequest{ExpectedVersion: expectedVersion(cmd)})
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Session reset (version %d)\n", session.Version)
	},
}

func init() {
	sessionStartCmd.Flags().String("tier", "", "Tier name (required)")
	sessionStartCmd.Flags().String("user", "", "User id (admins only)")
	sessionResetCmd.Flags().Int64("expected-version", 0, "Reject the reset if the session moved past this version")

	sessionCmd.AddCommand(sessionStartCmd, sessionShowCmd, sessionProgressCmd, sessionLedgerCmd, sessionResetCmd)
	rootCmd.AddCommand(sessionCmd)
}
