package cmd

import (
	"driveplane/pkg/api"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage API accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin or user account",
	Long: `Create an account and print its API key. The key is shown only once.
This call is authorized with the controller's system secret, passed as --token.

Example:
  drivectl account create --name "ops" --role admin --token $SYSTEM_SECRET`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.CreateAccount(api.CreateAccountRequest{Name: name, Role: role})
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Account created: %s (%s)\n", result.ID, result.Role)
		cmd.Printf("  API key: %s\n", result.ApiKey)
		cmd.Println("  Store it now, it will not be shown again.")
	},
}

func init() {
	accountCreateCmd.Flags().String("name", "", "Account name (required)")
	accountCreateCmd.Flags().String("role", "user", "Account role: admin or user")

	accountCmd.AddCommand(accountCreateCmd)
	rootCmd.AddCommand(accountCmd)
}
