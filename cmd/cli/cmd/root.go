package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "drivectl",
	Short: "Drivectl is a command line tool for operating the driveplane task drive engine",
	Long: `drivectl is the command-line interface for the driveplane task drive engine.

A drive session is an ordered queue of purchase tasks. Users work through the
queue one task at a time; administrators can insert combo tasks anywhere in it
and the engine renumbers the queue and keeps the current-task pointer consistent.

Common workflows:

  Start a session:
    drivectl session start --tier bronze

  Inspect the queue:
    drivectl session show <session-id>

  Preview, then insert a combo right after the current task:
    drivectl combo preview <session-id> --anchor after_current --product <id> --name "Lucky combo"
    drivectl combo insert  <session-id> --anchor after_current --product <id> --name "Lucky combo" --expected-version 4

  Work the current task:
    drivectl task purchase <task-id>
    drivectl task complete <task-id>
    drivectl task rate <task-id> --type manual --stars 5 --review "great"

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    DRIVEPLANE_URL      API endpoint (default: http://localhost:6161)
    DRIVEPLANE_TOKEN    Account API key (or the system secret for "account create")`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".drivectl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".drivectl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "DRIVEPLANE_VARNAME"
	viper.SetEnvPrefix("DRIVEPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// newClient builds a client from the configured url and token.
// It prints a hint and returns false when no token is set.
func newClient(cmd *cobra.Command) (*DriveClient, bool) {
	token := viper.GetString("token")
	if token == "" {
		cmd.Println("API token not found. Please set it using the --token flag or the DRIVEPLANE_TOKEN environment variable")
		return nil, false
	}
	return NewDriveClient(viper.GetString("url"), token), true
}

// printError reports a failed call, with the engine code when the API sent one.
func printError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		if apiErr.Code != "" {
			cmd.Printf("Error (%d %s): %s\n", apiErr.StatusCode, apiErr.Code, apiErr.Message)
			return
		}
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

// expectedVersion returns the --expected-version flag, or nil when it was not given.
func expectedVersion(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("expected-version") {
		return nil
	}
	v, _ := cmd.Flags().GetInt64("expected-version")
	return &v
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.drivectl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "Driveplane Controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API Token for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json or yaml")
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}
