package cmd

import (
	"fmt"
	"text/tabwriter"

	"driveplane/pkg/api"

	"github.com/spf13/cobra"
)

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Inspect and configure membership tiers",
}

var tierListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tier configurations",
	Run: func(cmd *cobra.Command, args []string) {
		client, ok := newClient(cmd)
		if !ok {
			return
		}

		tiers, err := client.ListTiers()
		if err != nil {
			printError(cmd, err)
			return
		}
		if printStructured(cmd, tiers) {
			return
		}
		if len(tiers) == 0 {
			cmd.Println("No tiers configured.")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIER\tTASKS\tSINGLE BAND\tCOMBO BAND\tCOMBOS\tRATE\tACTIVE")
		for _, t := range tiers {
			fmt.Fprintf(w, "%s\t%d\t%.2f-%.2f\t%.2f-%.2f\t%d\t%.2f%%\t%t\n",
				t.TierName, t.QuantityLimit,
				t.MinPriceSingle, t.MaxPriceSingle,
				t.MinPriceCombo, t.MaxPriceCombo,
				t.NumComboTasks, t.CommissionRate*100, t.IsActive)
		}
		w.Flush()
	},
}

var tierSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Create or replace a tier configuration (admin)",
	Long: `Write a tier's policy row. Existing sessions keep the task count they started with.

Example:
  drivectl tier set gold --tasks 40 --single 50:500 --combo 300:3000 --combos 3 --rate 0.06`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		tasks, _ := flags.GetInt("tasks")
		combos, _ := flags.GetInt("combos")
		rate, _ := flags.GetFloat64("rate")
		single, _ := flags.GetString("single")
		combo, _ := flags.GetString("combo")
		inactive, _ := flags.GetBool("inactive")

		req := api.TierRequest{
			QuantityLimit:  tasks,
			NumSingleTasks: tasks,
			NumComboTasks:  combos,
			CommissionRate: rate,
		}
		var err error
		if req.MinPriceSingle, req.MaxPriceSingle, err = parseBand(single); err != nil {
			cmd.Printf("Error: --single: %v\n", err)
			return
		}
		if req.MinPriceCombo, req.MaxPriceCombo, err = parseBand(combo); err != nil {
			cmd.Printf("Error: --combo: %v\n", err)
			return
		}
		if inactive {
			active := false
			req.IsActive = &active
		}

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.PutTier(args[0], req)
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Tier %s saved (%d tasks)\n", result.TierName, result.QuantityLimit)
	},
}

// parseBand parses "min:max".
func parseBand(s string) (float64, float64, error) {
	var min, max float64
	if _, err := fmt.Sscanf(s, "%f:%f", &min, &max); err != nil {
		return 0, 0, fmt.Errorf("expected min:max, got %q", s)
	}
	return min, max, nil
}

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalog",
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog product (admin)",
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		price, _ := cmd.Flags().GetFloat64("price")
		commission, _ := cmd.Flags().GetFloat64("commission")

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		client, ok := newClient(cmd)
		if !ok {
			return
		}

		result, err := client.CreateProduct(api.CreateProductRequest{Name: name, Price: price, Commission: commission})
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Product added: %s (%s, %.2f)\n", result.ID, result.Name, result.Price)
	},
}

func init() {
	tierSetCmd.Flags().Int("tasks", 0, "Number of original tasks per session")
	tierSetCmd.Flags().Int("combos", 0, "Expected number of combo tasks per session")
	tierSetCmd.Flags().Float64("rate", 0, "Commission rate, e.g. 0.05")
	tierSetCmd.Flags().String("single", "0:0", "Single task price band, min:max")
	tierSetCmd.Flags().String("combo", "0:0", "Combo product price band, min:max")
	tierSetCmd.Flags().Bool("inactive", false, "Disable the tier for new sessions")

	productAddCmd.Flags().String("name", "", "Product name (required)")
	productAddCmd.Flags().Float64("price", 0, "Product price")
	productAddCmd.Flags().Float64("commission", 0, "Catalog commission")

	tierCmd.AddCommand(tierListCmd, tierSetCmd)
	productCmd.AddCommand(productAddCmd)
	rootCmd.AddCommand(tierCmd, productCmd)
}
