package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"driveplane/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "COMPLETED":
		return colorGreen + "✓" + colorReset
	case "FAILED":
		return colorRed + "✗" + colorReset
	case "CURRENT":
		return colorYellow + "▶" + colorReset
	case "PENDING":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "COMPLETED", "ACTIVE":
		return icon + " " + colorGreen + status + colorReset
	case "FAILED":
		return icon + " " + colorRed + status + colorReset
	case "CURRENT", "RESET":
		return icon + " " + colorYellow + status + colorReset
	case "PENDING":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func taskTotal(products []api.ProductRef) float64 {
	var total float64
	for _, p := range products {
		total += p.Price
	}
	return total
}

func printProgress(cmd *cobra.Command, p api.Progress) {
	cmd.Printf("%sProgress:%s    %d%% (%d/%d original, %d/%d combo)\n", colorDim, colorReset,
		p.Percent, p.OriginalCompleted, p.OriginalRequired, p.ComboCompleted, p.ComboTotal)
}

func printSession(cmd *cobra.Command, s *api.SessionResponse) {
	cmd.Printf("%sDrive Session%s\n", colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, s.ID)
	cmd.Printf("%sUser:%s        %s\n", colorDim, colorReset, s.UserID)
	cmd.Printf("%sTier:%s        %s\n", colorDim, colorReset, s.TierAtStart)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(s.Status))
	cmd.Printf("%sVersion:%s     %d\n", colorDim, colorReset, s.Version)
	if !s.CreatedAt.IsZero() {
		cmd.Printf("%sStarted:%s     %s %s(%s ago)%s\n", colorDim, colorReset,
			s.CreatedAt.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relativeTime(s.CreatedAt), colorReset)
	}
	printProgress(cmd, s.Progress)
	cmd.Println()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tTASK ID\tKIND\tSTATUS\tPRODUCTS\tTOTAL\tNOTE")
	for _, t := range s.Tasks {
		note := t.ComboName
		if t.PurchaseInFlight {
			note = strings.TrimSpace(note + " [purchase in flight]")
		}
		if t.Attempts > 0 {
			note = strings.TrimSpace(fmt.Sprintf("%s [%d failed]", note, t.Attempts))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.2f\t%s\n",
			t.OrderInDrive, t.ID, t.Kind, t.Status, len(t.Products), taskTotal(t.Products), note)
	}
	w.Flush()
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		cmd.Printf("%s⚠ %s%s\n", colorYellow, w, colorReset)
	}
}

func outputFormat(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		return strings.ToLower(f.Value.String())
	}
	return strings.ToLower(viper.GetString("output"))
}

// printStructured writes v as JSON or YAML when --output asks for it and
// reports whether it did. YAML keys follow the JSON field names.
func printStructured(cmd *cobra.Command, v any) bool {
	switch outputFormat(cmd) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			cmd.Printf("Error: %v\n", err)
		}
		return true
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return true
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			cmd.Printf("Error: %v\n", err)
			return true
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			cmd.Printf("Error: %v\n", err)
		}
		enc.Close()
		return true
	default:
		return false
	}
}
