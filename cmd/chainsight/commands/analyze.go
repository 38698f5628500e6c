package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"chainsight/internal/bottleneck"
	"chainsight/internal/engine"
	"chainsight/internal/recommend"

	"github.com/spf13/cobra"
)

var analyzeKind string

// analyzeCmd runs a single analysis over a JSON payload file and prints the
// result. File parsing lives here; the engine itself never touches files.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run a one-shot analysis of a JSON payload",
	Long: `Reads a JSON payload from a file and prints the analysis result.

The payload shape depends on --kind:
  dataset  {"columns": [...], "rows": [{...}, ...]}
  events   [{"timestamp": "...", "step": "...", "delay": ...}, ...]
  kpi      {"cost_of_goods": ..., "average_inventory": ..., ...}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		var result any
		switch analyzeKind {
		case "dataset":
			var table engine.Table
			if err := json.Unmarshal(payload, &table); err != nil {
				return fmt.Errorf("invalid dataset payload: %w", err)
			}
			result, err = orchestrator.AnalyzeDataset(table)
		case "events":
			var events []bottleneck.RawEvent
			if err := json.Unmarshal(payload, &events); err != nil {
				return fmt.Errorf("invalid events payload: %w", err)
			}
			result, err = orchestrator.AnalyzeEvents(events)
		case "kpi":
			var input recommend.KPIInput
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("invalid kpi payload: %w", err)
			}
			result = orchestrator.AnalyzeKPIs(input)
		default:
			return fmt.Errorf("unknown kind %q (expected dataset, events or kpi)", analyzeKind)
		}
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeKind, "kind", "k", "dataset", "payload kind: dataset, events or kpi")
	rootCmd.AddCommand(analyzeCmd)
}
