package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lawlawrd/polly/internal/entity"
	"github.com/lawlawrd/polly/internal/pipeline"
	"github.com/lawlawrd/polly/internal/policy"
)

var (
	scanThreshold string
	scanTypes     string
	scanAllow     string
	scanDeny      string
	scanEntities  string
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Run the filter pipeline over a text file (or stdin) and print the entity list as JSON",
	Long: `Scan reads source text from a file or stdin and applies the filter
pipeline. Without --entities only the deny-term scanner produces findings
(the redaction floor); with --entities a detector output dump (JSON array)
is filtered and merged as the primary stream.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanThreshold, "threshold", "", "confidence threshold in [0,1] (default 0.5)")
	scanCmd.Flags().StringVar(&scanTypes, "entities", "", "entity types to keep (comma or space separated; empty keeps all)")
	scanCmd.Flags().StringVar(&scanAllow, "allow", "", "allow-list terms (comma or newline separated)")
	scanCmd.Flags().StringVar(&scanDeny, "deny", "", "deny-list terms (comma or newline separated)")
	scanCmd.Flags().StringVar(&scanEntities, "detector-output", "", "path to a detector output dump (JSON entity array)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	var source []byte
	var err error
	if len(args) == 1 {
		source, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading source: %w", err)
		}
	} else {
		source, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	var raw []entity.Entity
	if scanEntities != "" {
		data, err := os.ReadFile(scanEntities)
		if err != nil {
			return fmt.Errorf("reading detector output: %w", err)
		}
		raw, err = entity.Decode(data)
		if err != nil {
			return fmt.Errorf("decoding detector output: %w", err)
		}
	}

	settings := policy.NormalizeSettings(policy.SettingsInput{
		Threshold:   scanThreshold,
		EntityTypes: scanTypes,
		AllowText:   scanAllow,
		DenyText:    scanDeny,
	})

	merged, err := pipeline.New().Run(cmd.Context(), raw, string(source), settings)
	if err != nil {
		return err
	}

	log.Debug().
		Int("raw_count", len(raw)).
		Int("merged_count", len(merged)).
		Float64("threshold", settings.Threshold).
		Msg("scan_complete")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(merged)
}
