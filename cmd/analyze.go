package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pulseroom/meeting-pipeline/config"
)

var (
	analyzeMeetingID string
	analyzeOutput    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source>",
	Short: "Analyze a recorded meeting and print the aggregate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		log := newLogger(cfg.Logging.Level, cfg.Logging.Format)

		p, _, _, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}

		meetingID := analyzeMeetingID
		if meetingID == "" {
			meetingID = uuid.NewString()
		}

		ma, err := p.RunFull(cmd.Context(), args[0], meetingID)
		if err != nil {
			return err
		}

		out := os.Stdout
		if analyzeOutput != "" {
			f, err := os.Create(analyzeOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ma); err != nil {
			return err
		}
		if analyzeOutput != "" {
			fmt.Fprintf(os.Stderr, "analysis written to %s\n", analyzeOutput)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeMeetingID, "meeting-id", "", "meeting identifier (default: random UUID)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the analysis JSON to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
