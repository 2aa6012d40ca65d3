package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "meeting-pipeline",
	Short: "Meeting transcription and analysis pipeline",
	Long: `meeting-pipeline turns recorded or streamed meetings into
speaker-attributed transcripts, classifies every segment (sentiment,
question detection, speaker emotion), and aggregates per-speaker,
per-topic and whole-meeting statistics.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, ./configs/config.yaml)")
}

// newLogger builds the process logger from config.
func newLogger(level, format string) *logrus.Entry {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return logrus.NewEntry(log)
}
