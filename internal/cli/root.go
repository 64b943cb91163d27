// Package cli wires the ingestion pipeline and the retrieval loop into
// cobra commands.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/internal/config"
)

var (
	cfgFile string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document question answering over a remote vector store",
	Long: `docqa ingests documents (PDF, DOCX, TXT, JSON) into a Qdrant
collection and answers questions from the retrieved chunks, with an optional
corrective retrieval loop that rewrites the question when the context is
judged insufficient.

Example usage:
  docqa ingest                     # Upload everything in the configured directory
  docqa ask -q "who is Dr. Doe?"   # Answer one question
  docqa ask                        # Interactive session`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return cfg.Validate()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}
