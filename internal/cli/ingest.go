package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/domain"
	"docqa/internal/extractor"
	"docqa/internal/service"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Upload documents into the vector store",
	Long: `Process every PDF, DOCX, TXT and JSON file in the upload directory:
extract text, chunk it, embed each chunk and upsert the vectors. Files whose
name is already present in the collection are skipped, so re-running is safe.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "upload directory (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := ingestDir
	if dir == "" {
		dir = cfg.Ingest.Dir
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("upload directory: %w", err)
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}

	ing := service.NewIngestor(extractor.New(), embedder, store, service.IngestorOptions{
		ChunkSize: cfg.Ingest.ChunkSize,
		Workers:   cfg.Ingest.Workers,
	})

	bar := progressbar.NewOptions(-1,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
	)
	ing.OnReport(func(r domain.IngestReport) {
		_ = bar.Add(1)
	})

	reports, err := ing.IngestDirectory(cmd.Context(), dir)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	uploaded := 0
	for _, r := range reports {
		switch r.Status {
		case domain.StatusUploaded:
			fmt.Printf("Uploaded %d vectors for %s\n", r.Vectors, r.Source)
			uploaded++
		case domain.StatusSkipped:
			fmt.Printf("Skipping %q - already uploaded\n", r.Source)
		case domain.StatusNoContent:
			fmt.Printf("No content found in %q\n", r.Source)
		case domain.StatusFailed:
			fmt.Printf("Failed %q: %v\n", r.Source, r.Err)
		}
	}
	fmt.Printf("Done: %d of %d files uploaded\n", uploaded, len(reports))
	return nil
}
