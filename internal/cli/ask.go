package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docqa/internal/service"
	"docqa/internal/tui"
)

var (
	askQuestion  string
	askProfile   bool
	noCorrective bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question from the ingested documents",
	Long: `Embed the question, retrieve the nearest chunks and answer from the
retrieved context only. With corrective retrieval enabled, insufficient
context triggers a bounded rewrite-and-retry loop.

With no -q flag an interactive session is started.`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (omit for interactive mode)")
	askCmd.Flags().BoolVar(&askProfile, "profile", false, "return a structured doctor-profile JSON instead of prose")
	askCmd.Flags().BoolVar(&noCorrective, "no-corrective", false, "disable the corrective retrieval loop")
}

func runAsk(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}
	llm, err := newCompleter()
	if err != nil {
		return err
	}

	answerer := service.NewAnswerer(embedder, store, llm, service.AnswererOptions{
		TopK:         cfg.Retrieval.TopK,
		MaxRephrases: cfg.Retrieval.MaxRephrases,
		Corrective:   cfg.Retrieval.Corrective && !noCorrective,
	})

	if askQuestion == "" {
		m := tui.New(answerer)
		_, err := tea.NewProgram(m).Run()
		return err
	}

	var answer string
	if askProfile {
		answer, err = answerer.ExtractProfile(cmd.Context(), askQuestion)
	} else {
		answer, err = answerer.Answer(cmd.Context(), askQuestion)
	}
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
