package commands

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/learnnova/learnnova-cli/internal/api"
	"github.com/learnnova/learnnova-cli/internal/cli/ui"
	"github.com/learnnova/learnnova-cli/internal/config"
	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
	"github.com/learnnova/learnnova-cli/internal/store"
)

var (
	quizSize        string
	quizSummaryFile string
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "generate a quiz from a summary",
	Long: `Generate a multiple-choice quiz. The questions are built from the most
recent assistant reply of the current thread, or from a summary file saved
after an upload.`,
	Example: `  # Quiz on the current thread's last reply
  $ learnnova quiz

  # A bigger quiz over a saved summary
  $ learnnova quiz --size large --summary-file summary.txt`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

func init() {
	quizCmd.SilenceUsage = true
	quizCmd.Flags().StringVar(&quizSize, "size", "medium",
		"quiz size: "+strings.Join(api.QuizSizes, ", "))
	quizCmd.Flags().StringVar(&quizSummaryFile, "summary-file", "",
		"file holding the summary to quiz on instead of the current thread")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	if !slices.Contains(api.QuizSizes, quizSize) {
		err := fmt.Errorf("invalid --size %q (want one of %s)", quizSize, strings.Join(api.QuizSizes, ", "))
		ui.PrintError("%v", err)
		return err
	}

	cfg, logger, client, err := newClientStack()
	if err != nil {
		ui.PrintError("startup failed: %v", err)
		return err
	}
	defer logger.Sync()

	summary, err := quizSummary(cfg, logger)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	ui.PrintInfo("generating a %s quiz ...", quizSize)
	quiz, err := client.GenerateQuiz(cmd.Context(), summary, quizSize)
	if err != nil {
		ui.PrintError("quiz generation failed: %v", err)
		return err
	}
	if len(quiz.Questions) == 0 {
		ui.PrintInfo("the backend returned no questions for this summary")
		return nil
	}

	renderQuiz(quiz)
	return nil
}

// quizSummary picks the text to quiz on: the --summary-file when given,
// otherwise the last assistant reply of the current thread from the local
// cache. No network round trip is needed for either.
func quizSummary(cfg *config.Config, logger *zap.Logger) (string, error) {
	if quizSummaryFile != "" {
		data, err := os.ReadFile(quizSummaryFile)
		if err != nil {
			return "", fmt.Errorf("read summary file: %w", err)
		}
		summary := strings.TrimSpace(string(data))
		if summary == "" {
			return "", fmt.Errorf("summary file %s is empty", quizSummaryFile)
		}
		return summary, nil
	}

	snap, err := store.NewFileStore(cfg.Chat.StateFile, cfg.Chat.SaveDebounce, logger).Load()
	if err != nil {
		return "", err
	}
	thread, ok := snap.Threads[snap.CurrentThreadID]
	if !ok {
		return "", errors.New("no current thread; chat first or pass --summary-file")
	}
	reply, ok := chat.LastAssistantMessage(thread)
	if !ok {
		return "", errors.New("current thread has no assistant reply yet; pass --summary-file")
	}
	return reply.Content, nil
}

func renderQuiz(quiz api.Quiz) {
	keys := make([]string, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		fmt.Println()
		fmt.Println(ui.Styles.Bold.Render(fmt.Sprintf("%d. %s", i+1, q.Question)))
		for j, option := range q.Options {
			fmt.Printf("   %c) %s\n", 'A'+j, option)
		}
		if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
			keys = append(keys, fmt.Sprintf("%d-%c", i+1, 'A'+q.CorrectIndex))
		}
	}
	fmt.Println()
	fmt.Println(ui.Styles.Dim.Render("answer key: " + strings.Join(keys, " ")))
}
