package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnnova/learnnova-cli/internal/cli/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "upload a study document for summarization",
	Long: `Upload a study document. The backend extracts its text, produces a
summary and prints it; 'learnnova quiz' can then generate questions from the
current thread or a saved summary.`,
	Example: `  $ learnnova upload notes.pdf
  $ learnnova upload chapter-3.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.SilenceUsage = true
}

func runUpload(cmd *cobra.Command, args []string) error {
	_, logger, client, err := newClientStack()
	if err != nil {
		ui.PrintError("startup failed: %v", err)
		return err
	}
	defer logger.Sync()

	ui.PrintInfo("uploading %s ...", args[0])
	result, err := client.UploadDocument(cmd.Context(), args[0])
	if err != nil {
		ui.PrintError("upload failed: %v", err)
		return err
	}

	ui.PrintSuccess("%s uploaded (%s, %d bytes)", result.Filename, result.Kind, result.Size)
	if result.Summary != "" {
		fmt.Println()
		fmt.Println(ui.Styles.Bold.Render("SUMMARY"))
		fmt.Println(result.Summary)
	}
	return nil
}
