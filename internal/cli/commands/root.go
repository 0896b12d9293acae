// Package commands defines the learnnova CLI command tree.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "learnnova",
	Short:   "LearnNova study assistant CLI",
	Version: version,
	Long: `A terminal client for the LearnNova study platform. Chat with the study
assistant, keep threads synced between this machine and your account, upload
study documents and quiz yourself on their summaries.

Threads always live locally under ~/.learnnova first; with a SESSION_COOKIE
set they are mirrored to your account in the background.`,
	Example: `  # Start an interactive chat session
  $ learnnova chat

  # List threads, newest first
  $ learnnova threads list

  # Reconcile local threads with your account
  $ SESSION_COOKIE=... learnnova sync

  # Upload a document and quiz yourself on it
  $ learnnova upload notes.pdf
  $ learnnova quiz --size medium`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadDotEnv()
	},
}

// Execute runs the root command under the process signal context.
func Execute(ctx context.Context) error {
	rootCmd.SetVersionTemplate(fmt.Sprintf("learnnova version %s\n", version))
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(quizCmd)
}

// loadDotEnv pulls a .env file into the environment when one exists. A
// missing file is the normal case for an installed CLI and stays silent.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}
}
