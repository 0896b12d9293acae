package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnnova/learnnova-cli/internal/cli/ui"
	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "reconcile local threads with your account",
	Long: `Fetch account threads from the backend and merge them into the local
cache. Local copies win when both sides have the same thread, so edits made
offline are never clobbered. Without a SESSION_COOKIE the command reports the
local state unchanged.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.SilenceUsage = true
}

func runSync(cmd *cobra.Command, args []string) error {
	// Bootstrap inside newRuntime does the merge; the command just reports
	// the result.
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		ui.PrintError("sync failed: %v", err)
		return err
	}
	defer rt.Close()

	if session, ok := rt.manager.Session(); ok {
		ui.PrintSuccess("synced with account %s", session.Email)
	} else {
		ui.PrintInfo("not signed in; local threads left as they are (set SESSION_COOKIE to sync)")
	}

	snap := rt.manager.Snapshot()
	fmt.Println(ui.RenderThreadTable(chat.SortThreads(snap.Threads), snap.CurrentThreadID))
	return nil
}
