package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnnova/learnnova-cli/internal/cli/ui"
	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "manage chat threads",
	Long: `List, rename and delete chat threads.

Thread ids come from the list output. Ids starting with cloud_ are mirrored
to your account; t_ ids exist only on this machine until a sync promotes
them.`,
	Example: `  $ learnnova threads list
  $ learnnova threads rename cloud_42 "Physics revision"
  $ learnnova threads delete t_1f0c...`,
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list threads, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runThreadsList,
}

var threadsRenameCmd = &cobra.Command{
	Use:   "rename <thread-id> <title>",
	Short: "rename a thread",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runThreadsRename,
}

var threadsDeleteCmd = &cobra.Command{
	Use:   "delete <thread-id>",
	Short: "delete a thread locally and from your account",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsDelete,
}

func init() {
	threadsCmd.SilenceUsage = true
	threadsListCmd.SilenceUsage = true
	threadsRenameCmd.SilenceUsage = true
	threadsDeleteCmd.SilenceUsage = true

	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsRenameCmd)
	threadsCmd.AddCommand(threadsDeleteCmd)
}

func runThreadsList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		ui.PrintError("startup failed: %v", err)
		return err
	}
	defer rt.Close()

	snap := rt.manager.Snapshot()
	fmt.Println(ui.RenderThreadTable(chat.SortThreads(snap.Threads), snap.CurrentThreadID))
	return nil
}

func runThreadsRename(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		ui.PrintError("startup failed: %v", err)
		return err
	}
	defer rt.Close()

	id := chat.ParseThreadID(args[0])
	title := strings.Join(args[1:], " ")
	if err := rt.manager.RenameThread(id, title); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	ui.PrintSuccess("renamed %s to %q", id, strings.TrimSpace(title))
	return nil
}

func runThreadsDelete(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		ui.PrintError("startup failed: %v", err)
		return err
	}
	defer rt.Close()

	id := chat.ParseThreadID(args[0])
	if err := rt.manager.DeleteThread(id); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	ui.PrintSuccess("deleted %s", id)
	return nil
}
