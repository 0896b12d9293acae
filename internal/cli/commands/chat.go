package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnnova/learnnova-cli/internal/cli/ui"
	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
	chatsvc "github.com/learnnova/learnnova-cli/internal/service/chat"
)

var chatThreadID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start an interactive chat session",
	Long: `Start an interactive chat session with the study assistant.

Messages stream into the terminal as they are generated. Slash commands
manage threads without leaving the session; /help lists them.`,
	Example: `  # Resume the most recent thread
  $ learnnova chat

  # Open a specific thread
  $ learnnova chat --thread cloud_42`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
	chatCmd.Flags().StringVar(&chatThreadID, "thread", "", "thread id to open (see 'learnnova threads list')")
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		ui.PrintError("startup failed: %v", err)
		return err
	}
	defer rt.Close()

	if chatThreadID != "" {
		if err := rt.manager.SelectThread(chat.ParseThreadID(chatThreadID)); err != nil {
			ui.PrintError("%v", err)
			return err
		}
	}

	r := &repl{manager: rt.manager}
	return r.run(cmd.Context())
}

const (
	userPrompt      = "you ▸ "
	assistantPrefix = "nova ▸ "
)

// repl is the interactive chat loop. It owns the terminal: all printing runs
// on the loop goroutine except streamed tokens, which are the only output
// while a stream is active.
type repl struct {
	manager *chatsvc.Manager
}

func (r *repl) run(ctx context.Context) error {
	lines := readLines(ctx)

	// Non-nil while a response is streaming; the send goroutine delivers its
	// result here. Nil channels block forever in select, so an idle REPL
	// simply never takes that branch.
	var streamDone chan error

	fmt.Println(ui.WelcomeBanner("LearnNova chat", "/help lists commands, /quit saves and exits"))
	r.printSession()
	r.printCurrent()
	r.prompt()

	for {
		select {
		case <-ctx.Done():
			r.manager.Stop()
			if streamDone != nil {
				<-streamDone
			}
			fmt.Println()
			return nil

		case err := <-streamDone:
			streamDone = nil
			r.finishStream(err)
			r.prompt()

		case line, ok := <-lines:
			if !ok {
				// Stdin closed; wind down like /quit.
				r.manager.Stop()
				if streamDone != nil {
					<-streamDone
				}
				fmt.Println()
				return nil
			}

			input := strings.TrimSpace(line)
			switch {
			case input == "":
				if streamDone == nil {
					r.prompt()
				}
			case strings.HasPrefix(input, "/"):
				var quit bool
				streamDone, quit = r.handleCommand(ctx, input, streamDone)
				if quit {
					r.manager.Stop()
					if streamDone != nil {
						<-streamDone
					}
					return nil
				}
			default:
				if streamDone != nil {
					ui.PrintInfo("still answering; /stop to interrupt")
					continue
				}
				streamDone = r.startStream(ctx, func(done chan error) {
					done <- r.manager.Send(ctx, input, printToken)
				})
			}
		}
	}
}

// handleCommand dispatches one slash command. It returns the possibly updated
// stream channel and whether the REPL should exit. While a stream is active
// only /stop and /quit run; everything else would fight the stream for the
// terminal.
func (r *repl) handleCommand(ctx context.Context, input string, streamDone chan error) (chan error, bool) {
	cmd, rest := splitCommand(input)
	streaming := streamDone != nil

	if streaming && cmd != "/stop" && cmd != "/quit" && cmd != "/q" {
		ui.PrintInfo("still answering; /stop to interrupt")
		return streamDone, false
	}

	switch cmd {
	case "/quit", "/q", "/exit":
		return streamDone, true

	case "/stop":
		if !r.manager.Stop() {
			ui.PrintInfo("nothing is streaming")
			r.prompt()
		}
		// An interrupted stream still finishes through streamDone, which
		// prints the next prompt.
		return streamDone, false

	case "/help":
		r.printHelp()

	case "/threads":
		r.printThreads()

	case "/switch":
		r.switchThread(rest)

	case "/new":
		thread := r.manager.CreateThread(rest)
		ui.PrintSuccess("started %q", thread.Title)

	case "/rename":
		r.renameCurrent(rest)

	case "/delete":
		r.deleteCurrent()

	case "/retry":
		if !r.canRetry() {
			ui.PrintError("nothing to retry yet")
			break
		}
		done := r.startStream(ctx, func(done chan error) {
			done <- r.manager.RetryLast(ctx, printToken)
		})
		return done, false

	default:
		ui.PrintError("unknown command %s (/help lists commands)", cmd)
	}

	r.prompt()
	return streamDone, false
}

// startStream prints the assistant prefix and launches the send on its own
// goroutine so the loop keeps consuming stdin while tokens print.
func (r *repl) startStream(ctx context.Context, send func(done chan error)) chan error {
	done := make(chan error, 1)
	fmt.Print(ui.Styles.Assistant.Render(assistantPrefix))
	go send(done)
	return done
}

// finishStream ends the token line and reports how the send went. A stopped
// stream returns a nil error and needs no notice beyond the newline.
func (r *repl) finishStream(err error) {
	fmt.Println()
	if err == nil {
		return
	}

	switch r.manager.Snapshot().Error {
	case chatsvc.ErrorTokenAuth:
		ui.PrintError("sign-in required: set SESSION_COOKIE and try again")
	case chatsvc.ErrorTokenRate:
		ui.PrintError("rate limited by the backend; wait a moment, then /retry")
	default:
		ui.PrintError("%v", err)
		ui.PrintInfo("/retry sends the last message again")
	}
}

func (r *repl) canRetry() bool {
	current, ok := r.manager.Snapshot().Current()
	if !ok {
		return false
	}
	_, ok = chat.LastUserMessage(current)
	return ok
}

func (r *repl) switchThread(arg string) {
	snap := r.manager.Snapshot()
	sorted := chat.SortThreads(snap.Threads)

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(sorted) {
		ui.PrintError("usage: /switch <n> with n from /threads (1-%d)", len(sorted))
		return
	}
	target := sorted[n-1]
	if err := r.manager.SelectThread(target.ID); err != nil {
		ui.PrintError("%v", err)
		return
	}
	ui.PrintSuccess("switched to %q", target.Title)
}

func (r *repl) renameCurrent(title string) {
	snap := r.manager.Snapshot()
	if snap.CurrentThreadID == "" {
		ui.PrintError("no thread selected")
		return
	}
	if err := r.manager.RenameThread(snap.CurrentThreadID, title); err != nil {
		ui.PrintError("%v", err)
		return
	}
	ui.PrintSuccess("renamed to %q", strings.TrimSpace(title))
}

func (r *repl) deleteCurrent() {
	snap := r.manager.Snapshot()
	current, ok := snap.Current()
	if !ok {
		ui.PrintError("no thread selected")
		return
	}
	if err := r.manager.DeleteThread(current.ID); err != nil {
		ui.PrintError("%v", err)
		return
	}
	ui.PrintSuccess("deleted %q", current.Title)
	r.printCurrent()
}

func (r *repl) printThreads() {
	snap := r.manager.Snapshot()
	fmt.Println(ui.RenderThreadTable(chat.SortThreads(snap.Threads), snap.CurrentThreadID))
}

func (r *repl) printSession() {
	if session, ok := r.manager.Session(); ok {
		ui.PrintInfo("signed in as %s", session.Email)
		return
	}
	ui.PrintInfo("not signed in; threads stay on this machine (set SESSION_COOKIE to sync)")
}

func (r *repl) printCurrent() {
	snap := r.manager.Snapshot()
	if current, ok := snap.Current(); ok {
		ui.PrintInfo("thread: %s (%d messages)", current.Title, len(current.Messages))
		return
	}
	ui.PrintInfo("no thread yet; the first message starts one")
}

func (r *repl) printHelp() {
	help := [][2]string{
		{"/threads", "list threads"},
		{"/switch <n>", "switch to thread n from /threads"},
		{"/new [title]", "start a new thread"},
		{"/rename <title>", "rename the current thread"},
		{"/delete", "delete the current thread"},
		{"/retry", "send the last message again"},
		{"/stop", "interrupt the current answer"},
		{"/quit", "save and exit"},
	}
	for _, entry := range help {
		fmt.Printf("  %-18s %s\n", entry[0], ui.Styles.Dim.Render(entry[1]))
	}
}

func (r *repl) prompt() {
	fmt.Print(ui.Styles.Prompt.Render(userPrompt))
}

func printToken(delta string) {
	fmt.Print(delta)
}

func splitCommand(input string) (string, string) {
	cmd, rest, _ := strings.Cut(input, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

// readLines feeds stdin to the REPL one line at a time. The channel closes on
// EOF. The reader goroutine may stay blocked on a final read at exit; the
// process is done at that point anyway.
func readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				select {
				case lines <- strings.TrimRight(line, "\r\n"):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}
