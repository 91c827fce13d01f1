package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/orgball2608/contentflow/internal/playbook"
	"github.com/spf13/cobra"
)

var quickAction string

var chatCmd = &cobra.Command{
	Use:   "chat <post-id> [message]",
	Short: "Ask the assistant about a post",
	Long: `Ask the assistant about a post. The reply streams to stdout and is kept in
the post's chat history. Ctrl-C stops the reply and keeps what arrived.

Examples:
  contentctl chat k3j9x2a "Make the opening line punchier"
  contentctl chat k3j9x2a --action hook`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&quickAction, "action", "", "run a quick action of the post's playbook")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	postID := args[0]
	message := ""
	if len(args) > 1 {
		message = strings.TrimSpace(args[1])
	}

	return withDeps(cmd.Context(), func(d deps) error {
		if quickAction != "" {
			post, err := d.Store.Get(ctx, postID)
			if err != nil {
				return err
			}
			action, ok := playbook.For(post.Platform).QuickAction(quickAction)
			if !ok {
				return fmt.Errorf("no quick action %q for %s", quickAction, post.Platform.Label())
			}
			if message == "" {
				message = action.Prompt
			}
		}
		if message == "" {
			return fmt.Errorf("a message or --action is required")
		}

		out := cmd.OutOrStdout()
		res, err := d.Assistant.Send(ctx, postID, message, quickAction, func(text string) {
			fmt.Fprint(out, text)
		})
		fmt.Fprintln(out)
		if err != nil {
			return err
		}
		if res.Aborted {
			fmt.Fprintln(cmd.ErrOrStderr(), "stopped, partial reply saved")
		}
		return nil
	})
}
