package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toolmesh/core"
)

func newHistoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived conversations",
	}

	cmd.AddCommand(
		newHistoryListCmd(app),
		newHistorySearchCmd(app),
		newHistoryShowCmd(app),
		newHistoryDeleteCmd(app),
	)

	return cmd
}

func newHistoryListCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.history()
			if err != nil {
				return err
			}
			convs, err := store.List(limit)
			if err != nil {
				return err
			}
			writeConversations(cmd.OutOrStdout(), convs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of conversations (0 for all)")

	return cmd
}

func newHistorySearchCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find conversations by title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.history()
			if err != nil {
				return err
			}
			convs, err := store.Search(args[0], limit)
			if err != nil {
				return err
			}
			writeConversations(cmd.OutOrStdout(), convs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of conversations (0 for all)")

	return cmd
}

func newHistoryShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the transcript of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.history()
			if err != nil {
				return err
			}
			c, err := store.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s\n%s, %d messages, %d jobs, model %s\n\n", c.Title, c.EndedAt.Local().Format(time.DateTime), c.MessageCount, c.JobCount, c.Model)
			_, err = io.WriteString(out, c.Transcript)
			return err
		},
	}
}

func newHistoryDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Remove a conversation from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.history()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}

func (a *app) history() (core.HistoryStore, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return openHistory(cfg)
}

func writeConversations(w io.Writer, convs []core.Conversation) {
	if len(convs) == 0 {
		_, _ = fmt.Fprintln(w, "no conversations")
		return
	}
	for _, c := range convs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.SessionID, c.EndedAt.Local().Format(time.DateTime), c.Title)
	}
}
