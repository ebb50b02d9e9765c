// history.go implements "nexus history": browse locally archived
// conversations.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/chat"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "List archived conversations, or print one transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if env.archive == nil {
		return fmt.Errorf("local history is unavailable")
	}

	if len(args) == 1 {
		return printConversation(env, args[0])
	}

	convs, err := env.archive.ListConversations(historyLimit)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}
	if len(convs) == 0 {
		fmt.Println("No archived conversations.")
		return nil
	}

	for _, c := range convs {
		mode := ""
		if c.Demo {
			mode = "  demo"
		}
		fmt.Printf("  %s  %s  %s%s\n", c.ID, c.StartedAt.Format("2006-01-02 15:04"), c.Tenant, mode)
	}
	fmt.Println()
	fmt.Println("Show a transcript with: nexus history <conversation-id>")
	return nil
}

func printConversation(env *cliEnv, id string) error {
	msgs, err := env.archive.GetMessages(id)
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	if len(msgs) == 0 {
		return fmt.Errorf("no messages for conversation %s", id)
	}

	for _, m := range msgs {
		prefix := "Bot"
		if m.Sender == chat.SenderUser {
			prefix = "You"
		}
		fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format("15:04"), prefix, m.Content)
	}
	return nil
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of conversations to list")
}
