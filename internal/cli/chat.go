// chat.go implements "nexus chat": a one-shot message send for scripts and
// non-TTY environments.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/chat"
)

var chatClear bool

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to the chatbot and print the reply",
	Args:  cobra.ArbitraryArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	manager, err := env.manager()
	if err != nil {
		return err
	}
	manager.Init()

	if chatClear {
		manager.Clear()
		fmt.Println(chat.ClearedText)
		return nil
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("nothing to send; usage: nexus chat <message>")
	}

	ctx, cancel := env.cmdCtx()
	defer cancel()

	manager.RefreshBalance(ctx)

	if err := manager.Send(ctx, text); err != nil {
		return err
	}

	if manager.ShowBuy() {
		fmt.Println("Out of tokens. Buy more with: nexus buy")
		return nil
	}

	msgs := manager.Messages()
	last := msgs[len(msgs)-1]
	if last.Sender != chat.SenderBot {
		return fmt.Errorf("no reply received")
	}

	fmt.Println(last.Text)
	if last.Visual != "" {
		if chat.IsVideo(last.Visual) {
			fmt.Printf("[video] %s\n", last.Visual)
		} else {
			fmt.Printf("[image] %s\n", last.Visual)
		}
	}
	if last.ShowContact {
		if last.ContactWhatsapp != "" {
			fmt.Printf("WhatsApp: %s\n", last.ContactWhatsapp)
		}
		if last.ContactPhone != "" {
			fmt.Printf("Phone: %s\n", last.ContactPhone)
		}
	}
	if !manager.DemoMode() {
		fmt.Printf("Balance: %d tokens\n", manager.Tokens())
	}
	return nil
}

func init() {
	chatCmd.Flags().BoolVar(&chatClear, "clear", false, "Clear the stored chat history instead of sending")
}
