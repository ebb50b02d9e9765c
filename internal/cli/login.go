// login.go implements "nexus login" and "nexus logout".
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/log"
	"github.com/nexus-ai/nexus/internal/session"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session locally",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	ctx, cancel := env.cmdCtx()
	defer cancel()

	result, err := env.client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", api.Detail(err, err.Error()))
	}

	if result.RequiresVerification {
		fmt.Println("Email not verified. Check your inbox for the verification link.")
		fmt.Println("Resend with: nexus verify --resend --email", email)
		return nil
	}
	if result.User == nil {
		return fmt.Errorf("login failed: server returned no user")
	}

	sess := &session.Session{User: result.User, AuthToken: result.AccessToken}
	if err := session.Save(env.state, sess); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	_ = env.events.Append(log.LogEvent{Event: log.EventLogin, Email: email, Tenant: env.cfg.Tenant.ID})

	fmt.Printf("Signed in as %s\n", result.User.Email)
	if !result.User.IsVerified {
		fmt.Println("Note: your email is not verified yet.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if err := session.Clear(env.state); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	_ = env.events.Append(log.LogEvent{Event: log.EventLogout})

	fmt.Println("Signed out.")
	return nil
}

// promptLine reads one trimmed line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(data), nil
	}
	return promptLine("")
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted if omitted)")
}
