// verify.go implements "nexus verify" (confirm a token or resend the email)
// and "nexus reset-password".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
)

var (
	verifyToken  string
	verifyResend bool
	verifyEmail  string

	resetToken string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify your email address",
	Long: `Confirm an email verification token, or request a fresh
verification email with --resend.`,
	RunE: runVerify,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password using a reset token",
	RunE:  runResetPassword,
}

func runVerify(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := env.cmdCtx()
	defer cancel()

	if verifyResend {
		if verifyEmail == "" {
			return fmt.Errorf("--resend requires --email")
		}
		if err := env.client.ResendVerification(ctx, verifyEmail); err != nil {
			return fmt.Errorf("resend failed: %s", api.Detail(err, err.Error()))
		}
		fmt.Println("Verification email sent. Check your inbox.")
		return nil
	}

	if verifyToken == "" {
		return fmt.Errorf("provide --token, or --resend --email to request a new link")
	}
	if err := env.client.VerifyEmail(ctx, verifyToken); err != nil {
		return fmt.Errorf("verification failed: %s", api.Detail(err, err.Error()))
	}

	fmt.Println("Email verified. Sign in again with: nexus login")
	return nil
}

func runResetPassword(cmd *cobra.Command, args []string) error {
	if resetToken == "" {
		return fmt.Errorf("provide the reset token with --token")
	}

	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := env.cmdCtx()
	defer cancel()

	check, err := env.client.VerifyResetToken(ctx, resetToken)
	if err != nil {
		return fmt.Errorf("checking reset token: %s", api.Detail(err, err.Error()))
	}
	if !check.Valid {
		if check.Message != "" {
			return fmt.Errorf("reset token rejected: %s", check.Message)
		}
		return fmt.Errorf("reset token is invalid or expired")
	}

	password, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	if err := env.client.ResetPassword(ctx, resetToken, password); err != nil {
		return fmt.Errorf("password reset failed: %s", api.Detail(err, err.Error()))
	}

	fmt.Println("Password updated. Sign in with: nexus login")
	return nil
}

func init() {
	verifyCmd.Flags().StringVar(&verifyToken, "token", "", "Verification token from the email link")
	verifyCmd.Flags().BoolVar(&verifyResend, "resend", false, "Request a new verification email")
	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "Email address for --resend")

	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Password reset token from the email link")
}
