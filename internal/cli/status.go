// status.go implements "nexus status": server reachability, enforcement
// flags, and the local session state.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/gate"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and session status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	sess, err := env.session()
	if err != nil {
		return err
	}

	fmt.Println("Nexus Status")
	fmt.Printf("Server: %s\n", env.cfg.Server.BaseURL)
	fmt.Printf("Tenant: %s\n", env.cfg.Tenant.ID)
	if env.cfg.DemoMode {
		fmt.Println("Mode:   demo (token accounting disabled)")
	}
	fmt.Println()

	ctx, cancel := env.cmdCtx()
	defer cancel()

	var mode api.SystemStatus
	status, err := env.client.SystemStatus(ctx)
	if err != nil {
		// A missing status means full enforcement; report it that way.
		fmt.Printf("Server unreachable (%v); assuming verification is enforced.\n", err)
	} else {
		mode = status
		fmt.Printf("Auto-verify: %v\n", mode.AutoVerifyEnabled)
		fmt.Printf("Bypass:      %v\n", mode.BypassEnabled)
	}
	fmt.Println()

	if !sess.SignedIn() {
		fmt.Println("Not signed in. Run: nexus login")
		return nil
	}

	// Refresh the user record; the stored copy serves when offline.
	user := sess.User
	if fresh, err := env.client.Me(ctx); err == nil {
		user = &fresh
	}

	fmt.Printf("Signed in as: %s\n", user.Email)
	if gate.EffectivelyVerified(user, mode) {
		fmt.Println("Access:       full dashboard access")
	} else {
		fmt.Println("Access:       verification pending; run: nexus verify")
	}
	return nil
}
