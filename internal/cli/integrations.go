// integrations.go implements "nexus integrations": list, connect, and
// disconnect messaging platform integrations.
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
)

var integrationsCmd = &cobra.Command{
	Use:   "integrations",
	Short: "Manage messaging platform integrations",
	RunE:  runIntegrations,
}

var integrationsConnectCmd = &cobra.Command{
	Use:   "connect <platform>",
	Short: "Print the OAuth link that connects a platform",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntegrationsConnect,
}

var integrationsDisconnectCmd = &cobra.Command{
	Use:   "disconnect <platform>",
	Short: "Disconnect a platform",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntegrationsDisconnect,
}

func runIntegrations(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.requireSession(); err != nil {
		return err
	}

	ctx, cancel := env.cmdCtx()
	defer cancel()

	status, err := env.client.IntegrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("fetching integrations: %s", api.Detail(err, err.Error()))
	}
	if len(status) == 0 {
		fmt.Println("No integrations available.")
		return nil
	}

	platforms := make([]string, 0, len(status))
	for p := range status {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	for _, p := range platforms {
		state := "disconnected"
		if status[p] {
			state = "connected"
		}
		fmt.Printf("  %-12s %s\n", p, state)
	}
	return nil
}

func runIntegrationsConnect(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.requireSession(); err != nil {
		return err
	}

	fmt.Println("Open this link to connect:")
	fmt.Println(env.client.IntegrationConnectURL(args[0]))
	return nil
}

func runIntegrationsDisconnect(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.requireSession(); err != nil {
		return err
	}

	ctx, cancel := env.cmdCtx()
	defer cancel()

	if err := env.client.DisconnectIntegration(ctx, args[0]); err != nil {
		return fmt.Errorf("disconnecting %s: %s", args[0], api.Detail(err, err.Error()))
	}

	fmt.Printf("Disconnected %s.\n", args[0])
	return nil
}

func init() {
	integrationsCmd.AddCommand(integrationsConnectCmd)
	integrationsCmd.AddCommand(integrationsDisconnectCmd)
}
