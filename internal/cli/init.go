// init.go implements "nexus init": writes a starter config file.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .nexus/config.yaml starter configuration",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.UserHomeDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolving base directory: %w", err)
		}
	}

	path := filepath.Join(dir, ".nexus", "config.yaml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	if err := config.WriteConfig(dir, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Edit server.base_url and tenant.id, then run: nexus")
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
