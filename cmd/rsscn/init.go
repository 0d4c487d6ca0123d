package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		configPath: domain.ConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize rsscn configuration file",
		Long: `Initialize an rsscn configuration file in the current directory.

Creates a .rsscn.toml file with every setting and a comment explaining it:
• File inclusion/exclusion patterns
• Diverging macros and functions
• Dead code detection and exit point reporting
• Output and cache settings

Configuration can also live in Cargo.toml under [package.metadata.rsscn].

Examples:
  rsscn init
  rsscn init --config tools/rsscn.toml
  rsscn init --force`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", domain.ConfigFileName, "Configuration file path")

	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}

	configData, err := config.GenerateDefaultConfigTOML()
	if err != nil {
		return fmt.Errorf("failed to generate configuration: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(configData), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTo customize rsscn for your project:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  1. Edit %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  2. Uncomment and modify settings as needed\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  3. Run 'rsscn check .' to use your configuration\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
