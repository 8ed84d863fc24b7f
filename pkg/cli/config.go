package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/konveyor/makerun/pkg/config"
	"github.com/konveyor/makerun/pkg/util"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configOutputFile     string
	configUser           bool
	configNonInteractive bool
)

// NewConfigCmd creates the config command with subcommands
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage makerun configuration",
		Long:  `Create and inspect makerun configuration files.`,
	}

	configCmd.AddCommand(NewConfigInitCmd())
	configCmd.AddCommand(NewConfigShowCmd())

	return configCmd
}

// NewConfigInitCmd creates the config init command
func NewConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a configuration file",
		Long: `Interactively create a makerun configuration file.

By default the file is written to .makerun/config.yaml in the current
directory. Use --user to write the per-user file instead.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	cmd.Flags().StringVarP(&configOutputFile, "output", "o", "", "Output file path (default: "+config.ProjectConfigPath+")")
	cmd.Flags().BoolVar(&configUser, "user", false, "Write the per-user configuration file")
	cmd.Flags().BoolVar(&configNonInteractive, "non-interactive", false, "Write the defaults without prompting")

	return cmd
}

// NewConfigShowCmd creates the config show command
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := config.Discover(configFile)
			if err != nil {
				return err
			}

			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", source)

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	log := util.GetLogger()

	cfg := config.Default()
	if !configNonInteractive {
		if err := promptConfig(cfg); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	outputFile := configOutputFile
	if outputFile == "" {
		outputFile = config.ProjectConfigPath
		if configUser {
			outputFile = config.UserConfigPath()
		}
	}

	if err := config.Save(outputFile, cfg); err != nil {
		return err
	}

	log.Info("Configuration created", "file", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created configuration: %s\n", outputFile)

	return nil
}

// promptConfig asks for the settings people usually change
func promptConfig(cfg *config.Config) error {
	binary, err := promptString("Build tool binary", cfg.Tool.Binary)
	if err != nil {
		return err
	}
	cfg.Tool.Binary = binary

	buildFile, err := promptString("Build file name", cfg.Tool.BuildFile)
	if err != nil {
		return err
	}
	cfg.Tool.BuildFile = buildFile

	envFile, err := promptString("Env file for builds (optional, press Enter to skip)", cfg.Build.EnvFile)
	if err != nil {
		return err
	}
	cfg.Build.EnvFile = envFile

	onBusy := promptui.Select{
		Label: "When a build is requested while one is running",
		Items: []string{config.OnBusyReject, config.OnBusyCancel},
	}
	_, result, err := onBusy.Run()
	if err != nil {
		return fmt.Errorf("failed to select busy policy: %w", err)
	}
	cfg.Build.OnBusy = result

	return nil
}

// promptString asks for a value, keeping def when the answer is empty
func promptString(label, def string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
	}

	result, err := prompt.Run()
	if err != nil && !errors.Is(err, promptui.ErrInterrupt) {
		return "", err
	}
	if errors.Is(err, promptui.ErrInterrupt) {
		return "", fmt.Errorf("aborted")
	}

	result = strings.TrimSpace(result)
	if result == "" {
		return def, nil
	}
	return result, nil
}
