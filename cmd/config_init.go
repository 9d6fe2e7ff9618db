package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/niuk/ao3-uploader/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Default configuration:")
		config.DefaultConfig().Print()
		fmt.Println()

		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Create Default config in %s", config.ConfigsDir()),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := config.InitDefaultConfig()
		if errors.Is(err, os.ErrExist) {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", path)
			fmt.Println("Use `ao3-uploader config reset` to restore the defaults.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Println("Config created at:", path)
		fmt.Printf("This config is now active (label: %s).\n", config.DefaultLabel)
		fmt.Println("Credentials are read from AO3_USERNAME and AO3_PASSWORD (env or env_file), never from this file.")

		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
