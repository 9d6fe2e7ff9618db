package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/niuk/ao3-uploader/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config profile with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string

		if len(args) == 1 {
			label = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Label for new config",
				Validate: func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("label cannot be empty")
					}
					return nil
				},
			}

			var err error
			if label, err = prompt.Run(); err != nil {
				return fmt.Errorf("input cancelled")
			}
		}

		path, err := config.CreateConfig(strings.TrimSpace(label))
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		fmt.Printf("Run `ao3-uploader config switch %s` to use it.\n", strings.TrimSpace(label))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
}
