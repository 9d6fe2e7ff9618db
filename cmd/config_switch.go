package cmd

import (
	"fmt"

	"github.com/niuk/ao3-uploader/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different config profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return switchTo(args[0])
		}

		list, err := config.ListConfigs()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return fmt.Errorf("no configs available; run `ao3-uploader config init`")
		}

		items := make([]string, 0, len(list))
		cursor := 0
		for i, c := range list {
			item := c.Label
			if c.Active {
				item += "  (active)"
				cursor = i
			}
			items = append(items, item)
		}

		prompt := promptui.Select{
			Label:     "Select config",
			Items:     items,
			CursorPos: cursor,
		}

		idx, _, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("selection cancelled")
		}

		return switchTo(list[idx].Label)
	},
}

func switchTo(label string) error {
	if err := config.SwitchConfig(label); err != nil {
		return err
	}

	fmt.Println("Switched to:", label)
	return nil
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
