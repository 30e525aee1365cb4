package main

import (
	"fmt"
	"strings"

	"StockScreener/internal/strategy"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConditionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conditions",
		Short: "List the condition menu with default parameters",
		Long: `Print every condition type as a YAML block with its default
parameters, ready to paste into a screen's conditions list. Indicators:
` + indicatorList(),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range strategy.Names() {
				c, err := strategy.New(name)
				if err != nil {
					return err
				}
				block, err := conditionBlock(name, c)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), block)
			}
			return nil
		},
	}
}

// conditionBlock renders one condition as a YAML list item.
func conditionBlock(name string, c strategy.Condition) (string, error) {
	params, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- type: %s\n", name)
	body := strings.TrimSpace(string(params))
	if body != "" && body != "{}" {
		for _, line := range strings.Split(body, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String(), nil
}

func indicatorList() string {
	names := make([]string, 0, len(strategy.Indicators()))
	for _, ind := range strategy.Indicators() {
		names = append(names, string(ind))
	}
	return strings.Join(names, ", ")
}
