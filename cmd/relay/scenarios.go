package main

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in demo scenarios",
	Long: `List every built-in scenario with its pipeline description.

Run one with 'relay run NAME'.`,
	Args: cobra.NoArgs,
	RunE: runScenarios,
}

func runScenarios(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if _, err := tw.Write([]byte("NAME\tDESCRIPTION\n")); err != nil {
		return err
	}
	for _, s := range scenarios.List() {
		line := s.Name() + "\t" + s.Description() + "\n"
		if _, err := tw.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

// completeScenarioNames suggests registered scenario names.
func completeScenarioNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0)
	for _, s := range scenarios.List() {
		if strings.HasPrefix(s.Name(), toComplete) {
			names = append(names, s.Name())
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
