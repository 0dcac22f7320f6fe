// internal/commands/list_commands.go
package hashbench

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	listNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	listDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// listCmd groups the list subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmarks or commands",
}

// casesCmd implements 'list cases', which prints the benchmark cases a run
// would execute with the current filter, in registration order.
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the benchmark cases selected by the current filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration is not initialized")
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		rows := make([]commandInfo, 0, reg.Len())
		for c := range reg.All() {
			desc := ""
			if c.Baseline() {
				desc = "baseline"
			}
			rows = append(rows, commandInfo{Path: c.Name(), Description: desc})
		}
		writeColumns(cmd.OutOrStdout(), rows)
		return nil
	},
}

// commandsCmd implements 'list commands', which prints the available
// commands and subcommands in a hierarchical, indented, two-column format.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Run: func(cmd *cobra.Command, args []string) {
		commandData := collectCommandData(rootCmd, "", "")
		filtered := make([]commandInfo, 0, len(commandData))
		for _, data := range commandData {
			if strings.Contains(data.Path, "completion") || strings.Contains(data.Path, "help") {
				continue
			}
			filtered = append(filtered, data)
		}
		writeColumns(cmd.OutOrStdout(), filtered)
	},
}

func init() {
	listCmd.AddCommand(casesCmd)
	listCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(listCmd)
}

// commandInfo is one row of two-column list output.
type commandInfo struct {
	Path        string
	Description string
}

// collectCommandData collects command metadata for display, walking the
// command tree and returning a flattened slice of path/description pairs.
func collectCommandData(cmd *cobra.Command, currentPath string, indent string) []commandInfo {
	var allData []commandInfo

	fullPath := currentPath + cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}

	allData = append(allData, commandInfo{
		Path:        indent + fullPath,
		Description: cmd.Short,
	})

	for _, subCmd := range cmd.Commands() {
		allData = append(allData, collectCommandData(subCmd, fullPath, indent+"  ")...)
	}

	return allData
}

func writeColumns(out io.Writer, rows []commandInfo) {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Path))
	}
	for _, r := range rows {
		name := r.Path + strings.Repeat(" ", width-lipgloss.Width(r.Path))
		if r.Description == "" {
			fmt.Fprintln(out, listNameStyle.Render(name))
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", listNameStyle.Render(name), listDescStyle.Render(r.Description))
	}
}
