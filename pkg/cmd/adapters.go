package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/agentpkg/pkgupdate/pkg/updater"
)

func newAdaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the configured adapters in walk order",
		Long:  "Prints the adapters of the manifest in the order a check walks them, followed by the adapter types that can be configured.",
		Args:  cobra.NoArgs,
		RunE:  runAdapters,
	}
}

func runAdapters(cmd *cobra.Command, args []string) error {
	res, err := openResolution()
	if err != nil {
		return err
	}
	co := res.Coordinator

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PRIORITY", "LOCKED", "NAME", "VERSION", "DESCRIPTION")
	for _, a := range co.Adapters() {
		locked := ""
		if co.IsLocked(a) {
			locked = "yes"
		}
		t.Row(a.ID(), strconv.Itoa(a.Priority()), locked, a.Name(), a.Version(), a.Description())
	}

	out := cmd.OutOrStdout()
	if len(co.Adapters()) == 0 {
		fmt.Fprintln(out, "No adapters configured; checks resolve to the no-op adapter.")
	} else {
		fmt.Fprintln(out, t.Render())
	}
	fmt.Fprintf(out, "Available types: %s\n", strings.Join(updater.RegisteredTypes(), ", "))
	return nil
}
