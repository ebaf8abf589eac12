package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/agentpkg/pkgupdate/pkg/resolver"
	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// DefaultMaxAge is how long a cached check answers before the adapter chain
// is walked again.
const DefaultMaxAge = 12 * time.Hour

var (
	readyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	currentStyle = lipgloss.NewStyle().Faint(true)
)

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check for an update of the installed theme",
		Long: `Walks the configured adapters in priority order and reports the first
valid update candidate. The outcome is written to the update cache, which
answers later checks until it is older than --max-age or --force is given.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	checkCmd.Flags().Bool("force", false, "ignore the update cache and walk every adapter")
	checkCmd.Flags().Bool("json", false, "print the report as JSON")
	checkCmd.Flags().Duration("max-age", DefaultMaxAge, "age after which the update cache is refreshed")

	return checkCmd
}

// report is the outcome of a check.
type report struct {
	Theme      string `json:"theme"`
	Installed  string `json:"installed"`
	NewVersion string `json:"new_version,omitempty"`
	Package    string `json:"package,omitempty"`
	URL        string `json:"url,omitempty"`
	Adapter    string `json:"adapter,omitempty"`
	Ready      bool   `json:"ready"`
	Cached     bool   `json:"cached"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	maxAge, err := cmd.Flags().GetDuration("max-age")
	if err != nil {
		return err
	}

	res, err := openResolution()
	if err != nil {
		return err
	}

	rep, ok := cachedReport(res, maxAge)
	if force || !ok {
		result := res.Check(cmd.Context(), force)
		if err := res.Save(result); err != nil {
			return err
		}
		rep = resultReport(res, result)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(cmd.OutOrStdout(), rep)
	return nil
}

// cachedReport answers from the update cache when the installed theme's own
// entry was saved less than maxAge ago.
func cachedReport(res *resolver.Resolution, maxAge time.Duration) (report, bool) {
	slug := res.Theme.Slug()
	checked := res.Cache.CheckedAt(slug)
	if maxAge <= 0 || checked.IsZero() || time.Since(checked) > maxAge {
		return report{}, false
	}
	entry, ready, ok := res.Cache.Lookup(slug)
	if !ok {
		return report{}, false
	}
	return report{
		Theme:      slug,
		Installed:  res.Theme.Header(updater.HeaderVersion),
		NewVersion: entry[updater.TransientNewVersion],
		Package:    entry[updater.TransientPackage],
		URL:        entry[updater.TransientURL],
		Ready:      ready,
		Cached:     true,
	}, true
}

func resultReport(res *resolver.Resolution, result *updater.Result) report {
	rep := report{
		Theme:     res.Theme.Slug(),
		Installed: res.Theme.Header(updater.HeaderVersion),
		Ready:     result.IsReadyUpdate(),
	}
	if result.IsValid() {
		rep.NewVersion = result.Version()
		rep.Package = result.Package()
		rep.URL = result.ThemeURL()
		rep.Adapter = result.Adapter().ID()
	}
	return rep
}

func printReport(w io.Writer, rep report) {
	switch {
	case rep.Ready:
		fmt.Fprintf(w, "%s %s -> %s\n", rep.Theme, rep.Installed, readyStyle.Render(rep.NewVersion))
		fmt.Fprintf(w, "  package: %s\n", rep.Package)
		if rep.URL != "" {
			fmt.Fprintf(w, "  details: %s\n", rep.URL)
		}
	case rep.NewVersion != "" && rep.NewVersion != rep.Installed && !strings.HasSuffix(rep.Package, ".zip"):
		fmt.Fprintf(w, "%s %s: %s is available but has no installable package\n", rep.Theme, rep.Installed, rep.NewVersion)
	default:
		fmt.Fprintf(w, "%s %s %s\n", rep.Theme, rep.Installed, currentStyle.Render("is up to date"))
	}
	if rep.Adapter != "" {
		fmt.Fprintf(w, "  resolved by: %s\n", rep.Adapter)
	}
	if rep.Cached {
		fmt.Fprintln(w, "  (from update cache, use --force to refresh)")
	}
}
