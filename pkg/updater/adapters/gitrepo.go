package adapters

import (
	"context"
	"strings"

	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// DefaultBaseURL is the web host repositories are addressed on.
const DefaultBaseURL = "https://github.com"

// GitRepositoryURL addresses a repository on a git hosting site. It is the
// base of the git backed sources and reports nothing on its own.
type GitRepositoryURL struct {
	BaseURL    string `mapstructure:"base_url"`
	Owner      string `mapstructure:"owner"`
	Repository string `mapstructure:"repository"`
	Branch     string `mapstructure:"branch"`
}

var _ updater.Source = &GitRepositoryURL{}

// Configure decodes base_url, owner, repository and branch.
func (g *GitRepositoryURL) Configure(settings map[string]any) error {
	return decodeSettings(settings, g)
}

// ProjectURL returns <base>/<owner>/<repository>.
func (g *GitRepositoryURL) ProjectURL() string {
	base := g.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + g.Owner + "/" + g.Repository
}

// RepositoryURL returns the project URL, pointing at the branch tree when a
// branch is set.
func (g *GitRepositoryURL) RepositoryURL() string {
	u := g.ProjectURL()
	if g.Branch != "" {
		u += "/tree/" + g.Branch
	}
	return u
}

func (g *GitRepositoryURL) Discover(context.Context, *updater.Adapter) (*updater.Result, error) {
	return nil, nil
}
