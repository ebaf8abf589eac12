package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/agentpkg/pkgupdate/pkg/updater"
	"github.com/agentpkg/pkgupdate/pkg/versions"
)

// defaultTokenUsername is sent with token credentials over HTTPS.
const defaultTokenUsername = "x-access-token"

// GitTags resolves updates from the highest semver tag of a git remote.
type GitTags struct {
	GitRepositoryURL `mapstructure:",squash"`

	// URL overrides the remote derived from the repository address.
	URL string `mapstructure:"url"`
	// Constraint limits the accepted tags, e.g. "~2.1".
	Constraint string `mapstructure:"constraint"`

	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
}

var (
	_ updater.Describer = &GitTags{}
	_ TokenSetter       = &GitTags{}
)

func (g *GitTags) Describe() updater.Info {
	return updater.Info{
		Name:        "Git tags",
		Version:     updater.Version,
		Description: "Resolves updates from semver tags of a git remote.",
	}
}

// Configure decodes the repository address, url, constraint and credentials.
func (g *GitTags) Configure(settings map[string]any) error {
	return decodeSettings(settings, g)
}

// SetDefaultToken sets the token unless one was configured.
func (g *GitTags) SetDefaultToken(token string) {
	if g.Token == "" {
		g.Token = token
	}
}

// RemoteURL returns the git remote whose tags are listed.
func (g *GitTags) RemoteURL() string {
	if g.URL != "" {
		return g.URL
	}
	return g.ProjectURL() + ".git"
}

// ArchiveURL returns the zip archive download URL of tag.
func (g *GitTags) ArchiveURL(tag string) string {
	return g.ProjectURL() + "/archive/refs/tags/" + tag + ".zip"
}

func (g *GitTags) auth() transport.AuthMethod {
	if g.Token == "" {
		return nil
	}
	remote := g.RemoteURL()
	if !strings.HasPrefix(remote, "https://") && !strings.HasPrefix(remote, "http://") {
		return nil
	}
	username := g.Username
	if username == "" {
		username = defaultTokenUsername
	}
	return &githttp.BasicAuth{Username: username, Password: g.Token}
}

func (g *GitTags) Discover(ctx context.Context, a *updater.Adapter) (*updater.Result, error) {
	remoteURL := g.RemoteURL()
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{remoteURL},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: g.auth()})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing refs of %s: %w", remoteURL, err)
	}

	tag, ok, err := versions.Latest(tagNames(refs), g.Constraint)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.Logger().V(1).Info("No matching semver tag", "remote", remoteURL, "constraint", g.Constraint)
		return nil, nil
	}

	return updater.NewResult(a, map[string]any{
		"version":   strings.TrimPrefix(tag, "v"),
		"package":   g.ArchiveURL(tag),
		"theme_url": g.RepositoryURL(),
	}), nil
}

// tagNames returns the sorted, de-duplicated tag names among refs.
// Peeled entries of annotated tags collapse onto their tag.
func tagNames(refs []*plumbing.Reference) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		name := strings.TrimSuffix(ref.Name().Short(), "^{}")
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
