package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// GitHubRelease resolves updates from the releases of a GitHub repository.
// The package is the first attached .zip asset; a release without one
// resolves to a version with no installable package.
type GitHubRelease struct {
	GitHubAPI `mapstructure:",squash"`

	// IncludePrerelease selects the newest non-draft release, pre-releases
	// included, instead of the latest stable one.
	IncludePrerelease bool `mapstructure:"include_prerelease"`
}

var _ updater.Describer = &GitHubRelease{}

func (g *GitHubRelease) Describe() updater.Info {
	return updater.Info{
		Name:        "GitHub release",
		Version:     updater.Version,
		Description: "Resolves updates from GitHub releases.",
	}
}

// Configure decodes the GitHubAPI settings and include_prerelease.
func (g *GitHubRelease) Configure(settings map[string]any) error {
	return decodeSettings(settings, g)
}

// ReleasesURL returns the endpoint queried by Discover.
func (g *GitHubRelease) ReleasesURL() string {
	u := g.APIBaseURL() + "repos/" + url.PathEscape(g.Owner) + "/" + url.PathEscape(g.Repository) + "/releases"
	if !g.IncludePrerelease {
		u += "/latest"
	}
	return u
}

func (g *GitHubRelease) Discover(ctx context.Context, a *updater.Adapter) (*updater.Result, error) {
	if g.Owner == "" || g.Repository == "" {
		return nil, errors.New("github release source requires owner and repository")
	}

	endpoint := g.ReleasesURL()
	body, err := g.HTTPClient().Get(ctx, endpoint, g.AuthHeader())
	if err != nil {
		if httpclient.IsNotFound(err) {
			a.Logger().V(1).Info("No release published", "url", endpoint)
			return nil, nil
		}
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("release response from %s is not valid JSON", endpoint)
	}

	release := gjson.ParseBytes(body)
	if g.IncludePrerelease {
		release = firstPublished(release)
	}

	data, ok := releasePayload(release)
	if !ok {
		return nil, nil
	}
	return updater.NewResult(a, data), nil
}

// firstPublished returns the first non-draft release of a release list.
// The API lists releases newest first.
func firstPublished(releases gjson.Result) gjson.Result {
	var found gjson.Result
	releases.ForEach(func(_, release gjson.Result) bool {
		if release.Get("draft").Bool() {
			return true
		}
		found = release
		return false
	})
	return found
}

func releasePayload(release gjson.Result) (map[string]any, bool) {
	tag := release.Get("tag_name").String()
	if tag == "" {
		return nil, false
	}

	data := map[string]any{
		"new_version": strings.TrimPrefix(tag, "v"),
	}
	if htmlURL := release.Get("html_url").String(); htmlURL != "" {
		data["theme_url"] = htmlURL
	}
	if notes := release.Get("body").String(); notes != "" {
		data["description"] = notes
	}
	// Only an attached .zip asset is installable; zipball_url has no
	// archive extension.
	if zip := release.Get(`assets.#(name%"*.zip").browser_download_url`).String(); zip != "" {
		data["zip_url"] = zip
	}
	return data, true
}
