// Package adapters provides the concrete update sources: GitHub releases,
// git tags, and remote metadata documents.
package adapters

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// Registered type names.
const (
	TypeGitHubRelease = "github-release"
	TypeGitTags       = "git-tags"
	TypeRemote        = "remote"
)

func init() {
	register(TypeGitHubRelease, func() updater.Source { return &GitHubRelease{} })
	register(TypeGitTags, func() updater.Source { return &GitTags{} })
	register(TypeRemote, func() updater.Source { return &Remote{} })
}

func register(typeName string, factory updater.Factory) {
	if err := updater.RegisterType(typeName, factory); err != nil {
		panic(err)
	}
}

// Configurable is implemented by sources that accept manifest settings.
type Configurable interface {
	Configure(settings map[string]any) error
}

// HTTPClientSetter is implemented by sources that make HTTP requests.
type HTTPClientSetter interface {
	SetHTTPClient(c httpclient.Client)
}

// TokenSetter is implemented by sources that can authenticate with a token.
// SetDefaultToken only applies when no token was configured explicitly.
type TokenSetter interface {
	SetDefaultToken(token string)
}

// decodeSettings decodes manifest settings into target. Unknown keys are
// rejected so typos in a manifest surface as errors.
func decodeSettings(settings map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("creating settings decoder: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}
	return nil
}
