package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/updater"
)

type installed map[string]any

func (p installed) Get(key string) any { return p[key] }
func (p installed) Slug() string       { return "foo" }

func installedFoo() installed {
	return installed{
		updater.HeaderName:    "Foo",
		updater.HeaderVersion: "1.0.0",
	}
}

// process registers src on a fresh coordinator and runs it once.
func process(t *testing.T, src updater.Source) updater.Outcome {
	t.Helper()
	c := updater.NewCoordinator(installedFoo(), updater.WithLogger(testr.New(t)))
	a, err := c.Add(src)
	require.NoError(t, err)
	return a.Process(context.Background())
}

func testClient() httpclient.Client {
	return httpclient.NewDefaultClient(time.Second, httpclient.WithMaxTries(1))
}
