package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentpkg/pkgupdate/pkg/config"
	"github.com/agentpkg/pkgupdate/pkg/project"
	"github.com/agentpkg/pkgupdate/pkg/resolver"
	"github.com/agentpkg/pkgupdate/pkg/store"
)

var (
	flagVerbose  bool
	flagManifest string
	flagDev      config.Flags

	// DevCfg holds the resolved developer configuration, available to all
	// subcommands after PersistentPreRunE completes.
	DevCfg *config.DevConfig

	// Logger is built from --verbose in PersistentPreRunE.
	Logger = logr.Discard()
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pkgupdate",
		Short: "Theme update resolver",
		Long:  "pkgupdate resolves the available update of an installed theme from a prioritized chain of update sources.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(flagVerbose)
			if err != nil {
				return err
			}
			Logger = logger

			cfg, err := config.LoadDevConfig(flagDev)
			if err != nil {
				return err
			}
			DevCfg = cfg
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log adapter activity to stderr")
	pf.StringVar(&flagManifest, "manifest", "", "path to "+project.ManifestFile+" (default: search upward from the working directory)")
	pf.StringVar(&flagDev.Compare, "compare", "", `version policy: "newer" or "differs"`)
	pf.StringVar(&flagDev.CacheDir, "cache-dir", "", "directory holding the update cache (default ~/"+store.DefaultRoot+")")
	pf.DurationVar(&flagDev.Timeout, "timeout", 0, "timeout of a single HTTP request")

	root.AddCommand(newInitCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newAdaptersCmd())
	root.AddCommand(newTransientCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a production JSON logger at warn level, or a
// development console logger at debug level when verbose is set.
func newLogger(verbose bool) (logr.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)

	zl, err := zc.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("building logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// openResolution loads the manifest and builds the coordinator for it.
func openResolution() (*resolver.Resolution, error) {
	manifestPath, err := manifestPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFile(manifestPath)
	if err != nil {
		return nil, err
	}

	s, err := cacheStore()
	if err != nil {
		return nil, err
	}

	r := &resolver.Resolver{
		Store:  s,
		Dev:    DevCfg,
		Logger: Logger,
	}
	return r.Open(manifestPath, cfg)
}

func manifestPath() (string, error) {
	if flagManifest != "" {
		return flagManifest, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	path, err := project.Find(wd)
	if err != nil {
		return "", fmt.Errorf("%w (run pkgupdate init)", err)
	}
	return path, nil
}

func cacheStore() (store.Store, error) {
	if DevCfg != nil && DevCfg.CacheDir != "" {
		return store.New(DevCfg.CacheDir), nil
	}
	return store.Default()
}
