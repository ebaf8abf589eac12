package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/agentpkg/pkgupdate/pkg/config"
	"github.com/agentpkg/pkgupdate/pkg/project"
	"github.com/agentpkg/pkgupdate/pkg/updater"
	"github.com/agentpkg/pkgupdate/pkg/updater/adapters"
)

// initAnswers are the values init collects from flags or prompts.
type initAnswers struct {
	Type       string
	Owner      string
	Repository string
	URL        string
	Token      string
}

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pkgupdate for a theme directory",
		Long:  "Creates a pkgupdate.toml manifest with a first adapter and configures .gitignore entries.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
		// init does not need dev config resolution; skip the root PersistentPreRunE.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	f := initCmd.Flags()
	f.String("type", "", "adapter type ("+strings.Join(updater.RegisteredTypes(), ", ")+")")
	f.String("owner", "", "repository owner")
	f.String("repository", "", "repository name")
	f.String("url", "", "metadata document or git remote URL")
	f.Bool("no-prompt", false, "do not prompt; take every answer from flags")

	return initCmd
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	answers := initAnswers{}
	for flag, dst := range map[string]*string{
		"type":       &answers.Type,
		"owner":      &answers.Owner,
		"repository": &answers.Repository,
		"url":        &answers.URL,
	} {
		if *dst, err = cmd.Flags().GetString(flag); err != nil {
			return err
		}
	}
	noPrompt, err := cmd.Flags().GetBool("no-prompt")
	if err != nil {
		return err
	}
	if !noPrompt {
		if err := promptAnswers(&answers); err != nil {
			return err
		}
	}

	cfg := manifestFromAnswers(project.InferSlug(wd), answers)
	if err := project.Init(wd, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", project.ManifestFile)

	if answers.Token != "" {
		if err := config.WriteLocalDevConfig(wd, &config.DevConfig{GitHubToken: answers.Token}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored token in %s\n", config.LocalConfigFile)
	}

	added, err := project.EnsureGitignore(wd, project.IgnoredEntries)
	if err != nil {
		return err
	}
	for _, entry := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to .gitignore\n", entry)
	}

	return nil
}

// manifestFromAnswers builds the manifest for slug. An empty type yields a
// manifest without adapters.
func manifestFromAnswers(slug string, a initAnswers) *config.Config {
	cfg := &config.Config{Package: config.PackageConfig{Slug: slug}}
	if a.Type == "" {
		return cfg
	}

	settings := map[string]any{}
	set := func(key, value string) {
		if value != "" {
			settings[key] = value
		}
	}
	switch a.Type {
	case adapters.TypeRemote:
		set("url", a.URL)
	default:
		set("owner", a.Owner)
		set("repository", a.Repository)
		if a.Type == adapters.TypeGitTags {
			set("url", a.URL)
		}
	}

	ac := config.AdapterConfig{Type: a.Type}
	if len(settings) > 0 {
		ac.Settings = settings
	}
	cfg.Adapters = []config.AdapterConfig{ac}
	return cfg
}

// promptAnswers uses huh to fill in the answers not given as flags.
func promptAnswers(a *initAnswers) error {
	if a.Type == "" {
		options := []huh.Option[string]{huh.NewOption("none (configure later)", "")}
		for _, t := range updater.RegisteredTypes() {
			if t == updater.NoopType {
				continue
			}
			options = append(options, huh.NewOption(t, t))
		}
		if err := huh.NewSelect[string]().
			Title("Where are updates published?").
			Options(options...).
			Value(&a.Type).
			Run(); err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
	}

	var fields []huh.Field
	switch a.Type {
	case "":
		return nil
	case adapters.TypeRemote:
		if a.URL == "" {
			fields = append(fields, huh.NewInput().Title("Metadata document URL").Value(&a.URL))
		}
	default:
		if a.Owner == "" {
			fields = append(fields, huh.NewInput().Title("Repository owner").Value(&a.Owner))
		}
		if a.Repository == "" {
			fields = append(fields, huh.NewInput().Title("Repository name").Value(&a.Repository))
		}
		fields = append(fields, huh.NewInput().
			Title("Access token (optional, stored in "+config.LocalConfigFile+")").
			EchoMode(huh.EchoModePassword).
			Value(&a.Token))
	}
	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}
