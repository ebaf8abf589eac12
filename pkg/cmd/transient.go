package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newTransientCmd() *cobra.Command {
	transientCmd := &cobra.Command{
		Use:   "transient",
		Short: "Print the update cache entry a check would write",
		Long: `Walks the adapter chain and prints the update cache entry for the
installed theme as TOML. With --write the entry is saved to the update cache.`,
		Args: cobra.NoArgs,
		RunE: runTransient,
	}

	transientCmd.Flags().Bool("write", false, "save the entry to the update cache")

	return transientCmd
}

func runTransient(cmd *cobra.Command, args []string) error {
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}

	res, err := openResolution()
	if err != nil {
		return err
	}

	result := res.Check(cmd.Context(), true)
	data, err := toml.Marshal(result.ResultTransient())
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	if !write {
		return nil
	}
	if err := res.Save(result); err != nil {
		return err
	}
	table := "no_update"
	if result.IsReadyUpdate() {
		table = "response"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s [%s]\n", res.Cache.Path(), table)
	return nil
}
