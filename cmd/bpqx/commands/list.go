package commands

import (
	"github.com/spf13/cobra"

	"github.com/bpqx-io/bpqx/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the extensions that load successfully",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := resolveOptions()

		reg := registry.New(opts.ExtensionsDir)
		if err := reg.Load(); err != nil {
			return err
		}

		for _, ext := range reg.Extensions() {
			if ext.Version != "" {
				cmd.Printf("%s %s - %s\n", ext.Name, ext.Version, ext.Description)
			} else {
				cmd.Printf("%s - %s\n", ext.Name, ext.Description)
			}
		}
		if rejected := len(reg.Failures()); rejected > 0 {
			cmd.PrintErrf("%d document(s) rejected; run 'bpqx validate' for details\n", rejected)
		}
		return nil
	},
}
