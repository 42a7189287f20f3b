package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpqx-io/bpqx/internal/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every extension document and report schema violations",
	Long: `Validate loads every extension document exactly as 'run' would and
prints each violation with the path of the offending node. The command
fails when any document is rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := resolveOptions()

		reg := registry.New(opts.ExtensionsDir)
		if err := reg.Load(); err != nil {
			return err
		}

		failures := reg.Failures()
		for _, failure := range failures {
			for _, msg := range failure.Messages() {
				cmd.Println(msg)
			}
		}

		cmd.Printf("%d extension(s) valid, %d document(s) rejected\n", reg.Len(), len(failures))
		if len(failures) > 0 {
			return fmt.Errorf("%d invalid document(s)", len(failures))
		}
		return nil
	},
}
