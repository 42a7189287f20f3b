package commands

import (
	"context"
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bpqx-io/bpqx/internal/config"
	"github.com/bpqx-io/bpqx/internal/event"
	"github.com/bpqx-io/bpqx/internal/logging"
	"github.com/bpqx-io/bpqx/internal/registry"
	"github.com/bpqx-io/bpqx/internal/session"
	"github.com/bpqx-io/bpqx/internal/shell"
)

var flagWatch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive BPQX session",
	Long: `Start an interactive session: extension documents are loaded from the
extensions directory, invalid ones are reported and skipped, and the main
menu is presented on standard output.

Examples:
  bpqx run
  bpqx run --dir /opt/bpqx
  bpqx run --extensions ./extensions --watch`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload extensions when documents change")
}

func runSession(cmd *cobra.Command, args []string) error {
	opts := resolveOptions()

	unsubscribe := event.SubscribeLogger()
	defer unsubscribe()

	settings, err := config.LoadSettings(afero.NewOsFs(), opts.Dir)
	if err != nil {
		return err
	}

	reg := registry.New(opts.ExtensionsDir)
	if err := reg.Load(); err != nil {
		return err
	}
	for _, failure := range reg.Failures() {
		for _, msg := range failure.Messages() {
			cmd.PrintErrln(msg)
		}
	}
	if reg.Len() == 0 {
		return errors.New("no valid extensions found")
	}

	if opts.Watch {
		watcher, err := registry.NewWatcher(reg)
		if err != nil {
			logging.Warn().Err(err).Msg("extension watcher unavailable")
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	sess := session.New(session.Config{
		Registry: reg,
		Settings: settings,
		Runner:   shell.NewRunner(shell.WithWorkDir(opts.Dir)),
		NoColor:  opts.NoColor,
	})
	return sess.Run(context.Background())
}
