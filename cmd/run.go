package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipesh/pipesh/core"
	"github.com/pipesh/pipesh/core/config"
	"github.com/pipesh/pipesh/core/logger"
)

var runLogPath string

// runCmd starts an interactive session on the local terminal.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive session on the local terminal.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		// Fall back to the built-in defaults when no config dir was set up;
		// local use shouldn't require an init step.
		configuration, err := config.Load(cfgPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			configuration = config.Default()
		case err != nil:
			return err
		}

		recorder := logger.NewDiscardLogRecorder()
		if runLogPath != "" {
			fd, err := os.OpenFile(runLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return err
			}
			defer fd.Close()
			recorder = logger.NewJsonLinesLogRecorder(fd)
		}

		session, err := core.NewSession(configuration, core.SessionIO{
			Stdin:         os.Stdin,
			Stdout:        os.Stdout,
			Stderr:        os.Stderr,
			PipelineStdin: os.Stdin,
		}, recorder.NewSession("local"))
		if err != nil {
			return err
		}
		defer session.Close()

		return session.Run()
	},
}

func init() {
	runCmd.Flags().StringVar(&runLogPath, "log", "", "append the JSON event log to this file")
	rootCmd.AddCommand(runCmd)
}
