// Command edoquery runs catalog queries against the campus EDO database and
// prints milestone and term reference data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edoquery/pkg/config"
	"edoquery/pkg/logger"
	"edoquery/pkg/otel"
	"edoquery/pkg/trace"
)

// Version is set at build time.
var Version = "dev"

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var (
		env       string
		configDir string
	)

	root := &cobra.Command{
		Use:           "edoquery",
		Short:         "Query the campus EDO database",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(env, configDir)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.NewLogger(cfg.Log)

			shutdown, err := otel.Init(cfg.Otel, Version, a.log)
			if err != nil {
				a.log.Warn("Tracing disabled", zap.Error(err))
				shutdown = func() {}
			}
			a.closers = append(a.closers, shutdown)

			cmd.SetContext(trace.WithContext(cmd.Context(), trace.GenerateTraceID()))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&env, "env", config.GetConfigEnv(), "Config environment (base.yaml is overlaid with <env>.yaml)")
	root.PersistentFlags().StringVar(&configDir, "config-dir", "config", "Directory holding the config files")
	root.PersistentFlags().StringVarP(&a.format, "output", "o", "table", "Output format: table or json")

	root.AddCommand(
		newMilestoneCmd(a),
		newTermsCmd(a),
		newQueryCmd(a),
	)
	return root
}
