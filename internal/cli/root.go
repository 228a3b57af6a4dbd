package cli

import (
	"fmt"

	"github.com/on-the-ground/siphon_go/siphon/config"
	siphonlog "github.com/on-the-ground/siphon_go/siphon/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command of the siphon CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "siphon",
		Short: "siphon - unidirectional state engine",
		Long:  "Runs the sample applications of the siphon state engine.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML settings file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides the settings file")

	cmd.AddCommand(NewCounterCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	return cmd
}

// load reads the settings and builds the logger they ask for.
func (o *RootOptions) load() (config.Settings, *zap.Logger, error) {
	settings, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Settings{}, nil, err
	}
	if o.LogLevel != "" {
		settings.LogLevel = o.LogLevel
	}
	logger, err := siphonlog.New(siphonlog.LogLevel(settings.LogLevel))
	if err != nil {
		return config.Settings{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return settings, logger, nil
}
