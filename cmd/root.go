package cmd

import (
	"fmt"
	"os"

	"patrimony-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "patrimony-manager",
	Short: "Patrimony Manager Service",
	Long: `Patrimony Manager tracks physical assets across organizational areas
and reconciles periodic inventory counts back into the registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Report through the application's standard logger. Console
		// format with the debug configuration gives readable ISO8601
		// timestamps for a CLI run.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
