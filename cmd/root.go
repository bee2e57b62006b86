// Package main contains the CLI commands for homereport, built using
// the Cobra library. Scheduling is left to cron; every command runs its
// pipeline exactly once and exits.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"homereport/config"
	"homereport/logger"
)

var cfg = config.NewConfig()

var rootCmd = &cobra.Command{
	Use:   "homereport",
	Short: "Home-server maintenance reports delivered by mail",
	Long: `homereport generates maintenance reports for a home server and mails
them to the operator: a commit activity report over a directory of local
git repositories, and a host telemetry report (disk, memory, uptime,
load). Run it from cron; there is no built-in scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Load(); err != nil {
			return err
		}
		return logger.Initialize(cfg.Debug)
	},
}

// Execute runs the root command and maps any failure to exit code 1 so
// the scheduler's own alerting can pick it up.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "print the report to stdout instead of mailing it")
	flags.String("gmail-username", "", "gmail username used to send the report")
	flags.String("app-password", "", "app password authorizing homereport to send mail")
	flags.String("recipients", "", "comma-separated recipient addresses (default: the sender)")
	flags.String("smtp-host", "smtp.gmail.com", "SMTP host")
	flags.Int("smtp-port", 465, "SMTPS port")
	flags.String("history-db", "homereport.db", "path of the run-history database")

	viper.BindPFlag("debug", flags.Lookup("debug"))
	viper.BindPFlag("gmail_username", flags.Lookup("gmail-username"))
	viper.BindPFlag("app_password", flags.Lookup("app-password"))
	viper.BindPFlag("recipients", flags.Lookup("recipients"))
	viper.BindPFlag("smtp_host", flags.Lookup("smtp-host"))
	viper.BindPFlag("smtp_port", flags.Lookup("smtp-port"))
	viper.BindPFlag("history_db", flags.Lookup("history-db"))
}
