package main

import (
	"github.com/spf13/cobra"

	"homereport/service"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Generate and mail the server telemetry report",
	Long: `Reads host telemetry (disk usage, memory, uptime, load average) and
mails it as the server state report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ser, err := service.NewService(cfg)
		if err != nil {
			return err
		}
		defer ser.Close()

		return ser.RunServerReport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
