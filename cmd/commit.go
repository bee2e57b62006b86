package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"homereport/service"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate and mail the commit activity report",
	Long: `Scans every git repository under --repos-dir, summarizes commit
activity (last day, last week, commit streak, line counts), appends host
telemetry, and mails the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ser, err := service.NewService(cfg)
		if err != nil {
			return err
		}
		defer ser.Close()

		return ser.RunCommitReport(cmd.Context())
	},
}

func init() {
	commitCmd.Flags().String("repos-dir", "", "directory that contains the repositories to report on")
	viper.BindPFlag("repos_dir", commitCmd.Flags().Lookup("repos-dir"))

	rootCmd.AddCommand(commitCmd)
}
