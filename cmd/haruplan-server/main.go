package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haruplan/haruplan/assistantservice"
)

var rootCmd = &cobra.Command{
	Use:   "haruplan-server",
	Short: "HTTP server for the haruplan calendar assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return assistantservice.Run()
	},
}

func main() {
	rootCmd.PersistentFlags().StringP("db-driver", "d", "", "Override HARUPLAN_DB_DRIVER (sqlite, postgres)")
	cobra.OnInitialize(func() {
		if driver, _ := rootCmd.PersistentFlags().GetString("db-driver"); driver != "" {
			_ = os.Setenv("HARUPLAN_DB_DRIVER", driver)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
