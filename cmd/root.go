package cmd

import (
	"fmt"
	"log"
	"os"

	"Bt1Arena/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bt1arena",
	Short: "Bt1Arena is the account service of the Bt1 arcade platform.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting Bt1Arena server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
