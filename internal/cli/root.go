package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addr       string
	uploadsDir string
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Sift authorization-filtered retrieval service",
}

func Execute() error { return rootCmd.Execute() }

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", ":8000", "listen address for the HTTP server")
	rootCmd.PersistentFlags().StringVar(&uploadsDir, "uploads", "uploads", "directory holding uploaded documents")

	rootCmd.AddCommand(cmdRun(), cmdInit(), cmdQuery(), cmdVersion())

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		fmt.Println(`Use -h for help, for example: sift query -s alice "What are Xiao's past experiences?"`)
	}
}
