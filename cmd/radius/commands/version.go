package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jayden-Richmond/Radius-Finance/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
