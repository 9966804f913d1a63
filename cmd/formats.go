package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nsdr/streamcore/decoder"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the packet formats the decoder registry supports",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range decoder.Formats() {
			fmt.Println(f)
		}
	},
}
