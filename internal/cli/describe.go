package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajack/keepstyle"
)

var describeSheets int

var describeCmd = &cobra.Command{
	Use:   "describe <file.xlsx>",
	Short: "Summarize the formatting of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := keepstyle.Describe(args[0],
			keepstyle.WithLogger(logger),
			keepstyle.WithDescribeSheets(describeSheets))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	describeCmd.Flags().IntVar(&describeSheets, "sheets", 3, "number of sheets to describe")

	rootCmd.AddCommand(describeCmd)
}
