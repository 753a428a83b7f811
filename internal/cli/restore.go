package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/javajack/keepstyle"
)

var (
	restoreOriginal string
	restoreCurrent  string
	restoreOutput   string
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the formatting of an original workbook onto a current one",
	Long: `Copy the formatting of the original workbook onto the content of the current one.

Each sheet of the current workbook takes its styles from the same-named
original sheet, cell by cell. Rows appended after the original's last row take
the style of its first data row. Sheets without a same-named original are
styled after the first original sheet. Merged ranges, frozen panes, tab colors,
page setup, column widths and row heights come from the original.

The result is written next to the current workbook with a _TEMP suffix unless
--output is given; neither input is modified.

Example:
  keepstyle restore --original Tests_backup.xlsx --current Tests.xlsx`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVar(&restoreOriginal, "original", "", "workbook providing the formatting")
	restoreCmd.Flags().StringVar(&restoreCurrent, "current", "", "workbook providing the content")
	restoreCmd.Flags().StringVarP(&restoreOutput, "output", "o", "", "output path (default: <current>_TEMP.xlsx)")
	_ = restoreCmd.MarkFlagRequired("original")
	_ = restoreCmd.MarkFlagRequired("current")

	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	opts := append(cfg.RestoreOptions(),
		keepstyle.WithLogger(logger),
		keepstyle.WithOutputPath(restoreOutput),
	)
	rep, err := keepstyle.RestoreWorkbook(restoreOriginal, restoreCurrent, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHEET\tMODE\tSOURCE\tROWS\tCOLS\tAPPENDED\tNON-EMPTY")
	for _, s := range rep.Sheets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n", s.Sheet, s.Mode, s.Source, s.Rows, s.Cols, s.AppendedRows, s.NonEmptyRows)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nRestored workbook saved to: %s\n", rep.OutputPath)
	return nil
}
