package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javajack/keepstyle"
)

var (
	verifyOriginal string
	verifyResult   string
	verifyBackup   string
	verifyStrict   bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the formatting of a restored workbook with its original",
	Long: `Compare column widths, row heights, merged ranges, frozen panes, tab colors and
the styles of the leading cells of every sheet present in both workbooks.

With --backup, also check that every sheet kept the number of non-empty rows
of the backup. Discrepancies are reported, not treated as failures, unless
--strict is given.

Example:
  keepstyle verify --original Tests_backup.xlsx --result Tests_TEMP.xlsx --backup Tests.xlsx`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyOriginal, "original", "", "reference workbook")
	verifyCmd.Flags().StringVar(&verifyResult, "result", "", "workbook to check")
	verifyCmd.Flags().StringVar(&verifyBackup, "backup", "", "workbook holding the content before restoring")
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "exit with an error when discrepancies are found")
	_ = verifyCmd.MarkFlagRequired("original")
	_ = verifyCmd.MarkFlagRequired("result")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	opts := append(cfg.VerifyOptions(), keepstyle.WithLogger(logger))
	rep, err := keepstyle.VerifyWorkbooks(verifyOriginal, verifyResult, verifyBackup, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sheets compared: %s\n", strings.Join(rep.Compared, ", "))
	if len(rep.NewSheets) > 0 {
		fmt.Fprintf(out, "New sheets: %s\n", strings.Join(rep.NewSheets, ", "))
	}

	fmt.Fprintf(out, "\nFormatting discrepancies: %d\n", len(rep.Discrepancies))
	for _, d := range rep.Discrepancies {
		fmt.Fprintf(out, "  %s\n", d)
	}

	count := len(rep.Discrepancies)
	if rep.Content != nil {
		fmt.Fprintf(out, "\nContent discrepancies: %d\n", len(rep.Content.Discrepancies))
		for _, d := range rep.Content.Discrepancies {
			fmt.Fprintf(out, "  %s\n", d)
		}
		count += len(rep.Content.Discrepancies)
	}

	fmt.Fprintf(out, "\nNon-empty rows: original %d, result %d", rep.ReferenceRows, rep.CandidateRows)
	if rep.Content != nil {
		fmt.Fprintf(out, ", backup %d", rep.BackupRows)
	}
	fmt.Fprintln(out)

	if verifyStrict && !rep.OK() {
		return fmt.Errorf("verification found %d discrepancies", count)
	}
	return nil
}
