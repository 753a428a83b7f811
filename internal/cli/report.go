package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javajack/keepstyle"
)

var (
	reportTemplate string
	reportOutput   string
	reportTester   string
	reportDryRun   bool
)

var reportCmd = &cobra.Command{
	Use:   "report <input.yaml>",
	Short: "Generate an end-of-day report from YAML input",
	Long: `Populate the seven numbered sections of a report template from a YAML file.

The template must contain every heading from "1. Product and Environment Tested"
to "7. Testing Status"; nothing is written when one is missing. The report is
saved as EOD_<date>_<tester>.docx in the configured output directory unless
--output is given.

Environment:
  KEEPSTYLE_TEMPLATE   template used when neither --template nor the config names one

Examples:
  keepstyle report eod_notes.yaml --template "Reports end of the day highlights.docx"
  keepstyle report eod_notes.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportTemplate, "template", "t", "", "report template (.docx)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output path (default: <output_dir>/EOD_<date>_<tester>.docx)")
	reportCmd.Flags().StringVar(&reportTester, "tester", "", "tester name (default: input tester.name or the OS user)")
	reportCmd.Flags().BoolVar(&reportDryRun, "dry-run", false, "populate the report without saving it")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	template := reportTemplate
	if template == "" {
		template = cfg.Report.Template
	}
	if template == "" {
		template = os.Getenv("KEEPSTYLE_TEMPLATE")
	}
	if template == "" {
		return fmt.Errorf("no report template: use --template, report.template or KEEPSTYLE_TEMPLATE")
	}

	opts := append(cfg.ReportOptions(),
		keepstyle.WithLogger(logger),
		keepstyle.WithOutputPath(reportOutput),
		keepstyle.WithTester(reportTester),
		keepstyle.WithDryRun(reportDryRun),
	)
	res, err := keepstyle.GenerateReport(args[0], template, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report date: %s\n", res.Date.Format(keepstyle.DisplayDateLayout))
	fmt.Fprintf(out, "Tester: %s\n", res.Tester)
	if !res.Written {
		fmt.Fprintf(out, "Would save to: %s\n", res.OutputPath)
		fmt.Fprintf(out, "File size: %d bytes (estimated)\n", res.EstimatedSize)
		fmt.Fprintf(out, "  Product: %s\n", res.Product)
		fmt.Fprintf(out, "  Areas covered: %d items\n", res.AreaLines)
		fmt.Fprintf(out, "  Bugs reported: %d bugs\n", res.Bugs)
		fmt.Fprintf(out, "  Status: %s\n", res.Status)
		return nil
	}
	fmt.Fprintf(out, "Report saved to: %s (%d bytes)\n", res.OutputPath, res.Size)
	return nil
}
