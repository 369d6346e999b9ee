package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/sdramctrl/datarecording"
	"github.com/sarchlab/sdramctrl/mem/sdram/trace"
)

func newReportCmd() *cobra.Command {
	var maxViolations int

	reportCmd := &cobra.Command{
		Use:   "report <database>",
		Short: "Summarize a database written by run --record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReport(cmd.Context(), args[0], maxViolations,
				cmd.OutOrStdout())
		},
	}

	reportCmd.Flags().IntVar(&maxViolations, "violations",
		envInt("REPORT_VIOLATIONS", 10), "number of violations to list")

	return reportCmd
}

func printReport(
	ctx context.Context,
	path string,
	maxViolations int,
	w io.Writer,
) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	reader := datarecording.NewReader(path)
	defer reader.Close()

	s, err := trace.Summarize(ctx, reader, maxViolations)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Transactions\t%d (%d reads, %d writes)\n",
		s.Transactions, s.Reads, s.Writes)
	fmt.Fprintf(tw, "Transaction time\tavg %.1f ns, max %.1f ns\n",
		s.AverageLatency*1e9, s.MaxLatency*1e9)
	fmt.Fprintf(tw, "Transitions\t%d\n", s.Transitions)

	for _, c := range s.Commands {
		fmt.Fprintf(tw, "%s\t%d\n", c.Command, c.Count)
	}

	fmt.Fprintf(tw, "Violations\t%d\n", s.ViolationCount)

	tw.Flush()

	for _, v := range s.Violations {
		fmt.Fprintln(w, v)
	}

	return nil
}
