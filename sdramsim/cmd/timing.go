package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/sdramctrl/mem/sdram"
)

func newTimingCmd() *cobra.Command {
	o := &specOptions{}

	timingCmd := &cobra.Command{
		Use:   "timing",
		Short: "Print the controller timing derived from the datasheet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := o.spec()
			if err != nil {
				return err
			}

			printTiming(cmd.OutOrStdout(), spec)

			return nil
		},
	}

	o.register(timingCmd.Flags())

	return timingCmd
}

func printTiming(w io.Writer, s sdram.Spec) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Clock\t%.1f MHz\n", float64(s.Freq)/1e6)
	fmt.Fprintf(tw, "Banks x rows x words\t%d x %d x %d\n",
		1<<s.Geometry.BankBits, 1<<s.Geometry.RowBits, 1<<s.Geometry.ColBits)
	fmt.Fprintf(tw, "CAS latency\t%d\n", s.CASLatency)
	fmt.Fprintf(tw, "Burst length\t%d\n", s.BurstLength)
	fmt.Fprintf(tw, "Mode register\t0x%03X\n", s.ModeRegisterValue())
	fmt.Fprintf(tw, "Power-up\t%d cycles\n", s.PowerUp)
	fmt.Fprintf(tw, "tRCD\t%d cycles\n", s.RASToCAS)
	fmt.Fprintf(tw, "tRP\t%d cycles\n", s.Precharge)
	fmt.Fprintf(tw, "tRC\t%d cycles\n", s.RowCycle)
	fmt.Fprintf(tw, "tMRD\t%d cycles\n", s.ModeRegister)
	fmt.Fprintf(tw, "Refresh interval\t%d cycles\n", s.RefreshInterval)
	fmt.Fprintf(tw, "Ready latency\t%d cycles\n", s.ReadyLatency())
	fmt.Fprintf(tw, "Worst-case access\t%d cycles\n", s.WorstCaseAccessCycles())
	fmt.Fprintf(tw, "Max refresh gap\t%d cycles\n", s.MaxRefreshGap())
	fmt.Fprintf(tw, "Max completion latency\t%d cycles\n", s.MaxCompletionLatency())

	tw.Flush()
}
