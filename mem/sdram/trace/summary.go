package trace

import (
	"context"
	"fmt"
	"sort"

	"github.com/sarchlab/sdramctrl/datarecording"
)

// CommandCount is how many times a command was issued.
type CommandCount struct {
	Command string
	Count   int
}

// Summary condenses a database written by a Recorder and a DB tracer.
type Summary struct {
	Commands    []CommandCount
	Transitions int

	Transactions   int
	Reads          int
	Writes         int
	AverageLatency float64
	MaxLatency     float64

	ViolationCount int

	// Violations lists the earliest violations, one line each.
	Violations []string
}

// Summarize reads a recording back. At most maxViolations violations are
// listed in the summary, but all of them are counted.
func Summarize(
	ctx context.Context,
	reader datarecording.DataReader,
	maxViolations int,
) (Summary, error) {
	reader.MapTable(CommandsTable, commandEntry{})
	reader.MapTable(TransitionsTable, transitionEntry{})
	reader.MapTable(ViolationsTable, violationEntry{})
	reader.MapTable(TransactionsTable, transactionEntry{})

	s := Summary{}

	if err := summarizeCommands(ctx, reader, &s); err != nil {
		return s, err
	}

	_, transitions, err := reader.Query(ctx, TransitionsTable,
		datarecording.QueryParams{Limit: 1})
	if err != nil {
		return s, err
	}

	s.Transitions = transitions

	if err := summarizeTransactions(ctx, reader, &s); err != nil {
		return s, err
	}

	if err := summarizeViolations(ctx, reader, maxViolations, &s); err != nil {
		return s, err
	}

	return s, nil
}

func summarizeCommands(
	ctx context.Context,
	reader datarecording.DataReader,
	s *Summary,
) error {
	rows, _, err := reader.Query(ctx, CommandsTable, datarecording.QueryParams{})
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.(*commandEntry).Command]++
	}

	for cmd, n := range counts {
		s.Commands = append(s.Commands, CommandCount{Command: cmd, Count: n})
	}

	sort.Slice(s.Commands, func(i, j int) bool {
		return s.Commands[i].Command < s.Commands[j].Command
	})

	return nil
}

func summarizeTransactions(
	ctx context.Context,
	reader datarecording.DataReader,
	s *Summary,
) error {
	rows, total, err := reader.Query(ctx, TransactionsTable,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	s.Transactions = total

	sum := 0.0
	for _, row := range rows {
		t := row.(*transactionEntry)

		if t.What == "write" {
			s.Writes++
		} else {
			s.Reads++
		}

		latency := t.EndTime - t.StartTime
		sum += latency
		s.MaxLatency = max(s.MaxLatency, latency)
	}

	if len(rows) > 0 {
		s.AverageLatency = sum / float64(len(rows))
	}

	return nil
}

func summarizeViolations(
	ctx context.Context,
	reader datarecording.DataReader,
	maxViolations int,
	s *Summary,
) error {
	limit := max(maxViolations, 1)

	rows, total, err := reader.Query(ctx, ViolationsTable,
		datarecording.QueryParams{OrderBy: "Cycle", Limit: limit})
	if err != nil {
		return err
	}

	s.ViolationCount = total

	for i, row := range rows {
		if i >= maxViolations {
			break
		}

		v := row.(*violationEntry)
		s.Violations = append(s.Violations, fmt.Sprintf(
			"%d, %s, %s, %s, bank %d: %s",
			v.Cycle, v.Location, v.Kind, v.Command, v.Bank, v.Detail))
	}

	return nil
}
