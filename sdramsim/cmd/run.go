package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/sdramctrl/datarecording"
	"github.com/sarchlab/sdramctrl/mem/acceptancetests/sweepagent"
	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/mem/sdram/device"
	"github.com/sarchlab/sdramctrl/mem/sdram/trace"
	"github.com/sarchlab/sdramctrl/monitoring"
	"github.com/sarchlab/sdramctrl/sim"
	"github.com/sarchlab/sdramctrl/tracing"
)

const cyclesPerChunk = 10000

// autoRecordPath is the value of a bare --record. The recorder then picks a
// unique database name.
const autoRecordPath = "auto"

type runOptions struct {
	specOptions

	first     uint32
	count     uint32
	maxCycles uint64

	logCommands    bool
	logTransitions bool
	logViolations  bool
	logEvents      bool
	logRequests    bool
	traceFile      string
	recordPath     string
	parallelIDs    bool

	monitor     bool
	monitorPort int
	openBrowser bool
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a write/read-back sweep through the controller.",
		Long: `run connects a sweep agent, the controller and a device model, ` +
			`writes every address of the range, reads them back and reports ` +
			`mismatches and protocol violations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(*o, cmd.OutOrStdout())
		},
	}

	flags := runCmd.Flags()
	o.register(flags)

	flags.Uint32Var(&o.first, "first",
		uint32(envInt("SWEEP_FIRST", 0)), "first word address of the sweep")
	flags.Uint32Var(&o.count, "count",
		uint32(envInt("SWEEP_COUNT", 4096)), "number of words to sweep")
	flags.Uint64Var(&o.maxCycles, "max-cycles",
		uint64(envInt("MAX_CYCLES", 0)), "give up after this many cycles, 0 for no limit")
	flags.BoolVar(&o.logCommands, "log-commands",
		envBool("LOG_COMMANDS", false), "log every command to stderr")
	flags.BoolVar(&o.logTransitions, "log-transitions",
		envBool("LOG_TRANSITIONS", false), "also log state transitions")
	flags.BoolVar(&o.logViolations, "log-violations",
		envBool("LOG_VIOLATIONS", true), "log device timing violations")
	flags.BoolVar(&o.logRequests, "log-requests",
		envBool("LOG_REQUESTS", false), "log every request of the sweep agent")
	flags.BoolVar(&o.logEvents, "log-events",
		envBool("LOG_EVENTS", false), "log every simulation event")
	flags.StringVar(&o.traceFile, "trace-file",
		envString("TRACE_FILE", ""), "write transactions to this file")
	flags.StringVar(&o.recordPath, "record",
		envString("RECORD", ""),
		"record commands and transactions into this SQLite database, "+
			"named automatically when no path is given")
	flags.Lookup("record").NoOptDefVal = autoRecordPath
	flags.BoolVar(&o.parallelIDs, "parallel-ids",
		envBool("PARALLEL_IDS", false),
		"name requests with globally unique IDs instead of sequence numbers")
	flags.BoolVar(&o.monitor, "monitor",
		envBool("MONITOR", false), "serve the web monitor")
	flags.IntVar(&o.monitorPort, "monitor-port",
		envInt("MONITOR_PORT", 0), "port of the web monitor, 0 for a random one")
	flags.BoolVar(&o.openBrowser, "open-browser",
		envBool("OPEN_BROWSER", false), "open the web monitor in a browser")

	return runCmd
}

type platform struct {
	engine *sim.SerialEngine
	ctrl   *sdram.Comp
	dev    *device.Device
	agent  *sweepagent.Agent

	latency  *tracing.AverageTimeTracer
	steps    *tracing.StepCountTracer
	recorder datarecording.DataRecorder
	bar      *monitoring.ProgressBar
	monitor  *monitoring.Monitor
}

func deviceFor(spec sdram.Spec) *device.Device {
	g := spec.Geometry
	if spec.BurstLength == 2 {
		g.ColBits++
	}

	t := device.DefaultTiming()
	t.PowerUp = spec.PowerUp
	t.RASToCAS = spec.RASToCAS
	t.Precharge = spec.Precharge
	t.RowCycle = spec.RowCycle
	t.RefreshCycle = spec.RowCycle
	t.ModeRegister = spec.ModeRegister
	t.MaxRefreshGap = spec.MaxRefreshGap()

	return device.MakeBuilder().WithGeometry(g).WithTiming(t).Build("Device")
}

func buildPlatform(o runOptions) (*platform, error) {
	spec, err := o.spec()
	if err != nil {
		return nil, err
	}

	if uint64(o.first)+uint64(o.count) > spec.Geometry.NumWords() {
		return nil, fmt.Errorf("sweep of %d words at 0x%X exceeds %d words",
			o.count, o.first, spec.Geometry.NumWords())
	}

	p := &platform{engine: sim.NewSerialEngine()}
	p.dev = deviceFor(spec)
	ctrlBuilder := sdram.MakeBuilder().
		WithEngine(p.engine).
		WithSpec(spec).
		WithDevice(p.dev)
	if o.parallelIDs {
		ctrlBuilder = ctrlBuilder.WithIDGenerator(sim.NewParallelIDGenerator())
	}

	p.ctrl = ctrlBuilder.Build("SDRAMCtrl")

	agentBuilder := sweepagent.MakeBuilder().
		WithEngine(p.engine).
		WithController(p.ctrl).
		WithRange(o.first, o.count)
	if o.logRequests {
		agentBuilder = agentBuilder.WithLogger(log.New(os.Stderr, "", 0))
	}

	p.agent = agentBuilder.Build("SweepAgent")

	p.latency = tracing.NewAverageTimeTracer(p.engine, tracing.KindFilter("req"))
	tracing.CollectTrace(p.ctrl, p.latency)
	p.steps = tracing.NewStepCountTracer(tracing.KindFilter("req"))
	tracing.CollectTrace(p.ctrl, p.steps)

	if err := p.attachLoggers(o); err != nil {
		return nil, err
	}

	if o.recordPath != "" {
		path := o.recordPath
		if path == autoRecordPath {
			path = ""
		}

		p.recorder = datarecording.New(path)
		r := trace.NewRecorder(p.recorder)
		p.ctrl.AcceptHook(r)
		p.dev.AcceptHook(r)
		tracing.CollectTrace(p.ctrl, trace.NewDBTracer(p.recorder, p.engine))
	}

	if o.monitor {
		p.startMonitor(o)
	}

	return p, nil
}

func (p *platform) attachLoggers(o runOptions) error {
	stderr := log.New(os.Stderr, "", 0)

	if o.logCommands || o.logTransitions {
		l := sdram.NewCommandLogger(stderr)
		l.LogTransitions = o.logTransitions
		p.ctrl.AcceptHook(l)
	}

	if o.logViolations {
		p.dev.AcceptHook(device.NewViolationLogger(stderr))
	}

	if o.logEvents {
		p.engine.AcceptHook(sim.NewEventLogger(stderr))
	}

	if o.traceFile != "" {
		f, err := os.Create(o.traceFile)
		if err != nil {
			return err
		}

		atexit.Register(func() { f.Close() })

		tracing.CollectTrace(p.ctrl,
			trace.NewTracer(log.New(f, "", 0), p.engine))
	}

	return nil
}

func (p *platform) startMonitor(o runOptions) {
	p.monitor = monitoring.NewMonitor().WithPortNumber(o.monitorPort)
	p.monitor.RegisterEngine(p.engine)
	p.monitor.RegisterComponent(p.ctrl)
	p.monitor.RegisterComponent(p.agent)
	p.bar = p.monitor.CreateProgressBar("Sweep", 2*uint64(o.count))

	url := p.monitor.StartServer()
	if o.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}
}

// run advances the simulation in chunks until the sweep completes.
func (p *platform) run(maxCycles uint64) error {
	p.ctrl.Start()
	p.agent.TickNow()

	chunk := p.ctrl.Spec.Freq.Period() * cyclesPerChunk

	for !p.agent.Done() {
		if maxCycles > 0 && p.ctrl.Cycle() >= maxCycles {
			return fmt.Errorf("sweep not done after %d cycles: %s, %d of %d requests",
				p.ctrl.Cycle(), p.agent.Phase(), p.agent.Completed,
				2*p.agent.Count)
		}

		err := p.engine.RunUntil(p.engine.CurrentTime() + chunk)
		if err != nil {
			return err
		}

		if p.bar != nil {
			p.bar.SetFinished(uint64(p.agent.Completed), 1)
		}
	}

	if p.bar != nil {
		p.monitor.CompleteProgressBar(p.bar)
	}

	if p.recorder != nil {
		return p.recorder.Close()
	}

	return nil
}

func (p *platform) report(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	result := "PASS"
	if !p.agent.Passed() || len(p.dev.Violations()) > 0 {
		result = "FAIL"
	}

	fmt.Fprintf(tw, "Result\t%s\n", result)
	fmt.Fprintf(tw, "Cycles\t%d\n", p.ctrl.Cycle())
	fmt.Fprintf(tw, "Ready after\t%d cycles\n", p.agent.ReadyAtCycles)
	fmt.Fprintf(tw, "Requests\t%d\n", p.agent.Completed)
	fmt.Fprintf(tw, "Mismatches\t%d\n", len(p.agent.Mismatches))
	fmt.Fprintf(tw, "Latency\tavg %.2f, max %d cycles\n",
		p.agent.AverageLatency(), p.agent.MaxLatency)
	fmt.Fprintf(tw, "Transaction time\tavg %.1f ns, max %.1f ns\n",
		float64(p.latency.AverageTime())*1e9, float64(p.latency.MaxTime())*1e9)
	for _, c := range p.steps.Counts() {
		fmt.Fprintf(tw, "%s commands\t%d in %d requests\n",
			c.What, c.Steps, c.Tasks)
	}

	fmt.Fprintf(tw, "Refreshes\t%d\n", p.dev.RefreshCount())
	fmt.Fprintf(tw, "Max refresh gap\t%d cycles (bound %d)\n",
		p.dev.MaxRefreshGap(), p.ctrl.Spec.MaxRefreshGap())
	fmt.Fprintf(tw, "Violations\t%d\n", len(p.dev.Violations()))

	tw.Flush()

	for i, m := range p.agent.Mismatches {
		if i == 10 {
			fmt.Fprintf(w, "... %d more mismatches\n", len(p.agent.Mismatches)-i)
			break
		}

		fmt.Fprintln(w, m.Error())
	}
}

func runSweep(o runOptions, w io.Writer) error {
	p, err := buildPlatform(o)
	if err != nil {
		return err
	}

	if err := p.run(o.maxCycles); err != nil {
		return err
	}

	p.report(w)

	if n := len(p.agent.Mismatches); n > 0 {
		return fmt.Errorf("sweep failed with %d mismatches", n)
	}

	if n := len(p.dev.Violations()); n > 0 {
		return fmt.Errorf("sweep failed with %d timing violations", n)
	}

	return nil
}
