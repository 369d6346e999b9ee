package cmd

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	_ "github.com/mattn/go-sqlite3"
)

func execute(args ...string) (string, error) {
	out := new(bytes.Buffer)

	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(GinkgoWriter)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

var fastRun = []string{
	"run",
	"--power-up", "10",
	"--refresh-interval", "100",
	"--log-violations=false",
}

var _ = Describe("timing", func() {
	It("should derive the default part", func() {
		out, err := execute("timing")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`Mode register\s+0x031`))
		Expect(out).To(MatchRegexp(`Refresh interval\s+781 cycles`))
		Expect(out).To(MatchRegexp(`Ready latency\s+20030 cycles`))
	})

	It("should follow the clock", func() {
		out, err := execute("timing", "--freq-mhz", "133")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`tRCD\s+3 cycles`))
		Expect(out).To(MatchRegexp(`tRC\s+9 cycles`))
	})

	It("should reject unsupported burst lengths", func() {
		_, err := execute("timing", "--burst-length", "4")

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("run", func() {
	AfterEach(func() {
		os.Unsetenv("SDRAMSIM_SWEEP_COUNT")
	})

	It("should pass a sweep", func() {
		out, err := execute(append(fastRun, "--count", "64")...)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`Result\s+PASS`))
		Expect(out).To(MatchRegexp(`Ready after\s+40 cycles`))
		Expect(out).To(MatchRegexp(`Requests\s+128`))
		Expect(out).To(MatchRegexp(`Violations\s+0`))
		Expect(out).To(MatchRegexp(`ACTIVATE commands\s+128 in 128 requests`))
		Expect(out).To(MatchRegexp(`WRITE commands\s+64 in 64 requests`))
		Expect(out).To(MatchRegexp(`READ commands\s+64 in 64 requests`))
	})

	It("should sweep single beat words", func() {
		out, err := execute(append(fastRun,
			"--count", "32", "--burst-length", "1", "--cas-latency", "2")...)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`Result\s+PASS`))
	})

	It("should take defaults from the environment", func() {
		os.Setenv("SDRAMSIM_SWEEP_COUNT", "8")

		out, err := execute(fastRun...)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`Requests\s+16`))
	})

	It("should refuse a range outside the device", func() {
		_, err := execute(append(fastRun,
			"--first", "8388600", "--count", "16")...)

		Expect(err).To(MatchError(ContainSubstring("exceeds")))
	})

	It("should give up after the cycle limit", func() {
		_, err := execute(append(fastRun,
			"--count", "4096", "--max-cycles", "20000")...)

		Expect(err).To(MatchError(ContainSubstring("sweep not done")))
	})

	It("should record into a database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		_, err := execute(append(fastRun, "--count", "8", "--record="+path)...)
		Expect(err).NotTo(HaveOccurred())

		Expect(path + ".sqlite3").To(BeAnExistingFile())

		db, err := sql.Open("sqlite3", path+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var commands int
		err = db.QueryRow("SELECT COUNT(*) FROM sdram_commands").Scan(&commands)
		Expect(err).NotTo(HaveOccurred())
		Expect(commands).To(BeNumerically(">", 9))

		var transactions int
		err = db.QueryRow(
			"SELECT COUNT(*) FROM sdram_transactions").Scan(&transactions)
		Expect(err).NotTo(HaveOccurred())
		Expect(transactions).To(Equal(16))

		var transitions int
		err = db.QueryRow(
			`SELECT COUNT(*) FROM sdram_transitions WHERE "From" = 'Idle'`).
			Scan(&transitions)
		Expect(err).NotTo(HaveOccurred())
		Expect(transitions).To(BeNumerically(">=", 17))
	})

	It("should summarize a recording", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		_, err := execute(append(fastRun, "--count", "8", "--record="+path)...)
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("report", path+".sqlite3")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`Transactions\s+16 \(8 reads, 8 writes\)`))
		Expect(out).To(MatchRegexp(`ACTIVATE\s+16`))
		Expect(out).To(MatchRegexp(`PRECHARGE\s+8`))
		Expect(out).To(MatchRegexp(`LOAD_MODE_REGISTER\s+1`))
		Expect(out).To(MatchRegexp(`Violations\s+0`))
	})

	It("should refuse to summarize a missing database", func() {
		_, err := execute("report",
			filepath.Join(GinkgoT().TempDir(), "missing.sqlite3"))

		Expect(err).To(HaveOccurred())
	})

	It("should name the database itself when given no path", func() {
		wd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())
		DeferCleanup(os.Chdir, wd)

		_, err = execute(append(fastRun, "--count", "4", "--record")...)
		Expect(err).NotTo(HaveOccurred())

		files, err := filepath.Glob("sdram_recording_*.sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(HaveLen(1))

		out, err := execute("report", files[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`Transactions\s+8 \(4 reads, 4 writes\)`))
	})

	It("should name requests with unique ids on request", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.log")

		_, err := execute(append(fastRun, "--count", "2",
			"--parallel-ids", "--trace-file", path)...)
		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(MatchRegexp(
			`(?m)^start, [0-9.]+, SDRAMCtrl, [0-9a-v]{20}, write, `))
		Expect(string(content)).NotTo(MatchRegexp(
			`(?m)^start, [0-9.]+, SDRAMCtrl, [0-9]+, `))
	})

	It("should write a transaction trace", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.log")

		_, err := execute(append(fastRun, "--count", "4", "--trace-file", path)...)
		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("start, "))
		Expect(string(content)).To(ContainSubstring("end, "))
	})
})
