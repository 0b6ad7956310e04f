package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/zan8in/gologger"
	"github.com/zan8in/gologger/levels"
	"github.com/zan8in/squidscan/pkg/config"
	"github.com/zan8in/squidscan/pkg/log"
	"github.com/zan8in/squidscan/pkg/output"
	"github.com/zan8in/squidscan/pkg/progress"
	"github.com/zan8in/squidscan/pkg/proxyscan"
	"go.uber.org/zap"
)

const progressInterval = 500 * time.Millisecond

type Runner struct {
	options *config.Options
	scanner *proxyscan.Scanner
	diag    *zap.Logger
	oj      *output.OutputJson

	// Stdout receives results and the summary, Stderr the progress line.
	Stdout io.Writer
	Stderr io.Writer

	printMu  sync.Mutex
	found    int
	lastLine int
}

// New verifies the command line, loads the configuration file and builds
// the scanner. Every error returned here is a configuration error.
func New(options *config.Options) (*Runner, error) {
	switch {
	case options.Silent:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	case options.Debug:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}

	if err := options.VerifyOptions(); err != nil {
		return nil, err
	}

	if options.Config == nil {
		cfg, err := config.New(options.ConfigFile)
		if err != nil {
			return nil, err
		}
		options.Config = cfg
	}

	scanOptions, err := options.ScanOptions()
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		options: options,
		diag:    log.NewDiagnostics(options.DiagLog),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
	scanOptions.Diagnostics = runner.diag
	scanOptions.OnResult = runner.onResult

	scanner, err := proxyscan.NewScanner(scanOptions)
	if err != nil {
		return nil, err
	}
	runner.scanner = scanner

	if len(options.Output) > 0 {
		runner.oj = output.NewOutputJson(options.Output)
	}
	return runner, nil
}

// Run scans until the sequence is exhausted or ctx is cancelled, then prints
// the summary. A cancelled scan still returns its partial summary.
func (r *Runner) Run(ctx context.Context) (*proxyscan.Summary, error) {
	defer r.diag.Sync()

	if !r.options.Silent {
		ShowBanner(r.Stdout, r.options)
		if err := config.CheckProxy(r.options.Proxy, time.Duration(r.options.Config.TimeoutSeconds)*time.Second); err != nil {
			gologger.Warning().Msgf("%v, probes will likely fail", err)
		}
	}

	stop := make(chan struct{})
	var progressWg sync.WaitGroup
	if !r.options.Silent {
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			r.renderProgress(stop)
		}()
	}

	summary, err := r.scanner.Scan(ctx)
	close(stop)
	progressWg.Wait()
	if err != nil {
		return nil, err
	}
	r.clearProgress()

	PrintSummary(r.Stdout, summary)

	if r.oj != nil {
		if err := r.oj.Write(summary); err != nil {
			gologger.Error().Msgf("Output failed, %s", err.Error())
		} else {
			gologger.Info().Msgf("JSON report written to %s", r.options.Output)
		}
	}
	return summary, nil
}

func (r *Runner) onResult(result proxyscan.ProbeResult) {
	if result.Failed() {
		gologger.Debug().Msgf("port %d failed: %s (%v)", result.Port, result.Failure, result.Err)
		return
	}
	if !r.scanner.Classifier().Interesting(result) {
		gologger.Debug().Msgf("port %d returned HTTP %s (excluded)", result.Port, result.Status())
		return
	}

	r.printMu.Lock()
	defer r.printMu.Unlock()
	r.found++
	r.clearLineLocked()
	fmt.Fprintf(r.Stdout, "[+] Port %s returned HTTP %s (possibly allowed)\n",
		log.LogColor.Port(result.Port), log.LogColor.Status(string(result.Status())))
}

func (r *Runner) renderProgress(stop <-chan struct{}) {
	start := time.Now()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			done, total := r.scanner.Progress()
			r.printMu.Lock()
			line := progress.Line(done, total, r.found, time.Since(start))
			r.clearLineLocked()
			fmt.Fprint(r.Stderr, line)
			r.lastLine = len(line)
			r.printMu.Unlock()
		}
	}
}

func (r *Runner) clearProgress() {
	r.printMu.Lock()
	r.clearLineLocked()
	r.printMu.Unlock()
}

func (r *Runner) clearLineLocked() {
	if r.lastLine == 0 {
		return
	}
	fmt.Fprintf(r.Stderr, "\r%*s\r", r.lastLine, "")
	r.lastLine = 0
}

// PrintSummary writes the closing report. Results must already be sorted.
func PrintSummary(w io.Writer, summary *proxyscan.Summary) {
	if summary.Interrupted {
		fmt.Fprintf(w, "\nScan interrupted after %d of %d ports.\n", summary.Probed, summary.Total)
	} else {
		fmt.Fprintln(w, "\nScan complete.")
	}
	if summary.Empty() {
		fmt.Fprintln(w, "No accessible ports found.")
		return
	}
	fmt.Fprintln(w, "Summary of accessible ports:")
	for _, result := range summary.Results {
		fmt.Fprintf(w, "- Port %d: HTTP %s\n", result.Port, result.Status())
	}
}

// ExitCode maps the outcome of New and Run to the process exit status.
func ExitCode(summary *proxyscan.Summary, err error) int {
	switch {
	case err != nil:
		return 1
	case summary != nil && summary.Interrupted:
		return 130
	default:
		return 0
	}
}
