package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/goflags"
	"github.com/zan8in/squidscan/pkg/proxyscan"
)

var ErrConflictingRange = errors.New("exactly one of -top, -full or -ports is required")

type Options struct {
	// squidscan-config.yaml configuration file
	Config *Config

	// ConfigFile overrides the default configuration path
	ConfigFile string

	// Proxy is the forward proxy, host:port or URL
	Proxy string

	// Target host reached through the proxy
	Target string

	// Top scans ports 1-1024
	Top bool

	// Full scans ports 1-65535
	Full bool

	// Ports is a custom port spec, eg: 80,443,8000-8100
	Ports string

	// Random shuffles the port order
	Random bool

	// Threads is the number of concurrent probes, 0 means the config value
	Threads int

	// Delay in milliseconds slept before each probe, 0 means the config value
	Delay int

	// Output writes a json report to this file
	Output string

	// no banner and progress if silent is true
	Silent bool

	// Debug shows failure kinds on the console
	Debug bool

	// DiagLog is the rotating log file for failed probes
	DiagLog string
}

// ParseOptions reads the command line.
func ParseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`squidscan finds the ports of a host that answer HTTP through a forward proxy`)

	flagSet.CreateGroup("input", "Target",
		flagSet.StringVarP(&options.Proxy, "proxy", "x", "", "forward proxy, eg: 10.10.10.10:3128 or http://10.10.10.10:3128"),
		flagSet.StringVarP(&options.Target, "target", "t", "", "target host to scan through the proxy, eg: 127.0.0.1"),
	)

	flagSet.CreateGroup("ports", "Ports",
		flagSet.BoolVar(&options.Top, "top", false, "scan ports 1-1024"),
		flagSet.BoolVar(&options.Full, "full", false, "scan ports 1-65535"),
		flagSet.StringVarP(&options.Ports, "ports", "p", "", "custom ports, eg: 80,443,8000-8100"),
		flagSet.BoolVar(&options.Random, "random", false, "scan ports in random order"),
	)

	flagSet.CreateGroup("rate", "Rate",
		flagSet.IntVar(&options.Threads, "threads", 0, "number of parallel probes (default 50, or threads from the config file)"),
		flagSet.IntVar(&options.Delay, "delay", 0, "delay in milliseconds before each request (default 0, or delay_ms from the config file)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "write a json report, eg: -o result.json"),
		flagSet.BoolVar(&options.Silent, "silent", false, "no banner and progress, only results"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output including failure kinds"),
		flagSet.StringVar(&options.DiagLog, "diag-log", "", "write every failed probe to this rotating log file"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "path to squidscan-config.yaml (default ~/.config/squidscan/squidscan-config.yaml)"),
	)

	_ = flagSet.Parse()

	return options
}

// VerifyOptions checks the command line before anything touches the network.
func (o *Options) VerifyOptions() error {
	if strings.TrimSpace(o.Target) == "" {
		return proxyscan.ErrMissingTarget
	}
	if _, err := proxyscan.ProxyURL(o.Proxy); err != nil {
		return err
	}

	selected := 0
	for _, set := range []bool{o.Top, o.Full, o.Ports != ""} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return ErrConflictingRange
	}
	if o.Ports != "" {
		if _, err := proxyscan.ParsePortSpec(o.Ports); err != nil {
			return err
		}
	}

	if o.Threads < 0 {
		return errors.Wrapf(proxyscan.ErrInvalidConcurrency, "got %d", o.Threads)
	}
	if o.Delay < 0 {
		return errors.Wrapf(proxyscan.ErrInvalidDelay, "got %dms", o.Delay)
	}
	return nil
}

// RangeLabel describes the selected ports for the banner.
func (o *Options) RangeLabel() string {
	switch {
	case o.Top:
		return proxyscan.TopPorts.String()
	case o.Full:
		return proxyscan.FullPorts.String()
	default:
		return o.Ports
	}
}

// ScanOptions merges the command line with the configuration file into the
// scanner's options. VerifyOptions must have passed.
func (o *Options) ScanOptions() (*proxyscan.Options, error) {
	cfg := o.Config
	if cfg == nil {
		cfg = Default()
	}

	opt := proxyscan.DefaultOptions()
	opt.Proxy = o.Proxy
	opt.Target = strings.TrimSpace(o.Target)
	opt.Randomize = o.Random

	switch {
	case o.Top:
		opt.Range = proxyscan.TopPorts
	case o.Full:
		opt.Range = proxyscan.FullPorts
	default:
		ports, err := proxyscan.ParsePortSpec(o.Ports)
		if err != nil {
			return nil, err
		}
		opt.Ports = ports
	}

	opt.Concurrency = o.Threads
	if opt.Concurrency == 0 {
		opt.Concurrency = cfg.Threads
	}
	delayMs := o.Delay
	if delayMs == 0 {
		delayMs = cfg.DelayMs
	}
	opt.Delay = time.Duration(delayMs) * time.Millisecond
	opt.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.UserAgent != "" {
		opt.UserAgent = cfg.UserAgent
	}
	for _, code := range cfg.ExcludeStatus {
		opt.Exclude = append(opt.Exclude, proxyscan.Status(strings.TrimSpace(code)))
	}

	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt, nil
}
