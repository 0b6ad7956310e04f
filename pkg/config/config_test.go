package config

import (
	"net"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/squidscan/pkg/proxyscan"
)

func TestNewWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", squidscanConfigFilename)
	c, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Fatalf("config mismatch: got=%+v want=%+v", c, Default())
	}
}

func TestNewReadsExistingAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), squidscanConfigFilename)
	if err := os.WriteFile(path, []byte("threads: 8\ndelay_ms: 25\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Threads != 8 || c.DelayMs != 25 {
		t.Fatalf("values mismatch: threads=%d delay=%d", c.Threads, c.DelayMs)
	}
	if c.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Fatalf("timeout default mismatch: got=%d", c.TimeoutSeconds)
	}
	if !reflect.DeepEqual(c.ExcludeStatus, DefaultExcludeStatus) {
		t.Fatalf("exclude default mismatch: got=%v", c.ExcludeStatus)
	}
}

func TestNewRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), squidscanConfigFilename)
	if err := os.WriteFile(path, []byte("threads: [oops\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func validOptions() *Options {
	return &Options{Proxy: "10.10.10.10:3128", Target: "127.0.0.1", Top: true}
}

func TestVerifyOptions(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Options)
		want   error
	}{
		"valid top":        {func(o *Options) {}, nil},
		"valid full":       {func(o *Options) { o.Top, o.Full = false, true }, nil},
		"valid ports":      {func(o *Options) { o.Top, o.Ports = false, "80,443" }, nil},
		"no range":         {func(o *Options) { o.Top = false }, ErrConflictingRange},
		"top and full":     {func(o *Options) { o.Full = true }, ErrConflictingRange},
		"top and ports":    {func(o *Options) { o.Ports = "80" }, ErrConflictingRange},
		"bad ports":        {func(o *Options) { o.Top, o.Ports = false, "0-10" }, proxyscan.ErrInvalidRange},
		"negative threads": {func(o *Options) { o.Threads = -1 }, proxyscan.ErrInvalidConcurrency},
		"negative delay":   {func(o *Options) { o.Delay = -5 }, proxyscan.ErrInvalidDelay},
		"no target":        {func(o *Options) { o.Target = " " }, proxyscan.ErrMissingTarget},
		"bad proxy":        {func(o *Options) { o.Proxy = "10.10.10.10" }, proxyscan.ErrInvalidProxy},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			o := validOptions()
			tc.mutate(o)
			err := o.VerifyOptions()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("error mismatch: got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestScanOptionsMergesConfig(t *testing.T) {
	o := validOptions()
	o.Config = &Config{Threads: 12, DelayMs: 40, TimeoutSeconds: 3, UserAgent: "ua", ExcludeStatus: []string{"000", "404"}}
	opt, err := o.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions error: %v", err)
	}
	if opt.Concurrency != 12 || opt.Delay != 40*time.Millisecond || opt.Timeout != 3*time.Second {
		t.Fatalf("merge mismatch: workers=%d delay=%s timeout=%s", opt.Concurrency, opt.Delay, opt.Timeout)
	}
	if opt.Range != proxyscan.TopPorts || len(opt.Ports) != 0 {
		t.Fatalf("range mismatch: %v %v", opt.Range, opt.Ports)
	}
	if !reflect.DeepEqual(opt.Exclude, []proxyscan.Status{"000", "404"}) {
		t.Fatalf("exclude mismatch: %v", opt.Exclude)
	}

	o.Threads, o.Delay = 3, 100
	opt, err = o.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions error: %v", err)
	}
	if opt.Concurrency != 3 || opt.Delay != 100*time.Millisecond {
		t.Fatalf("flags must win over config: workers=%d delay=%s", opt.Concurrency, opt.Delay)
	}
}

func TestScanOptionsDefaultsAndPorts(t *testing.T) {
	o := &Options{Proxy: "squid:3128", Target: "10.0.0.1", Ports: "8080,80-81"}
	opt, err := o.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions error: %v", err)
	}
	if opt.Concurrency != DefaultThreads || opt.Timeout != 3*time.Second || opt.Delay != 0 {
		t.Fatalf("defaults mismatch: workers=%d timeout=%s delay=%s", opt.Concurrency, opt.Timeout, opt.Delay)
	}
	if !reflect.DeepEqual(opt.Ports, []int{8080, 80, 81}) {
		t.Fatalf("ports mismatch: %v", opt.Ports)
	}
	if got := o.RangeLabel(); got != "8080,80-81" {
		t.Fatalf("label mismatch: %s", got)
	}
}

func TestCheckProxy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := CheckProxy(addr, time.Second); err != nil {
		t.Fatalf("CheckProxy on live listener: %v", err)
	}
	_ = ln.Close()
	if err := CheckProxy(addr, time.Second); err == nil {
		t.Fatalf("expected error for closed proxy")
	}
	if err := CheckProxy("", time.Second); !errors.Is(err, proxyscan.ErrInvalidProxy) {
		t.Fatalf("expected ErrInvalidProxy, got=%v", err)
	}
}
