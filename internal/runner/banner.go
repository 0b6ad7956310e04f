package runner

import (
	"fmt"
	"io"

	"github.com/zan8in/squidscan/pkg/config"
	"github.com/zan8in/squidscan/pkg/log"
	"github.com/zan8in/squidscan/pkg/proxyscan"
)

func ShowUsage() string {
	return "\nUSAGE:\n   squidscan -x 10.10.10.10:3128 -t 127.0.0.1 -top\n   squidscan -x 10.10.10.10:3128 -t 127.0.0.1 -full -random -threads 100\n   squidscan -x 10.10.10.10:3128 -t 127.0.0.1 -p 80,443,8000-8100 -o result.json\n"
}

func ShowBanner(w io.Writer, options *config.Options) {
	fmt.Fprintln(w, log.LogColor.Banner("squidscan")+" - v"+config.Version)
	fmt.Fprintf(w, "[*] Scanning %s via Squid proxy at %s\n", log.LogColor.Bold(options.Target), log.LogColor.Bold(options.Proxy))

	order := ""
	if options.Random {
		order = " (randomized)"
	}
	fmt.Fprintf(w, "[*] Port range: %s, %d ports%s\n", options.RangeLabel(), portCount(options), order)

	threads, delay := options.Threads, options.Delay
	if options.Config != nil {
		if threads == 0 {
			threads = options.Config.Threads
		}
		if delay == 0 {
			delay = options.Config.DelayMs
		}
	}
	fmt.Fprintf(w, "[*] Threads: %d, delay: %dms\n\n", threads, delay)
}

func portCount(options *config.Options) int {
	switch {
	case options.Top:
		return proxyscan.TopPorts.Len()
	case options.Full:
		return proxyscan.FullPorts.Len()
	}
	ports, err := proxyscan.ParsePortSpec(options.Ports)
	if err != nil {
		return 0
	}
	return len(ports)
}
