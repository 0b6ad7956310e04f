package proxyscan

import (
	"strconv"
	"time"
)

// Status is the three-digit HTTP status reported for a probe.
type Status string

// StatusFailure is reported when no valid HTTP response was obtained.
const StatusFailure Status = "000"

// FailureKind tells why a probe did not get an HTTP response
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTimeout
	FailureRefused
	FailureProxy
	FailureDNS
	FailureMalformed
	FailureCanceled
	FailureUnknown
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureRefused:
		return "refused"
	case FailureProxy:
		return "proxy-error"
	case FailureDNS:
		return "dns"
	case FailureMalformed:
		return "malformed"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ProbeResult holds the outcome of a single proxied request.
type ProbeResult struct {
	Port       int
	StatusCode int
	Failure    FailureKind
	Err        error
	Duration   time.Duration
}

// Status collapses the result to the reported code. Every failure kind
// maps to StatusFailure.
func (r ProbeResult) Status() Status {
	if r.Failure != FailureNone || r.StatusCode <= 0 {
		return StatusFailure
	}
	code := strconv.Itoa(r.StatusCode)
	for len(code) < 3 {
		code = "0" + code
	}
	return Status(code)
}

// Failed reports whether the probe got no HTTP response at all.
func (r ProbeResult) Failed() bool {
	return r.Status() == StatusFailure
}

// Summary is the final, port-ordered view of a scan.
type Summary struct {
	ID          string
	Target      string
	Proxy       string
	Results     []ProbeResult // interesting results, ascending by port
	Total       int           // ports in the sequence
	Probed      int           // results actually produced
	Failures    map[FailureKind]int
	Interrupted bool
	Duration    time.Duration
}

// Empty reports whether no interesting port was found.
func (s *Summary) Empty() bool {
	return s == nil || len(s.Results) == 0
}
