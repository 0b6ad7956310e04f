package proxyscan

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/retryablehttp"
)

// Prober performs one request for one port. Implementations never panic
// and never return an error; failures are carried in the result.
type Prober interface {
	Probe(ctx context.Context, port int) ProbeResult
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, port int) ProbeResult

func (f ProberFunc) Probe(ctx context.Context, port int) ProbeResult {
	return f(ctx, port)
}

// HTTPProber sends GET http://target:port through the configured proxy.
type HTTPProber struct {
	options *Options
	client  *retryablehttp.Client
}

// NewHTTPProber validates the proxy and prepares the shared client.
func NewHTTPProber(opt *Options) (*HTTPProber, error) {
	proxyURL, err := ProxyURL(opt.Proxy)
	if err != nil {
		return nil, err
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client, err := newProxyClient(proxyURL, timeout)
	if err != nil {
		return nil, err
	}
	return &HTTPProber{options: opt, client: client}, nil
}

// Probe returns the status code received for port, or a failure kind when
// no HTTP response came back.
func (p *HTTPProber) Probe(ctx context.Context, port int) (result ProbeResult) {
	result.Port = port
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result.StatusCode = 0
			result.Failure = FailureUnknown
			result.Err = errors.Errorf("probe panic: %v", r)
		}
		result.Duration = time.Since(start)
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.options.TargetURL(port), nil)
	if err != nil {
		result.Failure, result.Err = FailureUnknown, err
		return result
	}
	if p.options.UserAgent != "" {
		req.Header.Set("User-Agent", p.options.UserAgent)
	}

	resp, err := p.client.Do(req)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		result.Failure, result.Err = classifyError(err), err
		return result
	}
	result.StatusCode = resp.StatusCode
	return result
}

// classifyError maps a client error to a failure kind. Typed checks come
// first; the string fallback covers wrappers that drop the error chain.
func classifyError(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return FailureRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "proxyconnect" {
		return FailureProxy
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return FailureTimeout
	case strings.Contains(errStr, "refused"):
		return FailureRefused
	case strings.Contains(errStr, "no such host"):
		return FailureDNS
	case strings.Contains(errStr, "proxyconnect") || strings.Contains(errStr, "socks"):
		return FailureProxy
	case strings.Contains(errStr, "malformed") || strings.Contains(errStr, "eof"):
		return FailureMalformed
	}
	return FailureUnknown
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}
