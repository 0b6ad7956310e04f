package proxyscan

import (
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultConcurrency = 50
	DefaultTimeout     = 3 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (compatible; squidscan)"
)

var (
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidDelay       = errors.New("delay must not be negative")
	ErrInvalidTimeout     = errors.New("timeout must be positive")
	ErrMissingTarget      = errors.New("target host is required")
	ErrInvalidProxy       = errors.New("invalid proxy")
)

// Options configuration for a proxied port scan
type Options struct {
	Proxy       string    // forward proxy, "host:port" or URL (http, https, socks5)
	Target      string    // host reached through the proxy
	Range       PortRange // ports to scan when Ports is empty
	Ports       []int     // explicit ports, overrides Range
	Randomize   bool
	Concurrency int
	Delay       time.Duration // slept by each worker before its request
	Timeout     time.Duration // total request timeout per probe
	UserAgent   string
	Exclude     []Status // overrides the classifier's default exclusion set

	// Rand is used for Randomize. A time-seeded source is used when nil.
	Rand *rand.Rand

	// OnResult receives every probe result as it completes. Calls are
	// serialized.
	OnResult func(ProbeResult)

	// Diagnostics receives one record per failed probe.
	Diagnostics *zap.Logger
}

// DefaultOptions returns a configuration scanning the top ports
func DefaultOptions() *Options {
	return &Options{
		Range:       TopPorts,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
	}
}

// Validate rejects configurations no scan can run with.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Target) == "" {
		return ErrMissingTarget
	}
	if _, err := ProxyURL(o.Proxy); err != nil {
		return err
	}
	if len(o.Ports) == 0 {
		if err := o.Range.Validate(); err != nil {
			return err
		}
	}
	for _, p := range o.Ports {
		if !isValidPort(p) {
			return errors.Wrapf(ErrInvalidRange, "port %d outside %d-%d", p, MinPort, MaxPort)
		}
	}
	if o.Concurrency < 1 {
		return errors.Wrapf(ErrInvalidConcurrency, "got %d", o.Concurrency)
	}
	if o.Delay < 0 {
		return errors.Wrapf(ErrInvalidDelay, "got %s", o.Delay)
	}
	if o.Timeout <= 0 {
		return errors.Wrapf(ErrInvalidTimeout, "got %s", o.Timeout)
	}
	return nil
}

// TargetURL is the URL requested through the proxy for port.
func (o *Options) TargetURL(port int) string {
	u := url.URL{Scheme: "http", Host: joinHostPort(o.Target, port)}
	return u.String()
}

// ProxyURL normalizes a proxy given as "host:port" or as a URL. A missing
// scheme means a plain HTTP forward proxy.
func ProxyURL(proxy string) (*url.URL, error) {
	proxy = strings.TrimSpace(proxy)
	if proxy == "" {
		return nil, errors.Wrap(ErrInvalidProxy, "empty proxy address")
	}
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidProxy, "%s: %v", proxy, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, errors.Wrapf(ErrInvalidProxy, "unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return nil, errors.Wrapf(ErrInvalidProxy, "%s: expected host:port", proxy)
	}
	return u, nil
}
