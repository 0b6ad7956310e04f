package proxyscan

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/retryablehttp"
	"golang.org/x/net/proxy"
)

// newProxyClient builds the HTTP client every probe shares. It never
// retries, never follows redirects and opens a fresh connection per
// request.
func newProxyClient(proxyURL *url.URL, timeout time.Duration) (*retryablehttp.Client, error) {
	retryableHttpOptions := retryablehttp.DefaultOptionsSpraying
	retryableHttpOptions.RetryMax = 0

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: -1,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		DisableKeepAlives:   true,
		MaxIdleConnsPerHost: -1,
		TLSHandshakeTimeout: timeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS10,
		},
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks5":
		d, err := proxy.FromURL(proxyURL, dialer)
		if err != nil {
			return nil, errors.Wrap(err, "could not create socks5 dialer")
		}
		dc, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, errors.New("socks5 dialer does not support contexts")
		}
		transport.DialContext = dc.DialContext
	default:
		return nil, errors.Wrapf(ErrInvalidProxy, "unsupported scheme %q", proxyURL.Scheme)
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	client := retryablehttp.NewWithHTTPClient(httpClient, retryableHttpOptions)
	client.CheckRetry = noRetryPolicy
	return client, nil
}

// noRetryPolicy hands every response, 5xx included, straight back to the
// caller.
func noRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	return false, nil
}
