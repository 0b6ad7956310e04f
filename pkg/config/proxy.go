package config

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/squidscan/pkg/proxyscan"
)

// CheckProxy makes sure the proxy accepts TCP connections before the scan
// starts. A dead proxy would otherwise show up as a scan where every port
// returned 000.
func CheckProxy(proxy string, timeout time.Duration) error {
	proxyURL, err := proxyscan.ProxyURL(proxy)
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout("tcp", proxyURL.Host, timeout)
	if err != nil {
		return errors.Wrapf(err, "proxy %s is not reachable", proxyURL.Host)
	}
	_ = conn.Close()
	gologger.Debug().Msgf("Using %s as proxy server", proxyURL.String())
	return nil
}
