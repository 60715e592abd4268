// internal/app/system/certcheck/certcheck.go
package certcheck

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds the TLS handshake in Check.
const DefaultTimeout = 5 * time.Second

// CertInfo describes the certificate served at an address.
type CertInfo struct {
	Host      string    `json:"host"`
	Addr      string    `json:"addr,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	DaysLeft  int       `json:"days_left"`
	Issuer    string    `json:"issuer"`
	IsValid   bool      `json:"is_valid"`
	Error     string    `json:"error,omitempty"`
}

// Check inspects the certificate for a backend URL or bare host using
// DefaultTimeout.
func Check(hostOrURL string) CertInfo {
	return CheckWithTimeout(hostOrURL, DefaultTimeout)
}

// CheckWithTimeout inspects the certificate for hostOrURL. An http:// URL
// or a loopback host is reported valid without dialing, since no
// certificate is involved.
func CheckWithTimeout(hostOrURL string, timeout time.Duration) CertInfo {
	t, err := parseTarget(hostOrURL)
	if err != nil {
		return CertInfo{Host: hostOrURL, Error: err.Error()}
	}

	info := CertInfo{Host: t.host, Addr: t.addr()}
	switch {
	case !t.tls:
		info.IsValid = true
		info.Error = "plain http - no TLS"
		return info
	case isLocalhost(t.host):
		info.IsValid = true
		info.Error = "localhost - no TLS"
		return info
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", t.addr(), &tls.Config{ServerName: t.host})
	if err != nil {
		info.Error = fmt.Sprintf("connection failed: %v", err)
		return info
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		info.Error = "no certificates found"
		return info
	}

	cert := certs[0]
	now := time.Now()
	info.ExpiresAt = cert.NotAfter
	info.DaysLeft = int(cert.NotAfter.Sub(now).Hours() / 24)
	info.Issuer = cert.Issuer.CommonName
	info.IsValid = now.Before(cert.NotAfter) && now.After(cert.NotBefore)
	return info
}

type target struct {
	host string
	port string
	tls  bool
}

func (t target) addr() string {
	return net.JoinHostPort(t.host, t.port)
}

// parseTarget reads a URL or host[:port]. A bare host is assumed to
// speak TLS on 443.
func parseTarget(hostOrURL string) (target, error) {
	s := strings.TrimSpace(hostOrURL)
	if s == "" {
		return target{}, fmt.Errorf("invalid host")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil || u.Hostname() == "" {
			return target{}, fmt.Errorf("invalid host")
		}
		t := target{host: u.Hostname(), port: u.Port()}
		switch u.Scheme {
		case "https":
			t.tls = true
			if t.port == "" {
				t.port = "443"
			}
		case "http":
			if t.port == "" {
				t.port = "80"
			}
		default:
			return target{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return t, nil
	}

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		host, port = s, "443"
	}
	return target{host: host, port: port, tls: true}, nil
}

// isLocalhost reports whether host is a loopback name or address.
func isLocalhost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
