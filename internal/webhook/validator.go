package webhook

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrInvalidScheme is returned when the URL scheme is not HTTPS.
	ErrInvalidScheme = errors.New("only HTTPS target URLs are allowed")
	// ErrPrivateIP is returned when the URL resolves to a private address.
	ErrPrivateIP = errors.New("target resolves to a private address")
	// ErrLocalhostBlocked is returned for localhost targets.
	ErrLocalhostBlocked = errors.New("localhost targets are not allowed")
	// ErrInvalidPort is returned for non-default ports.
	ErrInvalidPort = errors.New("only port 443 is allowed")
	// ErrInvalidURL is returned when the URL does not parse.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrEmptyHost is returned when the URL has no host.
	ErrEmptyHost = errors.New("URL must have a host")
)

// blockedCIDRs are private and internal ranges a webhook must never target.
var blockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedNetworks []*net.IPNet

func init() {
	for _, cidr := range blockedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			blockedNetworks = append(blockedNetworks, network)
		}
	}
}

// ValidateTargetURL rejects target URLs that could be used to reach
// internal services. It enforces HTTPS on the default port and blocks
// localhost and private address ranges. A DNS failure is not an error
// here; delivery will surface it.
func ValidateTargetURL(targetURL string) error {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return ErrInvalidURL
	}

	if parsed.Scheme != "https" {
		return ErrInvalidScheme
	}

	host := parsed.Hostname()
	if host == "" {
		return ErrEmptyHost
	}

	if port := parsed.Port(); port != "" && port != "443" {
		return ErrInvalidPort
	}

	if isLocalhostHostname(host) {
		return ErrLocalhostBlocked
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if isBlockedIP(ip) {
			return ErrPrivateIP
		}
	}

	return nil
}

func isLocalhostHostname(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") ||
		host == "127.0.0.1" ||
		host == "::1"
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ExtractHost returns only the host part of a target URL. Full URLs are
// never logged because paths and queries may embed tokens.
func ExtractHost(targetURL string) string {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return "(invalid)"
	}
	return parsed.Host
}
