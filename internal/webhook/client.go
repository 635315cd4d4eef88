package webhook

import (
	"net"
	"net/http"
	"time"
)

const (
	clientTimeout         = 30 * time.Second
	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 15 * time.Second
)

// Delivery request headers.
const (
	HeaderSignature  = "X-Docchat-Signature"
	HeaderTimestamp  = "X-Docchat-Timestamp"
	HeaderDeliveryID = "X-Docchat-Delivery-Id"
)

// newHTTPClient builds the client used for outbound deliveries.
// Redirects are not followed; a redirect could point back inside the
// network the target validator blocked.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: clientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   tlsHandshakeTimeout,
			ResponseHeaderTimeout: responseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// setDeliveryHeaders applies the signing headers to a delivery request.
func setDeliveryHeaders(req *http.Request, signature, timestamp, deliveryID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, signature)
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderDeliveryID, deliveryID)
	req.Header.Set("User-Agent", "DocChat-Webhook/1.0")
}
