package webhook

import "errors"

// Sentinel errors for webhook lookups.
var (
	ErrEndpointNotFound = errors.New("webhook endpoint not found")
	ErrDeliveryNotFound = errors.New("webhook delivery not found")
)
