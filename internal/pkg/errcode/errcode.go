// Package errcode holds the stable error codes carried in JSON error
// bodies. Clients match on these, not on messages.
package errcode

const (
	InvalidMultipart   = "invalid_multipart"
	InvalidVersionType = "invalid_version_type"
	InvalidBody        = "invalid_body"
	Invalid            = "invalid"
	Unauthorized       = "unauthorized"
	NotFound           = "not_found"
	Conflict           = "conflict"
	Internal           = "internal"
)
