// Package fetcherr defines the error taxonomy shared by every upstream fetcher.
// Adapters catch transport-level failures internally and translate them into one
// of these sentinels so that the dialogue layer never sees a raw HTTP error.
package fetcherr

import "errors"

var (
	// ErrUpstreamUnavailable indicates the upstream source was unreachable or
	// answered with a non-2xx status.
	ErrUpstreamUnavailable = errors.New("upstream source unavailable")

	// ErrUpstreamEmpty indicates the upstream source was reachable but returned
	// no usable rows (e.g. every bank quotes "--" for the requested currency).
	ErrUpstreamEmpty = errors.New("upstream source returned no data")

	// ErrParseFailure indicates the upstream payload could not be decoded.
	ErrParseFailure = errors.New("failed to parse upstream payload")

	// ErrConfigMissing indicates a required credential or recipient identifier
	// is absent from the environment.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrQuotaExceeded indicates the upstream endpoint rejected the call due to
	// rate limiting. Callers should surface a retry-later message.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")
)
