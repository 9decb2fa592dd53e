package transmit

// Outbound request headers. APIKeyHeader carries the write key; the rest
// mirror libhoney's wire conventions for the batch endpoint.
const (
	APIKeyHeader      = "X-Honeycomb-Team"
	ContentTypeHeader = "Content-Type"
	UserAgentHeader   = "User-Agent"
	BrowserUAHeader   = "X-Honeycomb-UserAgent"
	jsonContentType   = "application/json"
	batchPathSegment  = "/1/batch/"
)
