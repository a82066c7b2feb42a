package values

type contextKey string

// ContextTracingKey is the context key under which the request
// tracing context is stored.
const ContextTracingKey = contextKey("tracing-context")

// Request headers.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderRequestSource = "X-Request-Source"
)

// Response status strings. util.StatusCode maps these to HTTP codes.
const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	BadRequestBody = "bad-request-body"
	Unprocessable  = "unprocessable"
	NotFound       = "not-found"
	NotAuthorised  = "not-authorised"
	NotAllowed     = "not-allowed"
	Conflict       = "conflict"
)
