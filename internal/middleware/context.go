package middleware

// Context keys used to store request and caller metadata.
const (
	ContextKeySubject   = "subject"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"
)
