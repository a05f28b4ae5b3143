/*
Package response writes API responses.

Successful calls return the resource itself. Failures are written once, by
HandleAppError, as application/problem+json:

	{ type, title, status, detail, instance, code, request_id, errors? }

Internal faults are logged with their stack and reach the client only as
"internal server error".
*/
package response

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// ProblemContentType is the media type of every error body.
const ProblemContentType = "application/problem+json"

// Problem is an RFC 7807 problem document extended with the error code and
// request id.
type Problem struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail"`
	Instance  string            `json:"instance"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
