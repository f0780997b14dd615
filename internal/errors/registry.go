package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Protocol Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryProtocol,
		Message:  "Malformed request line",
		Detail:   "The first line of the request did not match 'METHOD PATH HTTP/VERSION'.",
	},
	"E102": {
		Category:   CategoryProtocol,
		Message:    "Unsupported HTTP method",
		Detail:     "The request method must be one of GET, HEAD, POST, PUT, DELETE, PATCH, OPTIONS.",
		Suggestion: "Check that the client is not sending an extension method such as CONNECT or TRACE.",
	},
	"E103": {
		Category: CategoryProtocol,
		Message:  "Unsupported HTTP version",
		Detail:   "The request protocol version must be one of 1.0, 1.1, 2.0, 3.0.",
	},
	"E104": {
		Category:   CategoryProtocol,
		Message:    "Malformed header line",
		Detail:     "A header line did not contain a ':' separator.",
		Suggestion: "Header lines must be of the form 'Name: value' and end with CRLF.",
	},
	"E105": {
		Category: CategoryProtocol,
		Message:  "Invalid Content-Length",
		Detail:   "The Content-Length header was present but was not a non-negative integer.",
	},
	"E106": {
		Category: CategoryProtocol,
		Message:  "Short body read",
		Detail:   "The connection closed before Content-Length bytes of body arrived.",
	},
	"E107": {
		Category:   CategoryProtocol,
		Message:    "Malformed multipart payload",
		Detail:     "A multipart/form-data part could not be parsed.",
		Suggestion: "Every part must carry a Content-Disposition header with a name or filename attribute.",
	},
	"E108": {
		Category: CategoryProtocol,
		Message:  "Missing multipart boundary",
		Detail:   "The multipart/form-data Content-Type did not carry a boundary parameter.",
	},
	"E109": {
		Category: CategoryProtocol,
		Message:  "Malformed urlencoded body",
		Detail:   "An application/x-www-form-urlencoded pair could not be decoded.",
	},
	"E110": {
		Category: CategoryProtocol,
		Message:  "Connection closed before headers",
		Detail:   "The peer closed the connection before the header terminator (CRLF CRLF) arrived.",
	},

	// ============================================
	// Routing Errors (E201-E299)
	// ============================================

	"E201": {
		Category:   CategoryRouting,
		Message:    "Empty matcher",
		Detail:     "A domain or route matcher was registered with no hostname, path set, or pattern.",
		Suggestion: "Use router.Exact, router.OneOf, or router.Pattern to build the matcher.",
	},
	"E202": {
		Category: CategoryRouting,
		Message:  "Route has no methods",
		Detail:   "A route was registered with an empty method list.",
	},

	// ============================================
	// Server Errors (E301-E399)
	// ============================================

	"E301": {
		Category:   CategoryServer,
		Message:    "Unknown response status code",
		Detail:     "The status code passed to Send has no registered reason phrase.",
		Suggestion: "Use a standard HTTP status code (1xx-5xx).",
	},
	"E302": {
		Category: CategoryServer,
		Message:  "Invalid listen address",
		Detail:   "The listen address is neither host:port nor a filesystem socket path.",
	},
	"E303": {
		Category:   CategoryServer,
		Message:    "Server is not idle",
		Detail:     "Run was called on a server that has already been started.",
		Suggestion: "A Server runs exactly once; construct a new Server to serve again.",
	},
	"E304": {
		Category: CategoryServer,
		Message:  "Response already sent",
		Detail:   "Send was called twice on the same connection.",
	},

	// ============================================
	// Config Errors (E401-E499)
	// ============================================

	"E401": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Suggestion: "Create a strand.json in the working directory or pass --config.",
	},
	"E402": {
		Category: CategoryConfig,
		Message:  "Config file is not valid JSON",
	},
	"E403": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},
}

// Register adds a custom error template to the registry.
// Intended for embedding applications that want their own codes.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
