package errors

// Kind groups error codes into the three failure families a request can
// surface, plus configuration problems caught before any request is made.
type Kind string

const (
	// KindDataConversion covers parameter serialization, response parsing
	// and file-part encoding failures.
	KindDataConversion Kind = "data_conversion"
	// KindAuthentication covers missing credentials, token endpoint
	// failures and an access token the platform keeps rejecting.
	KindAuthentication Kind = "authentication"
	// KindTransport covers network failures and unexpected HTTP statuses.
	KindTransport Kind = "transport"
	// KindConfiguration covers invalid SDK configuration.
	KindConfiguration Kind = "configuration"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Data conversion errors
const (
	// ErrCodeToJSON indicates request parameters could not be serialized to JSON.
	ErrCodeToJSON ErrorCode = "TO_JSON"
	// ErrCodeFromJSON indicates a response body could not be parsed as JSON.
	ErrCodeFromJSON ErrorCode = "FROM_JSON"
	// ErrCodeFileEncoding indicates a file part could not be read for upload.
	ErrCodeFileEncoding ErrorCode = "FILE_ENCODING"
)

// Authentication errors
const (
	// ErrCodeMissingCredentials indicates a token fetch was needed but the
	// client id or secret is absent.
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"
	// ErrCodeCouldNotAuthenticate indicates the token endpoint rejected the
	// request or returned an unusable response.
	ErrCodeCouldNotAuthenticate ErrorCode = "COULD_NOT_AUTHENTICATE"
	// ErrCodeTokenExpired indicates the platform answered 401 and no
	// further refresh was attempted.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)

// Transport errors (retryable by the caller)
const (
	// ErrCodeConnectionFailed indicates a network-level failure (DNS, refused, reset).
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the exchange timed out or its context ended.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUnexpectedStatus indicates a non-2xx, non-401 response.
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates the SDK configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var codeKinds = map[ErrorCode]Kind{
	ErrCodeToJSON:               KindDataConversion,
	ErrCodeFromJSON:             KindDataConversion,
	ErrCodeFileEncoding:         KindDataConversion,
	ErrCodeMissingCredentials:   KindAuthentication,
	ErrCodeCouldNotAuthenticate: KindAuthentication,
	ErrCodeTokenExpired:         KindAuthentication,
	ErrCodeConnectionFailed:     KindTransport,
	ErrCodeTimeout:              KindTransport,
	ErrCodeUnexpectedStatus:     KindTransport,
	ErrCodeInvalidConfig:        KindConfiguration,
}

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
}

// KindOfCode returns the kind a code belongs to.
func KindOfCode(code ErrorCode) Kind {
	return codeKinds[code]
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
