package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeInternal ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidStrategyName  ErrorCode = 100
	ErrCodeReservedStrategyName ErrorCode = 101
	ErrCodeInvalidSignalPath    ErrorCode = 102
	ErrCodeInvalidParameter     ErrorCode = 103
	ErrCodeInvalidConfiguration ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidDirection     ErrorCode = 106
	ErrCodeSymbolNotConfigured  ErrorCode = 107

	// Resource errors (200-299)
	ErrCodeUserNotFound      ErrorCode = 200
	ErrCodeStrategyNotFound  ErrorCode = 201
	ErrCodeStrategyExists    ErrorCode = 202
	ErrCodeQueryFailed       ErrorCode = 203
	ErrCodeLogStoreClosed    ErrorCode = 204
	ErrCodeLogStoreFailed    ErrorCode = 205
	ErrCodeStorageInitFailed ErrorCode = 206

	// Executor provider errors (400-499)
	ErrCodeUnsupportedProvider ErrorCode = 400
	ErrCodeProviderConfigError ErrorCode = 401
	ErrCodeProviderInitFailed  ErrorCode = 402

	// Trading errors (500-599)
	ErrCodeSellFailed              ErrorCode = 500
	ErrCodeBuyFailed               ErrorCode = 501
	ErrCodeTradeRejected           ErrorCode = 502
	ErrCodeCollaboratorUnavailable ErrorCode = 503
	ErrCodeUnexpectedTradeResponse ErrorCode = 504

	// Concurrency errors (600-699)
	ErrCodeStrategyBusy ErrorCode = 600
)
