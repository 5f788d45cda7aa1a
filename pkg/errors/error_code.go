package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidThreshold     ErrorCode = 104
	ErrCodeInvalidDeviation     ErrorCode = 105
	ErrCodeInvalidStake         ErrorCode = 106
	ErrCodeInvalidCommission    ErrorCode = 107
	ErrCodeInvalidCapital       ErrorCode = 108
	ErrCodeInvalidVersion       ErrorCode = 109

	// Series/data integrity errors (200-299)
	ErrCodeBarOutOfOrder      ErrorCode = 200
	ErrCodeDuplicateTimestamp ErrorCode = 201
	ErrCodeLookbackOutOfRange ErrorCode = 202
	ErrCodeEmptySeries        ErrorCode = 203
	ErrCodeDataNotFound       ErrorCode = 204
	ErrCodeDataParseFailed    ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeInsufficientHistory ErrorCode = 300
	ErrCodeIndicatorNotFound   ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError ErrorCode = 400

	// Broker/trading errors (500-599)
	ErrCodeInsufficientFunds ErrorCode = 500
	ErrCodeOrderFailed       ErrorCode = 501
	ErrCodePositionNotFound  ErrorCode = 502

	// Ledger errors (600-699)
	ErrCodeLedgerInitFailed  ErrorCode = 600
	ErrCodeLedgerQueryFailed ErrorCode = 601
	ErrCodeLedgerWriteFailed ErrorCode = 602

	// Simulation errors (700-799)
	ErrCodeSimulationFinished   ErrorCode = 700
	ErrCodeSimulationNotReady   ErrorCode = 701
	ErrCodeSimulationInitFailed ErrorCode = 702
	ErrCodeAccountingViolation  ErrorCode = 703
)
