package constants

const (
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeTooManyPending      = "TOO_MANY_PENDING"
	ErrCodeWalletNotFound      = "WALLET_NOT_FOUND"
	ErrCodeWalletExists        = "WALLET_EXISTS"
	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	ErrCodeAlreadyTerminal     = "TRANSACTION_ALREADY_TERMINAL"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	ErrCodeRouteError          = "ROUTE_ERROR"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

const (
	ErrMsgInvalidAmount       = "amount must be greater than 0"
	ErrMsgTooManyPending      = "too many pending transactions, complete them first"
	ErrMsgWalletNotFound      = "wallet not found"
	ErrMsgWalletExists        = "wallet already exists"
	ErrMsgInsufficientFunds   = "insufficient balance"
	ErrMsgGatewayUnavailable  = "payment provider unavailable, try again later"
	ErrMsgTransactionNotFound = "transaction not found"
	ErrMsgAlreadyTerminal     = "transaction already finalized, contact support for refunds"
	ErrMsgInvalidSignature    = "invalid signature"
	ErrMsgInvalidRequestBody  = "failed to parse request body"
	ErrMsgInternalError       = "internal server error"
)

var errorMessages = map[string]string{
	ErrCodeInvalidAmount:       ErrMsgInvalidAmount,
	ErrCodeTooManyPending:      ErrMsgTooManyPending,
	ErrCodeWalletNotFound:      ErrMsgWalletNotFound,
	ErrCodeWalletExists:        ErrMsgWalletExists,
	ErrCodeInsufficientFunds:   ErrMsgInsufficientFunds,
	ErrCodeGatewayUnavailable:  ErrMsgGatewayUnavailable,
	ErrCodeTransactionNotFound: ErrMsgTransactionNotFound,
	ErrCodeAlreadyTerminal:     ErrMsgAlreadyTerminal,
	ErrCodeInvalidSignature:    ErrMsgInvalidSignature,
	ErrCodeInvalidRequestBody:  ErrMsgInvalidRequestBody,
	ErrCodeInternalError:       ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidAmount, ErrCodeTooManyPending, ErrCodeInvalidRequestBody,
		ErrCodeInsufficientFunds, ErrCodeInvalidSignature:
		return 400
	case ErrCodeWalletNotFound, ErrCodeTransactionNotFound:
		return 404
	case ErrCodeWalletExists, ErrCodeAlreadyTerminal:
		return 409
	case ErrCodeGatewayUnavailable:
		return 503
	default:
		return 500
	}
}
