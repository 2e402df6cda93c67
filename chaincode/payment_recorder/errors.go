package recorder

import "errors"

// PaymentError classifies why an operation was refused. It is returned as an
// error and compared with errors.Is.
type PaymentError string

func (e PaymentError) Error() string { return string(e) }

const (
	ErrUnauthorized            PaymentError = "Unauthorized"
	ErrZeroOrInvalidAmount     PaymentError = "ZeroOrInvalidAmount"
	ErrInvalidVoiceCommand     PaymentError = "InvalidVoiceCommand"
	ErrInvalidCurrency         PaymentError = "InvalidCurrency"
	ErrRateLimitExceeded       PaymentError = "RateLimitExceeded"
	ErrReplayAttackDetected    PaymentError = "ReplayAttackDetected"
	ErrInsufficientSecurity    PaymentError = "InsufficientSecurity"
	ErrContactAlreadyExists    PaymentError = "ContactAlreadyExists"
	ErrContactNotFound         PaymentError = "ContactNotFound"
	ErrIndexOutOfRange         PaymentError = "IndexOutOfRange"
	ErrContractPaused          PaymentError = "ContractPaused"
	ErrInvalidRecipient        PaymentError = "InvalidRecipient"
	ErrInvalidHash             PaymentError = "InvalidHash"
	ErrInvalidConfig           PaymentError = "InvalidConfig"
	ErrInvalidContact          PaymentError = "InvalidContact"
	ErrInvalidStatusTransition PaymentError = "InvalidStatusTransition"
	ErrInvalidSecurityLevel    PaymentError = "InvalidSecurityLevel"
	ErrNotInitialized          PaymentError = "NotInitialized"
	ErrAlreadyInitialized      PaymentError = "AlreadyInitialized"
)

// AsPaymentError extracts the classification from err, if any
func AsPaymentError(err error) (PaymentError, bool) {
	var pe PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return "", false
}
