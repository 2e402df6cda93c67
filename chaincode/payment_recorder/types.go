// types.go
package recorder

// SecurityLevel is the authentication tier a submission was made with
type SecurityLevel string

const (
	SecurityBasic       SecurityLevel = "BASIC"
	SecurityBiometric   SecurityLevel = "BIOMETRIC"
	SecurityMultiFactor SecurityLevel = "MULTI_FACTOR"
)

// PaymentStatus is the lifecycle state of a recorded payment
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusConfirmed PaymentStatus = "CONFIRMED"
	StatusFailed    PaymentStatus = "FAILED"
)

// PaymentRecord is one admitted payment intent in a sender's history
type PaymentRecord struct {
	Index           uint64        `json:"index"`
	Sender          string        `json:"sender"`
	Recipient       string        `json:"recipient"`
	Amount          string        `json:"amount"` // base-10, smallest currency unit
	CommandText     string        `json:"commandText"`
	ContentHash     string        `json:"contentHash"`
	Network         string        `json:"network"`
	Currency        string        `json:"currency"`
	SecurityLevel   SecurityLevel `json:"securityLevel"`
	Status          PaymentStatus `json:"status"`
	TransactionHash string        `json:"transactionHash,omitempty"`
	Timestamp       int64         `json:"timestamp"` // ms
	TxID            string        `json:"txId"`
}

// PaymentRequest carries the caller-supplied fields of a submission
type PaymentRequest struct {
	Recipient     string        `json:"recipient"`
	Amount        string        `json:"amount"`
	CommandText   string        `json:"commandText"`
	ContentHash   string        `json:"contentHash"`
	Network       string        `json:"network"`
	Currency      string        `json:"currency"`
	SecurityLevel SecurityLevel `json:"securityLevel"`
}

// SecurityConfig is the anti-fraud policy applied to an account
type SecurityConfig struct {
	RequireBiometric       bool   `json:"requireBiometric"`
	RateLimitPerHour       uint32 `json:"rateLimitPerHour"`
	MaxAmountWithoutMfa    string `json:"maxAmountWithoutMfa"`
	ReplayPreventionWindow int64  `json:"replayPreventionWindow"` // ms
	AdminOnlyFunctions     bool   `json:"adminOnlyFunctions"`
}

// DefaultSecurityConfig is the global policy installed at InitLedger
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		RequireBiometric:       false,
		RateLimitPerHour:       100,
		MaxAmountWithoutMfa:    "1000000000000",
		ReplayPreventionWindow: 300_000,
		AdminOnlyFunctions:     false,
	}
}

// Contact is a named counterparty owned by one account
type Contact struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	IsVerified   bool   `json:"isVerified"`
	PaymentCount uint32 `json:"paymentCount"`
}

// AuditLogEntry records one payment submission attempt
type AuditLogEntry struct {
	ID            string        `json:"id"`
	CommandText   string        `json:"commandText"`
	Success       bool          `json:"success"`
	SecurityLevel SecurityLevel `json:"securityLevel"`
	Reason        string        `json:"reason,omitempty"` // rejection code, empty on success
	Timestamp     int64         `json:"timestamp"`
}

// OperationAudit marks a self-service operation under its audit hash
type OperationAudit struct {
	Hash      string `json:"hash"`
	Account   string `json:"account"`
	Operation string `json:"operation"`
	Timestamp int64  `json:"timestamp"`
}

// Statistics holds the ledger-wide counters
type Statistics struct {
	TotalPayments        uint64 `json:"totalPayments"`
	TotalDistinctSenders uint64 `json:"totalDistinctSenders"`
	TotalCommands        uint64 `json:"totalCommands"`
}

// UserStats summarises one account's history
type UserStats struct {
	Count       uint64 `json:"count"`
	TotalAmount string `json:"totalAmount"`
}

// PaymentReceipt is the outcome of RecordPayment as seen by the client
type PaymentReceipt struct {
	Accepted bool   `json:"accepted"`
	Index    uint64 `json:"index"`
	Error    string `json:"error,omitempty"`
}

// ContractState holds the singleton admin fields
type ContractState struct {
	Owner  string `json:"owner"`
	Paused bool   `json:"paused"`
}

// PaymentRecordedEvent is emitted after a successful admission
type PaymentRecordedEvent struct {
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	CommandText string `json:"commandText"`
	Index       uint64 `json:"index"`
	Timestamp   int64  `json:"timestamp"`
	TxID        string `json:"txId"`
}

// PaymentStatusEvent is emitted when a record leaves PENDING
type PaymentStatusEvent struct {
	Sender          string        `json:"sender"`
	Index           uint64        `json:"index"`
	Status          PaymentStatus `json:"status"`
	TransactionHash string        `json:"transactionHash,omitempty"`
}

// AdminEvent is emitted by owner and erasure operations
type AdminEvent struct {
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}
