package recorder

import (
	"fmt"
	"log/slog"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"
)

// ContractName is the namespace clients address the functions under
const ContractName = "PaymentRecorder"

// SmartContract records voice-initiated payment intents behind the
// anti-fraud admission pipeline
type SmartContract struct {
	contractapi.Contract
	log         *slog.Logger
	opts        Options
	allowedMSPs []string
}

// NewSmartContract wires logging, validation limits and contract metadata.
// With allowedMSPs set, only clients of those organizations may invoke it.
func NewSmartContract(log *slog.Logger, opts Options, allowedMSPs ...string) *SmartContract {
	s := &SmartContract{log: log, opts: opts, allowedMSPs: allowedMSPs}
	s.Name = ContractName
	s.Info = metadata.InfoMetadata{
		Title:       "Voice Payment Recorder",
		Description: "Security-gated ledger of voice-initiated payment intents",
		Version:     "1.0.0",
	}
	s.BeforeTransaction = s.beforeTransaction
	s.UnknownTransaction = s.unknownTransaction
	return s
}

func (s *SmartContract) engine(ctx contractapi.TransactionContextInterface) *Engine {
	return NewEngine(ctx, s.log, s.opts)
}

func (s *SmartContract) beforeTransaction(ctx contractapi.TransactionContextInterface) error {
	if s.log != nil {
		fn, _ := ctx.GetStub().GetFunctionAndParameters()
		s.log.Debug("transaction_start", slog.String("function", fn), slog.String("tx_id", ctx.GetStub().GetTxID()))
	}
	if len(s.allowedMSPs) == 0 {
		return nil
	}
	mspID, err := ctx.GetClientIdentity().GetMSPID()
	if err != nil {
		return fmt.Errorf("failed to get MSP ID: %v", err)
	}
	if !s.isAuthorizedMSP(mspID) {
		return ErrUnauthorized
	}
	return nil
}

func (s *SmartContract) isAuthorizedMSP(mspID string) bool {
	for _, allowed := range s.allowedMSPs {
		if mspID == allowed {
			return true
		}
	}
	return false
}

func (s *SmartContract) unknownTransaction(ctx contractapi.TransactionContextInterface) error {
	fn, _ := ctx.GetStub().GetFunctionAndParameters()
	return fmt.Errorf("unknown function %s", fn)
}

// InitLedger makes the caller the owner and installs the default policy
func (s *SmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return s.engine(ctx).Init()
}

// RecordPayment submits a payment intent. Policy rejections come back in the
// receipt rather than as a transaction error so the failed attempt stays in
// the caller's audit log.
func (s *SmartContract) RecordPayment(ctx contractapi.TransactionContextInterface, recipient, amount, commandText, contentHash, network, currency, securityLevel string) (*PaymentReceipt, error) {
	index, err := s.engine(ctx).RecordPayment(PaymentRequest{
		Recipient:     recipient,
		Amount:        amount,
		CommandText:   commandText,
		ContentHash:   contentHash,
		Network:       network,
		Currency:      currency,
		SecurityLevel: SecurityLevel(securityLevel),
	})
	if err != nil {
		if code, ok := AsPaymentError(err); ok {
			return &PaymentReceipt{Accepted: false, Error: string(code)}, nil
		}
		return nil, err
	}
	return &PaymentReceipt{Accepted: true, Index: index}, nil
}

// UpdatePaymentStatus moves one of the caller's records to CONFIRMED or FAILED
func (s *SmartContract) UpdatePaymentStatus(ctx contractapi.TransactionContextInterface, index uint64, status, txHash string) error {
	return s.engine(ctx).UpdatePaymentStatus(index, PaymentStatus(status), txHash)
}

// GetPaymentHistory pages through an account's payments
func (s *SmartContract) GetPaymentHistory(ctx contractapi.TransactionContextInterface, account string, offset, limit uint32) ([]PaymentRecord, error) {
	return s.engine(ctx).PaymentHistory(account, offset, limit)
}

// GetMyPaymentHistory pages through the caller's payments
func (s *SmartContract) GetMyPaymentHistory(ctx contractapi.TransactionContextInterface, offset, limit uint32) ([]PaymentRecord, error) {
	return s.engine(ctx).MyPaymentHistory(offset, limit)
}

// GetRecentPayments returns an account's last limit payments
func (s *SmartContract) GetRecentPayments(ctx contractapi.TransactionContextInterface, account string, limit uint32) ([]PaymentRecord, error) {
	return s.engine(ctx).RecentPayments(account, limit)
}

// GetPaymentCount returns the length of an account's history
func (s *SmartContract) GetPaymentCount(ctx contractapi.TransactionContextInterface, account string) (uint64, error) {
	return s.engine(ctx).PaymentCount(account)
}

// HasPaymentHistory reports whether an account has any recorded payment
func (s *SmartContract) HasPaymentHistory(ctx contractapi.TransactionContextInterface, account string) (bool, error) {
	n, err := s.engine(ctx).PaymentCount(account)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUserStats returns an account's payment count and total amount
func (s *SmartContract) GetUserStats(ctx contractapi.TransactionContextInterface, account string) (*UserStats, error) {
	stats, err := s.engine(ctx).UserStats(account)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetStatistics returns the ledger-wide counters
func (s *SmartContract) GetStatistics(ctx contractapi.TransactionContextInterface) (*Statistics, error) {
	stats, err := s.engine(ctx).Statistics()
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetSecurityConfig returns the effective policy of an account
func (s *SmartContract) GetSecurityConfig(ctx contractapi.TransactionContextInterface, account string) (*SecurityConfig, error) {
	cfg, err := s.engine(ctx).SecurityConfigFor(account)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetRateLimitUsage counts an account's admissions in the trailing hour
func (s *SmartContract) GetRateLimitUsage(ctx contractapi.TransactionContextInterface, account string) (uint32, error) {
	return s.engine(ctx).RateLimitUsage(account)
}

// ConfigureSecurity sets the caller's own policy override
func (s *SmartContract) ConfigureSecurity(ctx contractapi.TransactionContextInterface, config SecurityConfig, auditHash string) error {
	return s.engine(ctx).ConfigureSecurity(config, auditHash)
}

// UpdateGlobalSecurity replaces the global policy (owner only)
func (s *SmartContract) UpdateGlobalSecurity(ctx contractapi.TransactionContextInterface, config SecurityConfig) error {
	return s.engine(ctx).UpdateGlobalSecurity(config)
}

// AddContact adds a named counterparty for the caller
func (s *SmartContract) AddContact(ctx contractapi.TransactionContextInterface, name, address, auditHash string) error {
	return s.engine(ctx).AddContact(name, address, auditHash)
}

// RemoveContact removes a named counterparty of the caller
func (s *SmartContract) RemoveContact(ctx contractapi.TransactionContextInterface, name, auditHash string) error {
	return s.engine(ctx).RemoveContact(name, auditHash)
}

// GetContacts lists an account's contacts
func (s *SmartContract) GetContacts(ctx contractapi.TransactionContextInterface, account string) ([]Contact, error) {
	return s.engine(ctx).Contacts(account)
}

// GetMyContacts lists the caller's contacts
func (s *SmartContract) GetMyContacts(ctx contractapi.TransactionContextInterface) ([]Contact, error) {
	return s.engine(ctx).MyContacts()
}

// GetVoiceAuditLogs pages through an account's submission attempts
func (s *SmartContract) GetVoiceAuditLogs(ctx contractapi.TransactionContextInterface, account string, offset, limit uint32) ([]AuditLogEntry, error) {
	return s.engine(ctx).VoiceAuditLogs(account, offset, limit)
}

// EmergencyPause halts new submissions (owner only)
func (s *SmartContract) EmergencyPause(ctx contractapi.TransactionContextInterface) error {
	return s.engine(ctx).EmergencyPause()
}

// Unpause resumes submissions (owner only)
func (s *SmartContract) Unpause(ctx contractapi.TransactionContextInterface) error {
	return s.engine(ctx).Unpause()
}

// IsPaused reports the emergency pause flag
func (s *SmartContract) IsPaused(ctx contractapi.TransactionContextInterface) (bool, error) {
	return s.engine(ctx).Paused()
}

// TransferOwnership hands the owner role to another identity (owner only)
func (s *SmartContract) TransferOwnership(ctx contractapi.TransactionContextInterface, newOwner string) error {
	return s.engine(ctx).TransferOwnership(newOwner)
}

// GetOwner returns the owner identity
func (s *SmartContract) GetOwner(ctx contractapi.TransactionContextInterface) (string, error) {
	return s.engine(ctx).Owner()
}

// DeleteUserData erases the caller's history, contacts and audit log
func (s *SmartContract) DeleteUserData(ctx contractapi.TransactionContextInterface, auditHash string) error {
	return s.engine(ctx).DeleteUserData(auditHash)
}
