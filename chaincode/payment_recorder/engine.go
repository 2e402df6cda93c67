package recorder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"
)

// Options tune input validation. Zero lengths mean unbounded.
type Options struct {
	MaxCommandLength  int
	MaxCurrencyLength int
}

// Engine runs one invocation against the world state of its transaction
// context. Every operation stages its writes and commits them only once all
// of its checks have passed.
type Engine struct {
	ctx  contractapi.TransactionContextInterface
	log  *slog.Logger
	opts Options
}

// NewEngine binds an engine to a transaction context. A nil logger discards
// output.
func NewEngine(ctx contractapi.TransactionContextInterface, log *slog.Logger, opts Options) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{ctx: ctx, log: log, opts: opts}
}

func (e *Engine) stub() shim.ChaincodeStubInterface {
	return e.ctx.GetStub()
}

func (e *Engine) caller() (string, error) {
	id := e.ctx.GetClientIdentity()
	if id == nil {
		return "", errors.New("failed to get caller identity: no client identity")
	}
	caller, err := id.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	return caller, nil
}

// now is the proposal timestamp in ms, identical on every endorser
func (e *Engine) now() (int64, error) {
	ts, err := e.stub().GetTxTimestamp()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime().UnixMilli(), nil
}

func (e *Engine) identity() (string, int64, error) {
	caller, err := e.caller()
	if err != nil {
		return "", 0, err
	}
	now, err := e.now()
	if err != nil {
		return "", 0, err
	}
	return caller, now, nil
}

// Init records the caller as owner and installs the default global policy
func (e *Engine) Init() error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := (adminGate{tx}).initialize(caller); err != nil {
		return err
	}
	if err := (policyStore{tx}).setGlobal(DefaultSecurityConfig()); err != nil {
		return err
	}
	stats, err := loadStats(tx)
	if err != nil {
		return err
	}
	if err := tx.putJSON(stateKey(colStats, "global"), stats); err != nil {
		return err
	}
	if err := tx.emit("LedgerInitialized", AdminEvent{Actor: caller, Action: "init", Timestamp: now}); err != nil {
		return err
	}
	return tx.commit()
}

// RecordPayment runs the admission pipeline for one submission and returns
// the record's index in the caller's history. Every attempt on an
// initialized ledger leaves exactly one audit entry. A rejection commits only that entry and the command
// counter; nothing staged by the checks survives.
func (e *Engine) RecordPayment(req PaymentRequest) (uint64, error) {
	caller, now, err := e.identity()
	if err != nil {
		return 0, err
	}

	tx := newTxn(e.stub())
	index, admitErr := e.admit(tx, caller, now, req)
	if admitErr == nil {
		if err := tx.commit(); err != nil {
			return 0, err
		}
		e.log.Info("payment_admitted", slog.Uint64("index", index), slog.String("tx_id", e.stub().GetTxID()))
		return index, nil
	}

	code, rejected := AsPaymentError(admitErr)
	if !rejected || code == ErrNotInitialized {
		// nothing may be written before the ledger exists
		return 0, admitErr
	}
	e.log.Info("payment_rejected", slog.String("reason", string(code)), slog.String("tx_id", e.stub().GetTxID()))

	ftx := newTxn(e.stub())
	if err := e.recordAttempt(ftx, caller, req, now, code); err != nil {
		return 0, err
	}
	if err := ftx.commit(); err != nil {
		return 0, err
	}
	return 0, admitErr
}

func (e *Engine) admit(tx *txn, caller string, now int64, req PaymentRequest) (uint64, error) {
	if err := (adminGate{tx}).requireActive(); err != nil {
		return 0, err
	}
	amount, hash, err := e.validate(req)
	if err != nil {
		return 0, err
	}
	cfg, err := policyStore{tx}.resolve(caller)
	if err != nil {
		return 0, err
	}

	// pure check first so a refused level never touches shared counters
	if err := Authorize(req.SecurityLevel, amount, cfg); err != nil {
		return 0, err
	}
	if err := (rateLimiter{tx}).checkAndIncrement(caller, cfg.RateLimitPerHour, now); err != nil {
		return 0, err
	}
	// registrations never expire; ReplayPreventionWindow is not applied
	if err := (replayGuard{tx}).checkAndRegister(hash, now); err != nil {
		return 0, err
	}

	rec := PaymentRecord{
		Sender:        caller,
		Recipient:     req.Recipient,
		Amount:        formatAmount(amount),
		CommandText:   req.CommandText,
		ContentHash:   hash,
		Network:       req.Network,
		Currency:      req.Currency,
		SecurityLevel: req.SecurityLevel,
		Status:        StatusPending,
		Timestamp:     now,
		TxID:          e.stub().GetTxID(),
	}
	index, err := ledgerStore{tx}.append(rec)
	if err != nil {
		return 0, err
	}
	if err := e.countAdmission(tx, caller); err != nil {
		return 0, err
	}
	if err := (contactRegistry{tx}).countPayment(caller, req.Recipient); err != nil {
		return 0, err
	}
	if err := e.recordAttempt(tx, caller, req, now, ""); err != nil {
		return 0, err
	}

	return index, tx.emit("PaymentRecorded", PaymentRecordedEvent{
		Sender:      caller,
		Recipient:   req.Recipient,
		Amount:      rec.Amount,
		CommandText: rec.CommandText,
		Index:       index,
		Timestamp:   now,
		TxID:        rec.TxID,
	})
}

func (e *Engine) validate(req PaymentRequest) (decimal.Decimal, string, error) {
	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	if req.Recipient == "" {
		return decimal.Decimal{}, "", ErrInvalidRecipient
	}
	n := utf8.RuneCountInString(req.CommandText)
	if n == 0 || (e.opts.MaxCommandLength > 0 && n > e.opts.MaxCommandLength) {
		return decimal.Decimal{}, "", ErrInvalidVoiceCommand
	}
	c := utf8.RuneCountInString(req.Currency)
	if c == 0 || (e.opts.MaxCurrencyLength > 0 && c > e.opts.MaxCurrencyLength) {
		return decimal.Decimal{}, "", ErrInvalidCurrency
	}
	hash, err := NormalizeHash(req.ContentHash)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	return amount, hash, nil
}

// recordAttempt appends the audit entry and bumps the command counter
func (e *Engine) recordAttempt(tx *txn, caller string, req PaymentRequest, now int64, reason PaymentError) error {
	entry := AuditLogEntry{
		CommandText:   req.CommandText,
		Success:       reason == "",
		SecurityLevel: req.SecurityLevel,
		Reason:        string(reason),
		Timestamp:     now,
	}
	if err := (auditLog{tx}).append(caller, e.stub().GetTxID(), entry); err != nil {
		return err
	}
	stats, err := loadStats(tx)
	if err != nil {
		return err
	}
	stats.TotalCommands++
	return tx.putJSON(stateKey(colStats, "global"), stats)
}

// countAdmission bumps the payment and distinct-sender counters
func (e *Engine) countAdmission(tx *txn, caller string) error {
	stats, err := loadStats(tx)
	if err != nil {
		return err
	}
	stats.TotalPayments++

	senderKey := stateKey(colSender, accountKey(caller))
	seen, err := tx.get(senderKey)
	if err != nil {
		return err
	}
	if seen == nil {
		tx.put(senderKey, []byte("1"))
		stats.TotalDistinctSenders++
	}
	return tx.putJSON(stateKey(colStats, "global"), stats)
}

func loadStats(tx *txn) (Statistics, error) {
	var stats Statistics
	if _, err := tx.getJSON(stateKey(colStats, "global"), &stats); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

// UpdatePaymentStatus settles one of the caller's own PENDING records
func (e *Engine) UpdatePaymentStatus(index uint64, status PaymentStatus, txHash string) error {
	caller, _, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := (adminGate{tx}).requireActive(); err != nil {
		return err
	}
	if txHash != "" {
		if txHash, err = NormalizeHash(txHash); err != nil {
			return err
		}
	}
	rec, err := ledgerStore{tx}.updateStatus(caller, index, status, txHash)
	if err != nil {
		return err
	}
	if err := tx.emit("PaymentStatusUpdated", PaymentStatusEvent{
		Sender:          caller,
		Index:           rec.Index,
		Status:          rec.Status,
		TransactionHash: rec.TransactionHash,
	}); err != nil {
		return err
	}
	return tx.commit()
}

// PaymentHistory pages through account's history in insertion order. An
// offset past the end yields an empty slice.
func (e *Engine) PaymentHistory(account string, offset, limit uint32) ([]PaymentRecord, error) {
	return readPage[PaymentRecord](e.stub(), colPayment, colPaymentLen, account, uint64(offset), uint64(limit))
}

// MyPaymentHistory is PaymentHistory for the caller
func (e *Engine) MyPaymentHistory(offset, limit uint32) ([]PaymentRecord, error) {
	caller, err := e.caller()
	if err != nil {
		return nil, err
	}
	return e.PaymentHistory(caller, offset, limit)
}

// RecentPayments returns the last limit records of account, oldest first
func (e *Engine) RecentPayments(account string, limit uint32) ([]PaymentRecord, error) {
	n, err := e.PaymentCount(account)
	if err != nil {
		return nil, err
	}
	var offset uint64
	if n > uint64(limit) {
		offset = n - uint64(limit)
	}
	return readPage[PaymentRecord](e.stub(), colPayment, colPaymentLen, account, offset, uint64(limit))
}

// PaymentCount is the length of account's history
func (e *Engine) PaymentCount(account string) (uint64, error) {
	return ledgerStore{newTxn(e.stub())}.length(account)
}

// UserStats folds account's history into count and total amount
func (e *Engine) UserStats(account string) (UserStats, error) {
	return ledgerStore{newTxn(e.stub())}.stats(account)
}

// Statistics returns the ledger-wide counters
func (e *Engine) Statistics() (Statistics, error) {
	return loadStats(newTxn(e.stub()))
}

// RateLimitUsage counts account's admissions in the trailing hour
func (e *Engine) RateLimitUsage(account string) (uint32, error) {
	now, err := e.now()
	if err != nil {
		return 0, err
	}
	return rateLimiter{newTxn(e.stub())}.inWindow(account, now)
}

// SecurityConfigFor resolves the effective policy of account
func (e *Engine) SecurityConfigFor(account string) (SecurityConfig, error) {
	return policyStore{newTxn(e.stub())}.resolve(account)
}

// ConfigureSecurity installs the caller's own policy override
func (e *Engine) ConfigureSecurity(cfg SecurityConfig, auditHash string) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	tx := newTxn(e.stub())
	policies := policyStore{tx}
	global, err := policies.global()
	if err != nil {
		return err
	}
	if global.AdminOnlyFunctions {
		owner, err := (adminGate{tx}).isOwner(caller)
		if err != nil {
			return err
		}
		if !owner {
			return ErrUnauthorized
		}
	}
	if err := recordOperation(tx, auditHash, caller, "configure_security", now); err != nil {
		return err
	}
	if err := policies.setOverride(caller, cfg); err != nil {
		return err
	}
	return tx.commit()
}

// UpdateGlobalSecurity replaces the global policy; owner only
func (e *Engine) UpdateGlobalSecurity(cfg SecurityConfig) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if _, err := (adminGate{tx}).requireOwner(caller); err != nil {
		return err
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := (policyStore{tx}).setGlobal(cfg); err != nil {
		return err
	}
	if err := tx.emit("GlobalSecurityUpdated", AdminEvent{Actor: caller, Action: "update_global_security", Timestamp: now}); err != nil {
		return err
	}
	return tx.commit()
}

// AddContact adds a uniquely named contact for the caller
func (e *Engine) AddContact(name, address, auditHash string) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := (contactRegistry{tx}).add(caller, name, address); err != nil {
		return err
	}
	if err := recordOperation(tx, auditHash, caller, "add_contact", now); err != nil {
		return err
	}
	return tx.commit()
}

// RemoveContact deletes the caller's contact by exact name
func (e *Engine) RemoveContact(name, auditHash string) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := (contactRegistry{tx}).remove(caller, name); err != nil {
		return err
	}
	if err := recordOperation(tx, auditHash, caller, "remove_contact", now); err != nil {
		return err
	}
	return tx.commit()
}

// Contacts lists account's contacts in insertion order
func (e *Engine) Contacts(account string) ([]Contact, error) {
	return contactRegistry{newTxn(e.stub())}.list(account)
}

// MyContacts lists the caller's contacts
func (e *Engine) MyContacts() ([]Contact, error) {
	caller, err := e.caller()
	if err != nil {
		return nil, err
	}
	return e.Contacts(caller)
}

// VoiceAuditLogs pages through account's submission attempts
func (e *Engine) VoiceAuditLogs(account string, offset, limit uint32) ([]AuditLogEntry, error) {
	return readPage[AuditLogEntry](e.stub(), colAudit, colAuditLen, account, uint64(offset), uint64(limit))
}

// EmergencyPause stops new submissions until Unpause; owner only
func (e *Engine) EmergencyPause() error {
	return e.setPaused(true, "EmergencyPaused", "emergency_pause")
}

// Unpause lifts an emergency pause; owner only
func (e *Engine) Unpause() error {
	return e.setPaused(false, "Unpaused", "unpause")
}

func (e *Engine) setPaused(paused bool, event, action string) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := (adminGate{tx}).setPaused(caller, paused); err != nil {
		return err
	}
	if err := tx.emit(event, AdminEvent{Actor: caller, Action: action, Timestamp: now}); err != nil {
		return err
	}
	e.log.Warn("pause_state_changed", slog.Bool("paused", paused))
	return tx.commit()
}

// TransferOwnership hands the admin role to newOwner; owner only
func (e *Engine) TransferOwnership(newOwner string) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := (adminGate{tx}).transferOwnership(caller, newOwner); err != nil {
		return err
	}
	if err := tx.emit("OwnershipTransferred", AdminEvent{Actor: caller, Action: "transfer_ownership", Timestamp: now}); err != nil {
		return err
	}
	return tx.commit()
}

// Owner returns the current owner identity
func (e *Engine) Owner() (string, error) {
	st, err := adminGate{newTxn(e.stub())}.state()
	if err != nil {
		return "", err
	}
	return st.Owner, nil
}

// Paused reports the emergency pause flag
func (e *Engine) Paused() (bool, error) {
	st, err := adminGate{newTxn(e.stub())}.state()
	if err != nil {
		return false, err
	}
	return st.Paused, nil
}

// DeleteUserData erases the caller's history, contacts and audit log in one
// write set. Counters, rate windows and replay registrations are kept.
func (e *Engine) DeleteUserData(auditHash string) error {
	caller, now, err := e.identity()
	if err != nil {
		return err
	}
	tx := newTxn(e.stub())
	if err := recordOperation(tx, auditHash, caller, "delete_user_data", now); err != nil {
		return err
	}
	if err := (ledgerStore{tx}).erase(caller); err != nil {
		return err
	}
	(contactRegistry{tx}).erase(caller)
	if err := (auditLog{tx}).erase(caller); err != nil {
		return err
	}
	if err := tx.emit("UserDataDeleted", AdminEvent{Actor: caller, Action: "delete_user_data", Timestamp: now}); err != nil {
		return err
	}
	return tx.commit()
}
