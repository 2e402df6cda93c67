package recorder_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	recorder "github.com/MythicMindLabs/apply/chaincode/payment_recorder"
	"github.com/MythicMindLabs/apply/chaincode/payment_recorder/mocks"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	ownerID = "x509::CN=owner,OU=admin::CN=ca.voicepay.example.com"
	aliceID = "x509::CN=alice,OU=client::CN=ca.voicepay.example.com"
	bobID   = "x509::CN=bob,OU=client::CN=ca.voicepay.example.com"

	bobAddress = "0x9f8e7d6c5b4a39281706f5e4d3c2b1a098765432"
)

// ANSI color codes for terminal output
const (
	colorReset = "\033[0m"
	colorBlue  = "\033[34m"
)

func logBlue(t *testing.T, message string) {
	t.Logf("%s%s%s", colorBlue, message, colorReset)
}

// ledgerFixture drives the contract against an in-memory world state
type ledgerFixture struct {
	t        *testing.T
	contract *recorder.SmartContract
	mock     *shimtest.MockStub
	stub     shim.ChaincodeStubInterface
	ctx      *mocks.TransactionContextInterface
	caller   string
	clock    time.Time
	txSeq    int
	events   []*peer.ChaincodeEvent
}

// Helper function to prepare mocks
func prepMocks(t *testing.T) *ledgerFixture {
	mockStub := shimtest.NewMockStub("payment-recorder", nil)
	f := &ledgerFixture{
		t:        t,
		contract: recorder.NewSmartContract(nil, recorder.Options{MaxCurrencyLength: 10}),
		mock:     mockStub,
		stub:     mockStub,
		caller:   ownerID,
		clock:    time.UnixMilli(1_700_000_000_000).UTC(),
	}

	identity := &mocks.ClientIdentity{}
	identity.On("GetID").Return(func() (string, error) { return f.caller, nil })

	ctx := &mocks.TransactionContextInterface{}
	ctx.On("GetStub").Return(func() shim.ChaincodeStubInterface { return f.stub })
	ctx.On("GetClientIdentity").Return(identity)
	f.ctx = ctx
	return f
}

// prepLedger returns a fixture whose ledger was initialized by ownerID
func prepLedger(t *testing.T) *ledgerFixture {
	f := prepMocks(t)
	require.NoError(t, f.exec(func() error { return f.contract.InitLedger(f.ctx) }))
	f.events = nil
	return f
}

func (f *ledgerFixture) as(caller string) *ledgerFixture {
	f.caller = caller
	return f
}

func (f *ledgerFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// exec runs fn inside one mock transaction and collects its event
func (f *ledgerFixture) exec(fn func() error) error {
	f.txSeq++
	txID := fmt.Sprintf("tx-%04d", f.txSeq)
	f.mock.MockTransactionStart(txID)
	f.mock.TxTimestamp = timestamppb.New(f.clock)
	defer func() {
		f.mock.MockTransactionEnd(txID)
		f.drainEvents()
	}()
	return fn()
}

func (f *ledgerFixture) drainEvents() {
	for {
		select {
		case ev := <-f.mock.ChaincodeEventsChannel:
			f.events = append(f.events, ev)
		default:
			return
		}
	}
}

func (f *ledgerFixture) lastEvent() *peer.ChaincodeEvent {
	f.t.Helper()
	require.NotEmpty(f.t, f.events)
	return f.events[len(f.events)-1]
}

func (f *ledgerFixture) record(req recorder.PaymentRequest) *recorder.PaymentReceipt {
	f.t.Helper()
	var receipt *recorder.PaymentReceipt
	err := f.exec(func() error {
		var err error
		receipt, err = f.contract.RecordPayment(f.ctx, req.Recipient, req.Amount, req.CommandText,
			req.ContentHash, req.Network, req.Currency, string(req.SecurityLevel))
		return err
	})
	require.NoError(f.t, err)
	require.NotNil(f.t, receipt)
	return receipt
}

func (f *ledgerFixture) mustAccept(req recorder.PaymentRequest) uint64 {
	f.t.Helper()
	receipt := f.record(req)
	require.True(f.t, receipt.Accepted, "rejected with %s", receipt.Error)
	return receipt.Index
}

func (f *ledgerFixture) mustReject(req recorder.PaymentRequest, code recorder.PaymentError) {
	f.t.Helper()
	receipt := f.record(req)
	require.False(f.t, receipt.Accepted)
	require.Equal(f.t, string(code), receipt.Error)
}

func (f *ledgerFixture) history(account string, offset, limit uint32) []recorder.PaymentRecord {
	f.t.Helper()
	var out []recorder.PaymentRecord
	require.NoError(f.t, f.exec(func() error {
		var err error
		out, err = f.contract.GetPaymentHistory(f.ctx, account, offset, limit)
		return err
	}))
	return out
}

func (f *ledgerFixture) auditLogs(account string) []recorder.AuditLogEntry {
	f.t.Helper()
	var out []recorder.AuditLogEntry
	require.NoError(f.t, f.exec(func() error {
		var err error
		out, err = f.contract.GetVoiceAuditLogs(f.ctx, account, 0, 1000)
		return err
	}))
	return out
}

func (f *ledgerFixture) statistics() recorder.Statistics {
	f.t.Helper()
	var out *recorder.Statistics
	require.NoError(f.t, f.exec(func() error {
		var err error
		out, err = f.contract.GetStatistics(f.ctx)
		return err
	}))
	return *out
}

func (f *ledgerFixture) contacts(account string) []recorder.Contact {
	f.t.Helper()
	var out []recorder.Contact
	require.NoError(f.t, f.exec(func() error {
		var err error
		out, err = f.contract.GetContacts(f.ctx, account)
		return err
	}))
	return out
}

func (f *ledgerFixture) configure(cfg recorder.SecurityConfig, auditHash string) error {
	return f.exec(func() error { return f.contract.ConfigureSecurity(f.ctx, cfg, auditHash) })
}

// hashOf derives a distinct 32-byte hex identifier from seed
func hashOf(seed string) string {
	h := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(h[:])
}

// Helper function to create a valid payment request
func paymentRequest(amount, seed string) recorder.PaymentRequest {
	return recorder.PaymentRequest{
		Recipient:     bobAddress,
		Amount:        amount,
		CommandText:   "send " + amount + " to bob",
		ContentHash:   hashOf(seed),
		Network:       "polkadot",
		Currency:      "DOT",
		SecurityLevel: recorder.SecurityBasic,
	}
}

func decodeEvent(t *testing.T, ev *peer.ChaincodeEvent, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ev.Payload, out))
}

// faultyStub fails reads of keys under prefix and deletes of keys under
// deletePrefix
type faultyStub struct {
	*shimtest.MockStub
	prefix       string
	deletePrefix string
}

func (s *faultyStub) GetState(key string) ([]byte, error) {
	if s.prefix != "" && strings.HasPrefix(key, s.prefix) {
		return nil, errors.New("peer unavailable")
	}
	return s.MockStub.GetState(key)
}

func (s *faultyStub) DelState(key string) error {
	if s.deletePrefix != "" && strings.HasPrefix(key, s.deletePrefix) {
		return errors.New("write rejected")
	}
	return s.MockStub.DelState(key)
}
