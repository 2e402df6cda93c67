package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// world-state collections
const (
	colContract   = "contract"
	colConfig     = "config"
	colReplay     = "replay"
	colOpAudit    = "opaudit"
	colRateLimit  = "ratelimit"
	colPayment    = "payment"
	colPaymentLen = "paymentlen"
	colAudit      = "audit"
	colAuditLen   = "auditlen"
	colContacts   = "contacts"
	colSender     = "sender"
	colStats      = "stats"
)

const keySep = "~"

func stateKey(collection string, parts ...string) string {
	return collection + keySep + strings.Join(parts, keySep)
}

// accountKey maps an identity string to a fixed-width key component
func accountKey(account string) string {
	h := sha256.Sum256([]byte(account))
	return hex.EncodeToString(h[:])
}

// indexKey zero-pads so lexical order equals insertion order
func indexKey(collection, account string, index uint64) string {
	return stateKey(collection, accountKey(account), fmt.Sprintf("%020d", index))
}

type stagedWrite struct {
	value   []byte
	deleted bool
}

type stagedEvent struct {
	name    string
	payload []byte
}

// txn stages writes over the world state. Reads see staged values; nothing
// reaches the stub until commit.
type txn struct {
	stub   shim.ChaincodeStubInterface
	writes map[string]stagedWrite
	event  *stagedEvent
}

func newTxn(stub shim.ChaincodeStubInterface) *txn {
	return &txn{stub: stub, writes: make(map[string]stagedWrite)}
}

func (t *txn) get(key string) ([]byte, error) {
	if w, ok := t.writes[key]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	v, err := t.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return v, nil
}

func (t *txn) put(key string, value []byte) {
	t.writes[key] = stagedWrite{value: value}
}

func (t *txn) del(key string) {
	t.writes[key] = stagedWrite{deleted: true}
}

// getJSON decodes key into out and reports whether it existed
func (t *txn) getJSON(key string, out interface{}) (bool, error) {
	b, err := t.get(key)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (t *txn) putJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	t.put(key, b)
	return nil
}

// emit stages the transaction's event. Fabric keeps one per transaction so
// a later call replaces an earlier one.
func (t *txn) emit(name string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", name, err)
	}
	t.event = &stagedEvent{name: name, payload: b}
	return nil
}

// commit flushes staged writes in key order, then the event. If a write
// fails, keys already flushed get their previous values back so the state
// is left as it was before the commit.
func (t *txn) commit() error {
	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	previous := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := t.stub.GetState(k)
		if err != nil {
			return fmt.Errorf("failed to read state %s: %w", k, err)
		}
		previous[k] = v
	}

	for i, k := range keys {
		if err := t.flush(k, t.writes[k]); err != nil {
			return t.restore(keys[:i], previous, err)
		}
	}

	if t.event != nil {
		if err := t.stub.SetEvent(t.event.name, t.event.payload); err != nil {
			return t.restore(keys, previous, fmt.Errorf("failed to set %s event: %w", t.event.name, err))
		}
	}
	t.writes = make(map[string]stagedWrite)
	t.event = nil
	return nil
}

func (t *txn) flush(key string, w stagedWrite) error {
	if w.deleted {
		if err := t.stub.DelState(key); err != nil {
			return fmt.Errorf("failed to delete state %s: %w", key, err)
		}
		return nil
	}
	if err := t.stub.PutState(key, w.value); err != nil {
		return fmt.Errorf("failed to put state %s: %w", key, err)
	}
	return nil
}

// restore puts back the pre-commit values of flushed and returns cause
func (t *txn) restore(flushed []string, previous map[string][]byte, cause error) error {
	for i := len(flushed) - 1; i >= 0; i-- {
		k := flushed[i]
		w := stagedWrite{value: previous[k], deleted: previous[k] == nil}
		if err := t.flush(k, w); err != nil {
			return fmt.Errorf("%w; rollback incomplete: %v", cause, err)
		}
	}
	return cause
}

// readCounter returns the uint64 stored at key, zero when absent
func (t *txn) readCounter(key string) (uint64, error) {
	var n uint64
	if _, err := t.getJSON(key, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// pageBounds clamps [offset, offset+limit) to a sequence of length n
func pageBounds(n, offset, limit uint64) (uint64, uint64, bool) {
	if limit == 0 || offset >= n {
		return 0, 0, false
	}
	end := n
	if limit < n-offset {
		end = offset + limit
	}
	return offset, end, true
}

// readPage decodes entries [offset, offset+limit) of an indexed collection
// with one range scan. Range reads go straight to the stub and are only
// used by queries.
func readPage[T any](stub shim.ChaincodeStubInterface, collection, lenCollection, account string, offset, limit uint64) ([]T, error) {
	n, err := newTxn(stub).readCounter(stateKey(lenCollection, accountKey(account)))
	if err != nil {
		return nil, err
	}
	out := []T{}
	start, end, ok := pageBounds(n, offset, limit)
	if !ok {
		return out, nil
	}

	resultsIterator, err := stub.GetStateByRange(indexKey(collection, account, start), indexKey(collection, account, end))
	if err != nil {
		return nil, fmt.Errorf("failed to range %s: %w", collection, err)
	}
	defer resultsIterator.Close()

	for resultsIterator.HasNext() {
		kv, err := resultsIterator.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate over results: %v", err)
		}
		var item T
		if err := json.Unmarshal(kv.Value, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", kv.Key, err)
		}
		out = append(out, item)
	}
	return out, nil
}
