package recorder

import (
	"fmt"

	"github.com/google/uuid"
)

// auditNamespace scopes the deterministic audit entry IDs
var auditNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:echopay:voice-audit"))

// auditLog is the per-account record of every payment submission attempt
type auditLog struct {
	tx *txn
}

func (a auditLog) length(account string) (uint64, error) {
	return a.tx.readCounter(stateKey(colAuditLen, accountKey(account)))
}

// append records one attempt under the acting account. The entry ID is
// derived from the transaction ID so every endorser computes the same value.
func (a auditLog) append(account, txID string, entry AuditLogEntry) error {
	n, err := a.length(account)
	if err != nil {
		return err
	}
	entry.ID = uuid.NewSHA1(auditNamespace, []byte(fmt.Sprintf("%s:%d", txID, n))).String()
	if err := a.tx.putJSON(indexKey(colAudit, account, n), entry); err != nil {
		return err
	}
	return a.tx.putJSON(stateKey(colAuditLen, accountKey(account)), n+1)
}

func (a auditLog) erase(account string) error {
	n, err := a.length(account)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		a.tx.del(indexKey(colAudit, account, i))
	}
	a.tx.del(stateKey(colAuditLen, accountKey(account)))
	return nil
}

// recordOperation registers audit_hash for a self-service operation. The
// hash space is separate from payment content hashes; reuse is refused.
func recordOperation(tx *txn, hash, account, operation string, now int64) error {
	h, err := NormalizeHash(hash)
	if err != nil {
		return err
	}
	key := stateKey(colOpAudit, h)
	var prior OperationAudit
	found, err := tx.getJSON(key, &prior)
	if err != nil {
		return err
	}
	if found {
		return ErrReplayAttackDetected
	}
	return tx.putJSON(key, OperationAudit{Hash: h, Account: account, Operation: operation, Timestamp: now})
}
