package recorder

import "github.com/shopspring/decimal"

// ledgerStore is the per-account append-only payment history
type ledgerStore struct {
	tx *txn
}

func (l ledgerStore) length(account string) (uint64, error) {
	return l.tx.readCounter(stateKey(colPaymentLen, accountKey(account)))
}

// append stores rec at the end of the sender's sequence and returns its index
func (l ledgerStore) append(rec PaymentRecord) (uint64, error) {
	n, err := l.length(rec.Sender)
	if err != nil {
		return 0, err
	}
	rec.Index = n
	if err := l.tx.putJSON(indexKey(colPayment, rec.Sender, n), rec); err != nil {
		return 0, err
	}
	if err := l.tx.putJSON(stateKey(colPaymentLen, accountKey(rec.Sender)), n+1); err != nil {
		return 0, err
	}
	return n, nil
}

func (l ledgerStore) get(account string, index uint64) (*PaymentRecord, error) {
	var rec PaymentRecord
	found, err := l.tx.getJSON(indexKey(colPayment, account, index), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrIndexOutOfRange
	}
	return &rec, nil
}

// updateStatus moves a PENDING record to a terminal status
func (l ledgerStore) updateStatus(account string, index uint64, status PaymentStatus, txHash string) (*PaymentRecord, error) {
	n, err := l.length(account)
	if err != nil {
		return nil, err
	}
	if index >= n {
		return nil, ErrIndexOutOfRange
	}
	rec, err := l.get(account, index)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(rec.Status, status); err != nil {
		return nil, err
	}

	rec.Status = status
	rec.TransactionHash = txHash
	if err := l.tx.putJSON(indexKey(colPayment, account, index), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// all reads the full history; used by the linear folds
func (l ledgerStore) all(account string) ([]PaymentRecord, error) {
	n, err := l.length(account)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentRecord, 0, n)
	for i := uint64(0); i < n; i++ {
		rec, err := l.get(account, i)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// stats folds the history into (count, total amount)
func (l ledgerStore) stats(account string) (UserStats, error) {
	history, err := l.all(account)
	if err != nil {
		return UserStats{}, err
	}
	total := decimal.Zero
	for _, rec := range history {
		v, err := ParseAmount(rec.Amount)
		if err != nil {
			return UserStats{}, err
		}
		total = total.Add(v)
	}
	return UserStats{Count: uint64(len(history)), TotalAmount: formatAmount(total)}, nil
}

// erase stages deletion of the whole history
func (l ledgerStore) erase(account string) error {
	n, err := l.length(account)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		l.tx.del(indexKey(colPayment, account, i))
	}
	l.tx.del(stateKey(colPaymentLen, accountKey(account)))
	return nil
}

func validateStatusTransition(current, next PaymentStatus) error {
	if current != StatusPending {
		return ErrInvalidStatusTransition
	}
	switch next {
	case StatusConfirmed, StatusFailed:
		return nil
	default:
		return ErrInvalidStatusTransition
	}
}
