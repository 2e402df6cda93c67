package recorder

const rateWindowMillis int64 = 60 * 60 * 1000

// rateWindow is the sliding log of an account's admissions in the trailing hour
type rateWindow struct {
	Admissions []int64 `json:"admissions"`
}

// rateLimiter bounds admitted submissions per account per rolling hour
type rateLimiter struct {
	tx *txn
}

func (r rateLimiter) checkAndIncrement(account string, limit uint32, now int64) error {
	key := stateKey(colRateLimit, accountKey(account))
	var w rateWindow
	if _, err := r.tx.getJSON(key, &w); err != nil {
		return err
	}

	cutoff := now - rateWindowMillis
	kept := w.Admissions[:0]
	for _, ts := range w.Admissions {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	if uint64(len(kept)) >= uint64(limit) {
		return ErrRateLimitExceeded
	}

	w.Admissions = append(kept, now)
	return r.tx.putJSON(key, w)
}

// inWindow counts admissions still inside the trailing hour
func (r rateLimiter) inWindow(account string, now int64) (uint32, error) {
	var w rateWindow
	if _, err := r.tx.getJSON(stateKey(colRateLimit, accountKey(account)), &w); err != nil {
		return 0, err
	}
	var n uint32
	for _, ts := range w.Admissions {
		if ts > now-rateWindowMillis {
			n++
		}
	}
	return n, nil
}
