package recorder

import (
	"encoding/hex"
	"strings"
)

const hashSize = 32

// NormalizeHash validates a 32-byte hex identifier and lower-cases it. An
// optional 0x prefix is accepted.
func NormalizeHash(h string) (string, error) {
	h = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X"))
	if len(h) != hashSize*2 {
		return "", ErrInvalidHash
	}
	if _, err := hex.DecodeString(h); err != nil {
		return "", ErrInvalidHash
	}
	return h, nil
}

type replayEntry struct {
	FirstSeen int64 `json:"firstSeen"`
}

// replayGuard is the global registry of admitted content hashes.
//
// A hash that was ever admitted stays blocked; registrations do not expire.
type replayGuard struct {
	tx *txn
}

func (g replayGuard) checkAndRegister(hash string, now int64) error {
	key := stateKey(colReplay, hash)
	var seen replayEntry
	found, err := g.tx.getJSON(key, &seen)
	if err != nil {
		return err
	}
	if found {
		return ErrReplayAttackDetected
	}
	return g.tx.putJSON(key, replayEntry{FirstSeen: now})
}
