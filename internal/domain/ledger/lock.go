package ledger

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// LockSet computes the set of account ids a Request must acquire
// exclusive row locks on, sorted by the account id's 128-bit value.
// Sorting is the sole deadlock-avoidance mechanism: any two requests
// touching overlapping accounts acquire their shared locks in the same
// order, so the lock acquisition graph is acyclic.
func LockSet(req Request) []uuid.UUID {
	ids := []uuid.UUID{req.AccountID}
	if req.Type == Transfer && req.hasReceiver() {
		ids = append(ids, req.ReceiverID)
	}

	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	return ids
}
