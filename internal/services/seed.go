package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"sort"

	"btcdraw/internal/models"
)

// ErrZeroTickets is returned when a selection is attempted over an empty
// ticket space.
var ErrZeroTickets = errors.New("no valid tickets found")

// ErrRangesInconsistent means the winner ticket fell outside every range.
// That is an internal invariant violation in range construction; silently
// picking a neighbouring range would corrupt the fairness guarantee, so it
// is always fatal.
var ErrRangesInconsistent = errors.New("winner ticket not found in any range (ranges inconsistent)")

// ValidBlockHash reports whether s is a 64-character lowercase hex string.
func ValidBlockHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// DeriveSeed combines the block hash and the snapshot digest into the round
// seed: sha256 over the UTF-8 text of the two hex strings concatenated with
// no separator. The textual concatenation (not binary) is part of the
// reproducibility contract; reimplementations must match it exactly.
func DeriveSeed(blockHash, snapshotSHA256 string) string {
	sum := sha256.Sum256([]byte(blockHash + snapshotSHA256))
	return hex.EncodeToString(sum[:])
}

// SelectWinner maps a seed onto the ticket space and finds the owning range.
// winner_ticket = (seed as unsigned big integer mod totalTickets) + 1.
// Exactly one range must contain the ticket.
func SelectWinner(seed string, ranges []models.TicketRange, totalTickets int) (models.TicketRange, int, error) {
	if totalTickets <= 0 {
		return models.TicketRange{}, 0, ErrZeroTickets
	}
	n, ok := new(big.Int).SetString(seed, 16)
	if !ok {
		return models.TicketRange{}, 0, errors.New("seed is not a hex string")
	}
	ticket := int(new(big.Int).Mod(n, big.NewInt(int64(totalTickets))).Int64()) + 1

	// Ranges are sorted and disjoint by construction, so the owner is the
	// first range whose upper bound reaches the ticket.
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].To >= ticket })
	if i == len(ranges) || ranges[i].From > ticket {
		return models.TicketRange{}, 0, ErrRangesInconsistent
	}
	return ranges[i], ticket, nil
}
