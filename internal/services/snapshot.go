package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"btcdraw/internal/models"
)

// BuildSnapshot canonicalizes a pool: entries sorted ascending by username
// (byte-wise, not locale-aware), serialized as a header line plus one
// username,ticket_count row per entry, newline-terminated. The snapshot
// digest is computed over those exact bytes, so the result is invariant to
// input row order and formatting.
func BuildSnapshot(pool models.Pool) models.Snapshot {
	entries := make([]models.Entry, 0, len(pool))
	for username, tickets := range pool {
		entries = append(entries, models.Entry{Username: username, Tickets: tickets})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Username < entries[j].Username
	})

	var b strings.Builder
	b.WriteString("username,ticket_count\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s,%d\n", e.Username, e.Tickets)
	}
	raw := []byte(b.String())
	sum := sha256.Sum256(raw)

	return models.Snapshot{
		Entries: entries,
		Bytes:   raw,
		Size:    len(raw),
		SHA256:  hex.EncodeToString(sum[:]),
	}
}

// BuildRanges assigns each canonical entry a contiguous closed ticket range
// whose length equals its ticket count, starting at 1. Ranges are gapless
// and non-overlapping by construction.
func BuildRanges(entries []models.Entry) ([]models.TicketRange, int) {
	ranges := make([]models.TicketRange, 0, len(entries))
	cursor := 1
	for _, e := range entries {
		r := models.TicketRange{
			Username: e.Username,
			From:     cursor,
			To:       cursor + e.Tickets - 1,
		}
		ranges = append(ranges, r)
		cursor = r.To + 1
	}
	return ranges, cursor - 1
}
