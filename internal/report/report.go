// Package report renders a draw outcome as the stable, ordered key=value
// field set that auditors parse. Field names and order are a compatibility
// contract; reorder nothing without a version bump.
package report

import (
	"strconv"
	"strings"

	"btcdraw/internal/blocksource"
	"btcdraw/internal/models"
	"btcdraw/internal/records"
)

const (
	Tool    = "btcdraw"
	Version = "2.0.0"
)

// Field is one key=value output line.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Report is an ordered field list.
type Report struct {
	Fields []Field `json:"fields"`
}

func (r *Report) add(key, value string) {
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

// Lines renders the report as key=value lines, one field per line.
func (r *Report) Lines() string {
	var b strings.Builder
	for _, f := range r.Fields {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

// Get returns the value of the first field with the given key.
func (r *Report) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Input is the invocation context a report is built from, alongside the
// outcome itself.
type Input struct {
	Distribution models.TicketDistribution
	BlockSource  string // "hash" or "height"
	BlockHeight  int
	BlockHash    string
	File         *records.File
	BlockInfo    *blocksource.BlockInfo // optional audit metadata
}

// Build assembles the full report for one draw invocation.
func Build(in Input, outcome *models.DrawOutcome) *Report {
	r := &Report{}
	r.add("tool", Tool)
	r.add("version", Version)
	r.add("status", outcome.Status)
	r.add("block_source", in.BlockSource)
	if in.BlockSource == "height" {
		r.add("block_height", strconv.Itoa(in.BlockHeight))
		r.add("block_height_provider", blocksource.Provider)
	}
	r.add("ticket_distribution", string(in.Distribution))
	if outcome.Status == models.StatusPending {
		r.add("reason", outcome.Reason)
		r.add("block_hash", "")
	} else {
		r.add("block_hash", in.BlockHash)
		if in.BlockInfo != nil {
			r.add("block_time", strconv.FormatInt(in.BlockInfo.Timestamp, 10))
		}
	}
	r.add("participants_file", in.File.Name)
	r.add("canonical_snapshot", "username,ticket_count (normalized + sorted)")

	// Raw input file digest: auditing only, changes with formatting and
	// ordering, never feeds selection.
	r.add("participants_raw_file_bytes", strconv.Itoa(in.File.RawBytes))
	r.add("participants_raw_file_sha256", in.File.RawSHA256)

	r.add("participants_count", strconv.Itoa(outcome.ParticipantsCount))
	r.add("winners_count", strconv.Itoa(outcome.WinnersCount))

	switch outcome.Status {
	case models.StatusPending:
		snap := outcome.Preview.Snapshot
		r.add("total_tickets_rounds", strconv.Itoa(outcome.Preview.TotalTickets))
		r.add("canonical_snapshot_bytes_rounds", strconv.Itoa(snap.Size))
		r.add("canonical_snapshot_sha256_rounds", snap.SHA256)
	case models.StatusFinal:
		var (
			totals, sizes, digests, seeds    []string
			tickets, usernames, ticketRanges []string
		)
		for _, round := range outcome.Rounds {
			totals = append(totals, strconv.Itoa(round.TotalTickets))
			sizes = append(sizes, strconv.Itoa(round.Snapshot.Size))
			digests = append(digests, round.Snapshot.SHA256)
			seeds = append(seeds, round.Seed)
			tickets = append(tickets, strconv.Itoa(round.WinnerTicket))
			usernames = append(usernames, round.WinnerUsername)
			ticketRanges = append(ticketRanges,
				strconv.Itoa(round.WinnerRange.From)+"-"+strconv.Itoa(round.WinnerRange.To))
		}
		r.add("total_tickets_rounds", strings.Join(totals, ","))
		r.add("canonical_snapshot_bytes_rounds", strings.Join(sizes, ","))
		r.add("canonical_snapshot_sha256_rounds", strings.Join(digests, ","))
		r.add("seeds_sha256", strings.Join(seeds, ","))
		r.add("winners_tickets", strings.Join(tickets, ","))
		r.add("winners_usernames", strings.Join(usernames, ","))
		r.add("winners_ticket_ranges", strings.Join(ticketRanges, ","))
	}
	return r
}

// BuildLegacy renders the legacy explicit-range verification output, where
// the seed derives from the raw file digest.
func BuildLegacy(file *records.File, blockHash string, result models.RoundResult) *Report {
	r := &Report{}
	r.add("tool", Tool)
	r.add("version", Version)
	r.add("status", models.StatusFinal)
	r.add("format", "legacy-ranges")
	r.add("block_hash", blockHash)
	r.add("participants_file", file.Name)
	r.add("snapshot_hash_csv", file.RawSHA256)
	r.add("seed_sha256", result.Seed)
	r.add("total_tickets", strconv.Itoa(result.TotalTickets))
	r.add("winner_ticket", strconv.Itoa(result.WinnerTicket))
	r.add("winner_username", result.WinnerUsername)
	r.add("winner_ticket_range",
		strconv.Itoa(result.WinnerRange.From)+"-"+strconv.Itoa(result.WinnerRange.To))
	return r
}
