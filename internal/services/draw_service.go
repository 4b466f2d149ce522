package services

import (
	"errors"
	"fmt"

	"btcdraw/internal/models"
)

// Pending reason published when the requested block has not been observed yet.
const ReasonBlockNotFoundYet = "block_not_found_yet"

// SeedMaterial is what the external seed source produced: either a ready
// 64-hex block hash or a not-yet-available signal with a machine-readable
// reason. Resolution failures never reach the engine; they abort earlier.
type SeedMaterial struct {
	Ready     bool
	BlockHash string
	Reason    string
}

// ReadySeed wraps a resolved block hash.
func ReadySeed(blockHash string) SeedMaterial {
	return SeedMaterial{Ready: true, BlockHash: blockHash}
}

// PendingSeed signals that the seed source has no data yet.
func PendingSeed(reason string) SeedMaterial {
	return SeedMaterial{Reason: reason}
}

// DrawRequest is one complete draw: a normalized pool, the requested winner
// count, and the seed material.
type DrawRequest struct {
	Pool    models.Pool
	Winners int
	Seed    SeedMaterial
}

// DrawService runs the sequential elimination rounds of a draw. It holds no
// state between draws; each execution owns its own shrinking copy of the
// pool.
type DrawService struct{}

// NewDrawService creates a new DrawService.
func NewDrawService() *DrawService {
	return &DrawService{}
}

// Execute runs one draw to its terminal outcome.
//
// With ready seed material it runs rounds 1..W. Each round canonicalizes the
// current pool, rebuilds ticket ranges, rederives the seed from the same
// block hash and the round's snapshot digest, and selects that round's
// winner, who is then removed from the pool. A participant therefore cannot
// win twice, and every round is independently re-verifiable.
//
// With pending seed material it returns a Pending outcome carrying the
// round-1 snapshot commitment and no winners.
//
// Any round failure aborts the whole draw; no partial winner list is
// returned.
func (s *DrawService) Execute(req DrawRequest) (*models.DrawOutcome, error) {
	participants := len(req.Pool)
	if participants < 2 {
		return nil, errors.New("draw requires at least 2 participants")
	}
	if req.Winners < 1 || req.Winners > participants-1 {
		return nil, fmt.Errorf("winners must be between 1 and %d (participants-1), got %d",
			participants-1, req.Winners)
	}

	if !req.Seed.Ready {
		snapshot := BuildSnapshot(req.Pool)
		_, total := BuildRanges(snapshot.Entries)
		return &models.DrawOutcome{
			Status:            models.StatusPending,
			Reason:            req.Seed.Reason,
			ParticipantsCount: participants,
			WinnersCount:      req.Winners,
			Preview: &models.RoundPreview{
				Snapshot:     snapshot,
				TotalTickets: total,
			},
		}, nil
	}

	if !ValidBlockHash(req.Seed.BlockHash) {
		return nil, errors.New("block_hash must be 64 hex chars")
	}

	// Execute owns this copy; the caller's pool is never mutated.
	pool := make(models.Pool, participants)
	for username, tickets := range req.Pool {
		pool[username] = tickets
	}

	rounds := make([]models.RoundResult, 0, req.Winners)
	for round := 1; round <= req.Winners; round++ {
		result, err := runRound(round, pool, req.Seed.BlockHash)
		if err != nil {
			return nil, err
		}
		delete(pool, result.WinnerUsername)
		rounds = append(rounds, result)
	}

	return &models.DrawOutcome{
		Status:            models.StatusFinal,
		ParticipantsCount: participants,
		WinnersCount:      req.Winners,
		Rounds:            rounds,
	}, nil
}

// runRound is the pure per-round step: (pool, block hash) -> RoundResult.
func runRound(round int, pool models.Pool, blockHash string) (models.RoundResult, error) {
	snapshot := BuildSnapshot(pool)
	ranges, total := BuildRanges(snapshot.Entries)
	seed := DeriveSeed(blockHash, snapshot.SHA256)

	winnerRange, ticket, err := SelectWinner(seed, ranges, total)
	if err != nil {
		return models.RoundResult{}, fmt.Errorf("round %d: %v", round, err)
	}

	return models.RoundResult{
		Round:          round,
		Snapshot:       snapshot,
		TotalTickets:   total,
		Seed:           seed,
		WinnerUsername: winnerRange.Username,
		WinnerTicket:   ticket,
		WinnerRange:    winnerRange,
	}, nil
}

// ExecuteLegacy re-verifies a draw recorded in the legacy explicit-range
// format: a single winner, seeded from the block hash and the digest of the
// raw participants file rather than a canonical snapshot.
func (s *DrawService) ExecuteLegacy(ranges []models.TicketRange, total int, blockHash, rawSHA256 string) (models.RoundResult, error) {
	if !ValidBlockHash(blockHash) {
		return models.RoundResult{}, errors.New("block_hash must be 64 hex chars")
	}
	seed := DeriveSeed(blockHash, rawSHA256)
	winnerRange, ticket, err := SelectWinner(seed, ranges, total)
	if err != nil {
		return models.RoundResult{}, err
	}
	return models.RoundResult{
		Round:          1,
		TotalTickets:   total,
		Seed:           seed,
		WinnerUsername: winnerRange.Username,
		WinnerTicket:   ticket,
		WinnerRange:    winnerRange,
	}, nil
}
