package services

import (
	"testing"

	"btcdraw/internal/models"
)

func testPool() models.Pool {
	return models.Pool{"alice": 2, "bob": 1, "carol": 3}
}

func TestDrawService_Execute(t *testing.T) {
	service := NewDrawService()

	t.Run("single winner reference vector", func(t *testing.T) {
		outcome, err := service.Execute(DrawRequest{
			Pool:    testPool(),
			Winners: 1,
			Seed:    ReadySeed(testBlockHash),
		})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if outcome.Status != models.StatusFinal {
			t.Fatalf("Expected final status, but got %s", outcome.Status)
		}
		if len(outcome.Rounds) != 1 {
			t.Fatalf("Expected 1 round, but got %d", len(outcome.Rounds))
		}

		round := outcome.Rounds[0]
		if round.TotalTickets != 6 {
			t.Errorf("Expected 6 total tickets, but got %d", round.TotalTickets)
		}
		if round.Snapshot.SHA256 != "10f952d4a3a060a49da541e0a7dda0505003223391b25fd14c5f85fdbc704df5" {
			t.Errorf("Unexpected snapshot digest: %s", round.Snapshot.SHA256)
		}
		if round.Seed != "a75321ac1e49ede1a61727cd311e2b4db4a494a157ae87889e2ea2a159dcc4e6" {
			t.Errorf("Unexpected seed: %s", round.Seed)
		}
		if round.WinnerUsername != "carol" || round.WinnerTicket != 5 {
			t.Errorf("Expected carol on ticket 5, but got %s on %d", round.WinnerUsername, round.WinnerTicket)
		}
		if round.WinnerRange.From != 4 || round.WinnerRange.To != 6 {
			t.Errorf("Expected range 4-6, but got %d-%d", round.WinnerRange.From, round.WinnerRange.To)
		}
	})

	t.Run("second round recanonicalizes the shrunk pool", func(t *testing.T) {
		outcome, err := service.Execute(DrawRequest{
			Pool:    testPool(),
			Winners: 2,
			Seed:    ReadySeed(testBlockHash),
		})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(outcome.Rounds) != 2 {
			t.Fatalf("Expected 2 rounds, but got %d", len(outcome.Rounds))
		}

		// Round 2 runs over {alice:2, bob:1} with the same block hash and
		// a fresh, smaller snapshot.
		round := outcome.Rounds[1]
		if round.Snapshot.SHA256 != "b5ce3842c3b08ca99cf8568f4c4053389f481342968e9cc5a1e48a685249addd" {
			t.Errorf("Unexpected round 2 snapshot digest: %s", round.Snapshot.SHA256)
		}
		if round.Snapshot.Size != 36 {
			t.Errorf("Expected round 2 snapshot of 36 bytes, but got %d", round.Snapshot.Size)
		}
		if round.TotalTickets != 3 {
			t.Errorf("Expected 3 total tickets in round 2, but got %d", round.TotalTickets)
		}
		if round.Seed != "7f009de8942bcb0def51628b64f340ac12b1c5a3a941d779c83b444f7402af7f" {
			t.Errorf("Unexpected round 2 seed: %s", round.Seed)
		}
		if round.WinnerUsername != "bob" || round.WinnerTicket != 3 {
			t.Errorf("Expected bob on ticket 3, but got %s on %d", round.WinnerUsername, round.WinnerTicket)
		}
	})

	t.Run("deterministic across repeated runs", func(t *testing.T) {
		first, err := service.Execute(DrawRequest{Pool: testPool(), Winners: 2, Seed: ReadySeed(testBlockHash)})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		for i := 0; i < 5; i++ {
			again, err := service.Execute(DrawRequest{Pool: testPool(), Winners: 2, Seed: ReadySeed(testBlockHash)})
			if err != nil {
				t.Fatalf("Expected no error, but got %v", err)
			}
			for r := range first.Rounds {
				if first.Rounds[r].Seed != again.Rounds[r].Seed ||
					first.Rounds[r].WinnerUsername != again.Rounds[r].WinnerUsername {
					t.Fatalf("Run %d diverged in round %d", i, r+1)
				}
			}
		}
	})

	t.Run("no participant wins twice", func(t *testing.T) {
		pool := models.Pool{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
		outcome, err := service.Execute(DrawRequest{Pool: pool, Winners: 4, Seed: ReadySeed(testBlockHash)})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		seen := make(map[string]bool)
		for _, round := range outcome.Rounds {
			if seen[round.WinnerUsername] {
				t.Fatalf("%s won twice", round.WinnerUsername)
			}
			seen[round.WinnerUsername] = true
		}
	})

	t.Run("caller pool never mutated", func(t *testing.T) {
		pool := testPool()
		if _, err := service.Execute(DrawRequest{Pool: pool, Winners: 2, Seed: ReadySeed(testBlockHash)}); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(pool) != 3 {
			t.Errorf("Expected caller pool to keep 3 entries, but got %d", len(pool))
		}
	})

	t.Run("winner count bounds", func(t *testing.T) {
		for _, winners := range []int{0, -1, 3, 4} {
			if _, err := service.Execute(DrawRequest{Pool: testPool(), Winners: winners, Seed: ReadySeed(testBlockHash)}); err == nil {
				t.Errorf("Expected an error for winners=%d, but got nil", winners)
			}
		}
	})

	t.Run("pool below 2 participants rejected", func(t *testing.T) {
		if _, err := service.Execute(DrawRequest{Pool: models.Pool{"alice": 1}, Winners: 1, Seed: ReadySeed(testBlockHash)}); err == nil {
			t.Fatal("Expected an error for a single-participant pool, but got nil")
		}
	})

	t.Run("invalid block hash rejected", func(t *testing.T) {
		if _, err := service.Execute(DrawRequest{Pool: testPool(), Winners: 1, Seed: ReadySeed("not-a-hash")}); err == nil {
			t.Fatal("Expected an error for a malformed block hash, but got nil")
		}
	})
}

func TestDrawService_Pending(t *testing.T) {
	service := NewDrawService()

	outcome, err := service.Execute(DrawRequest{
		Pool:    testPool(),
		Winners: 2,
		Seed:    PendingSeed(ReasonBlockNotFoundYet),
	})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if outcome.Status != models.StatusPending {
		t.Fatalf("Expected pending status, but got %s", outcome.Status)
	}
	if outcome.Reason != ReasonBlockNotFoundYet {
		t.Errorf("Unexpected reason: %s", outcome.Reason)
	}
	if len(outcome.Rounds) != 0 {
		t.Errorf("Expected no rounds in a pending outcome, but got %d", len(outcome.Rounds))
	}
	if outcome.Preview == nil {
		t.Fatal("Expected a round-1 preview")
	}

	t.Run("preview matches the later final round 1", func(t *testing.T) {
		final, err := service.Execute(DrawRequest{Pool: testPool(), Winners: 2, Seed: ReadySeed(testBlockHash)})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if outcome.Preview.Snapshot.SHA256 != final.Rounds[0].Snapshot.SHA256 {
			t.Error("Pending preview digest differs from the final round-1 digest")
		}
		if outcome.Preview.TotalTickets != final.Rounds[0].TotalTickets {
			t.Error("Pending preview ticket total differs from the final round-1 total")
		}
	})
}

func TestOrderInvariance(t *testing.T) {
	service := NewDrawService()

	// Same records, different input row order.
	inputs := []string{
		"username,ticket_count\nalice,2\nbob,1\ncarol,3\n",
		"username,ticket_count\ncarol,3\nalice,2\nbob,1\n",
		"username,ticket_count\nbob,1\ncarol,3\nalice,2\n",
	}
	var digests, winners []string
	for _, text := range inputs {
		pool, err := Normalize(text, models.DistributionWeighted)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		outcome, err := service.Execute(DrawRequest{Pool: pool, Winners: 2, Seed: ReadySeed(testBlockHash)})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		digests = append(digests, outcome.Rounds[0].Snapshot.SHA256)
		winners = append(winners, outcome.Rounds[0].WinnerUsername+","+outcome.Rounds[1].WinnerUsername)
	}
	for i := 1; i < len(digests); i++ {
		if digests[i] != digests[0] {
			t.Errorf("Input order changed the snapshot digest: %s vs %s", digests[i], digests[0])
		}
		if winners[i] != winners[0] {
			t.Errorf("Input order changed the winner sequence: %s vs %s", winners[i], winners[0])
		}
	}
}
