package models

// TicketDistribution selects how raw participant records are interpreted.
type TicketDistribution string

const (
	// DistributionUniform reads one username per line; everyone gets one ticket.
	DistributionUniform TicketDistribution = "uniform"
	// DistributionWeighted reads a CSV with username,ticket_count headers.
	DistributionWeighted TicketDistribution = "weighted"
)

// Pool maps a trimmed, case-preserved username to its ticket count.
// Usernames are unique; duplicate input is rejected during normalization,
// never merged.
type Pool map[string]int

// Entry is one participant in canonical (byte-wise ascending) order.
type Entry struct {
	Username string `json:"username"`
	Tickets  int    `json:"tickets"`
}

// Snapshot is the canonical, reserialized form of a pool. The draw seeds
// from SHA256; the raw input file's digest is audit information only.
type Snapshot struct {
	Entries []Entry `json:"entries"`
	Bytes   []byte  `json:"-"`
	Size    int     `json:"size"`
	SHA256  string  `json:"sha256"`
}

// TicketRange assigns a participant the closed ticket interval [From, To].
type TicketRange struct {
	Username string `json:"username"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// RoundResult records everything needed to re-verify one elimination round.
type RoundResult struct {
	Round          int         `json:"round"`
	Snapshot       Snapshot    `json:"snapshot"`
	TotalTickets   int         `json:"totalTickets"`
	Seed           string      `json:"seed"`
	WinnerUsername string      `json:"winnerUsername"`
	WinnerTicket   int         `json:"winnerTicket"`
	WinnerRange    TicketRange `json:"winnerRange"`
}

// Draw outcome status values.
const (
	StatusFinal   = "final"
	StatusPending = "pending"
)

// RoundPreview carries the round-1 commitment published while the seed
// source has no data yet, so participants can verify the snapshot that
// will be used once the block exists.
type RoundPreview struct {
	Snapshot     Snapshot `json:"snapshot"`
	TotalTickets int      `json:"totalTickets"`
}

// DrawOutcome is the terminal value of one invocation: either a final
// winner sequence or a pending pre-commitment. Never mutated once built.
type DrawOutcome struct {
	Status            string        `json:"status"`
	Reason            string        `json:"reason,omitempty"`
	ParticipantsCount int           `json:"participantsCount"`
	WinnersCount      int           `json:"winnersCount"`
	Rounds            []RoundResult `json:"rounds,omitempty"`
	Preview           *RoundPreview `json:"preview,omitempty"`
}
