package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"btcdraw/internal/models"
)

// ParseExplicitRanges reads the legacy participants format, where each row
// supplies its own from_ticket/to_ticket instead of a ticket count. Kept so
// historical draws stay re-verifiable.
func ParseExplicitRanges(text string) ([]models.TicketRange, int, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, errors.New("CSV must have headers: username,from_ticket,to_ticket")
	}
	usernameCol, fromCol, toCol := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "username":
			usernameCol = i
		case "from_ticket":
			fromCol = i
		case "to_ticket":
			toCol = i
		}
	}
	if usernameCol < 0 || fromCol < 0 || toCol < 0 {
		return nil, 0, errors.New("CSV must have headers: username,from_ticket,to_ticket")
	}

	var ranges []models.TicketRange
	total := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("malformed CSV row: %v", err)
		}
		from, err := strconv.Atoi(strings.TrimSpace(field(row, fromCol)))
		if err != nil {
			return nil, 0, errors.New("from_ticket/to_ticket must be integers")
		}
		to, err := strconv.Atoi(strings.TrimSpace(field(row, toCol)))
		if err != nil {
			return nil, 0, errors.New("from_ticket/to_ticket must be integers")
		}
		if from < 1 || to < from {
			return nil, 0, errors.New("invalid ticket range (from_ticket must be >= 1 and <= to_ticket)")
		}
		ranges = append(ranges, models.TicketRange{
			Username: field(row, usernameCol),
			From:     from,
			To:       to,
		})
		if to > total {
			total = to
		}
	}
	if total <= 0 || len(ranges) == 0 {
		return nil, 0, ErrZeroTickets
	}
	if err := ValidateRanges(ranges); err != nil {
		return nil, 0, err
	}
	return ranges, total, nil
}

// ValidateRanges checks that externally supplied ranges start at 1 and are
// contiguous and non-overlapping in row order. Ranges derived from ticket
// counts hold this by construction; supplied ranges must prove it before
// they feed the selector.
func ValidateRanges(ranges []models.TicketRange) error {
	cursor := 1
	for _, r := range ranges {
		if r.From != cursor {
			return fmt.Errorf("ticket ranges are not contiguous: expected from_ticket %d for %s, got %d",
				cursor, r.Username, r.From)
		}
		cursor = r.To + 1
	}
	return nil
}
