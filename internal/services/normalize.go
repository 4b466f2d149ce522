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

// ErrEmptyParticipantSet is returned when normalization finds no valid rows.
var ErrEmptyParticipantSet = errors.New("participants file has no rows")

// Normalize turns decoded participant text into a validated pool.
//
// Uniform distribution: one username per line, blank lines skipped, a
// literal "username" header on the first line tolerated, commas rejected.
// Weighted distribution: CSV with username,ticket_count headers.
// Usernames are trimmed, case preserved. Duplicates are fatal, never merged.
func Normalize(text string, dist models.TicketDistribution) (models.Pool, error) {
	var (
		pool models.Pool
		err  error
	)
	switch dist {
	case models.DistributionWeighted:
		pool, err = normalizeWeighted(text)
	case models.DistributionUniform:
		pool, err = normalizeUniform(text)
	default:
		return nil, fmt.Errorf("unknown ticket distribution: %s", dist)
	}
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyParticipantSet
	}
	return pool, nil
}

func normalizeUniform(text string) (models.Pool, error) {
	pool := make(models.Pool)
	firstLine := true
	for _, line := range strings.Split(text, "\n") {
		username := strings.TrimSpace(line)
		if username == "" {
			continue
		}
		if firstLine && username == "username" {
			firstLine = false
			continue
		}
		firstLine = false
		if strings.Contains(username, ",") {
			return nil, errors.New("uniform mode expects one username per line (no commas)")
		}
		if _, dup := pool[username]; dup {
			return nil, fmt.Errorf("duplicate username not allowed: %s", username)
		}
		pool[username] = 1
	}
	return pool, nil
}

func normalizeWeighted(text string) (models.Pool, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("CSV must have headers: username,ticket_count")
	}
	usernameCol, countCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "username":
			usernameCol = i
		case "ticket_count":
			countCol = i
		}
	}
	if usernameCol < 0 || countCol < 0 {
		return nil, errors.New("CSV must have headers: username,ticket_count")
	}

	pool := make(models.Pool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV row: %v", err)
		}
		username := strings.TrimSpace(field(row, usernameCol))
		if username == "" {
			return nil, errors.New("username cannot be empty")
		}
		rawCount := strings.TrimSpace(field(row, countCol))
		if rawCount == "" {
			return nil, fmt.Errorf("ticket_count is empty for %s", username)
		}
		count, err := strconv.Atoi(rawCount)
		if err != nil {
			return nil, fmt.Errorf("ticket_count must be an integer for %s", username)
		}
		if count < 1 {
			return nil, fmt.Errorf("ticket_count must be >= 1 for %s", username)
		}
		if _, dup := pool[username]; dup {
			return nil, fmt.Errorf("duplicate username not allowed: %s", username)
		}
		pool[username] = count
	}
	return pool, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
