package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

// ValidationResult accumulates the outcome of validating a proposed seat
// assignment. Warnings never affect validity.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// IsValid reports whether the proposal can be processed.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateAssignment checks a proposed seat list against a registration's
// constraints. All checks run and accumulate; nothing short-circuits, so the
// caller sees the full error and warning set in one pass. An empty proposal
// is valid-but-empty: it trips no check and no warning.
func ValidateAssignment(reg *models.Registration, proposedSeats []string) ValidationResult {
	var result ValidationResult

	if len(proposedSeats) > reg.Seats {
		result.Errors = append(result.Errors,
			fmt.Sprintf("cannot assign %d seats, the registration covers %d", len(proposedSeats), reg.Seats))
	}

	unique := make(map[string]struct{}, len(proposedSeats))
	for _, seat := range proposedSeats {
		unique[seat] = struct{}{}
	}
	if len(unique) != len(proposedSeats) {
		result.Errors = append(result.Errors, "duplicate seats detected")
	}

	eligible := make(map[string]struct{}, len(reg.SeatsRequested)+len(reg.BackupSeatsRequested))
	for _, seat := range reg.SeatsRequested {
		eligible[seat] = struct{}{}
	}
	if reg.RequiresBackup {
		for _, seat := range reg.BackupSeatsRequested {
			eligible[seat] = struct{}{}
		}
	}
	var invalid []string
	for _, seat := range proposedSeats {
		if _, ok := eligible[seat]; !ok {
			invalid = append(invalid, seat)
		}
	}
	if len(invalid) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("seats outside the requested pools: %s", strings.Join(invalid, ", ")))
	}

	if len(proposedSeats) > 0 && len(proposedSeats) < reg.Seats {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("partial assignment: %d of %d requested seats", len(proposedSeats), reg.Seats))
	}

	if len(proposedSeats) > 0 {
		primary := make(map[string]struct{}, len(reg.SeatsRequested))
		for _, seat := range reg.SeatsRequested {
			primary[seat] = struct{}{}
		}
		backupOnly := true
		for _, seat := range proposedSeats {
			if _, ok := primary[seat]; ok {
				backupOnly = false
				break
			}
		}
		if backupOnly {
			result.Warnings = append(result.Warnings, "all assigned seats come from the backup list")
		}
	}

	return result
}

// AssignmentProgress computes the rounded completion percentage and whether
// the assignment fills every requested seat.
func AssignmentProgress(assigned, seats int) (int, bool) {
	if seats <= 0 {
		return 0, false
	}
	pct := int(math.Round(float64(assigned) / float64(seats) * 100))
	return pct, assigned == seats
}
