package models

import (
	"time"

	"github.com/lib/pq"
)

// CommitteeLevel indicates the experience level a committee targets.
type CommitteeLevel string

const (
	CommitteeLevelBeginner     CommitteeLevel = "beginner"
	CommitteeLevelIntermediate CommitteeLevel = "intermediate"
	CommitteeLevelAdvanced     CommitteeLevel = "advanced"
)

// Committee is a simulated body delegates can register for. SeatNames holds
// the individual delegate slots; the wizard exposes them as composite
// "{committee} - {seat}" labels.
type Committee struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Topic       string         `db:"topic" json:"topic"`
	Description string         `db:"description" json:"description,omitempty"`
	Level       CommitteeLevel `db:"level" json:"level"`
	SeatNames   pq.StringArray `db:"seat_names" json:"seat_names"`
	Open        bool           `db:"open" json:"open"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// SeatLabels expands the committee's seats into composite labels.
func (c Committee) SeatLabels() []string {
	labels := make([]string, 0, len(c.SeatNames))
	for _, seat := range c.SeatNames {
		labels = append(labels, c.Name+" - "+seat)
	}
	return labels
}

// CommitteeFilter captures listing criteria.
type CommitteeFilter struct {
	Open   *bool
	Level  CommitteeLevel
	Search string
}
