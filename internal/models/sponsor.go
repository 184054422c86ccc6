package models

import "time"

// SponsorTier ranks sponsor prominence on the public site.
type SponsorTier string

const (
	SponsorTierPlatinum SponsorTier = "platinum"
	SponsorTierGold     SponsorTier = "gold"
	SponsorTierSilver   SponsorTier = "silver"
)

// Sponsor is a partner organisation displayed on the marketing pages.
type Sponsor struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Tier      SponsorTier `db:"tier" json:"tier"`
	Website   string      `db:"website" json:"website,omitempty"`
	LogoPath  string      `db:"logo_path" json:"-"`
	LogoURL   string      `db:"logo_url" json:"logo_url,omitempty"`
	Active    bool        `db:"active" json:"active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
