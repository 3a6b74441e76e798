package entities

import (
	"encoding/hex"
	"fmt"
	"time"
)

// DrawKind distinguishes reward-table draws from fixed-probability chance draws
type DrawKind string

const (
	DrawKindTable  DrawKind = "table"
	DrawKindChance DrawKind = "chance"
)

// Chance draw outcomes
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
)

// DrawRecord is the immutable evidence of one random draw
type DrawRecord struct {
	ID                int64     `db:"id" json:"id"`
	AccountID         int64     `db:"account_id" json:"account_id"`
	TableID           *int64    `db:"table_id" json:"table_id,omitempty"`
	TableKey          string    `db:"table_key" json:"table_key"`
	TableVersion      int       `db:"table_version" json:"table_version"`
	Kind              DrawKind  `db:"kind" json:"kind"`
	Seed              string    `db:"seed" json:"seed"`
	TotalWeight       int64     `db:"total_weight" json:"total_weight"`
	RawDrawValue      int64     `db:"raw_draw_value" json:"raw_draw_value"`
	ResolvedIndex     int       `db:"resolved_index" json:"resolved_index"`
	ResolvedOutcomeID string    `db:"resolved_outcome_id" json:"resolved_outcome_id"`
	WinThreshold      *int64    `db:"win_threshold" json:"win_threshold,omitempty"` // chance draws only
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// SeedBytes decodes the hex seed
func (d *DrawRecord) SeedBytes() ([]byte, error) {
	seed, err := hex.DecodeString(d.Seed)
	if err != nil {
		return nil, fmt.Errorf("draw %d has malformed seed: %w", d.ID, err)
	}
	return seed, nil
}

// Won reports whether a chance draw was a win
func (d *DrawRecord) Won() bool {
	return d.Kind == DrawKindChance && d.ResolvedOutcomeID == OutcomeWin
}

// DrawVerification is the result of recomputing a draw from its seed
type DrawVerification struct {
	Record   *DrawRecord `json:"record"`
	Verified bool        `json:"verified"`
	Reason   string      `json:"reason,omitempty"`
}
