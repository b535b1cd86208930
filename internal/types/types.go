package types

import "time"

// TrackingRecord holds the per-token reversal tracking state.
type TrackingRecord struct {
	TargetPercent float64   `json:"target_percent"`
	LocalBottom   float64   `json:"local_bottom"`
	AddedAt       time.Time `json:"added_at"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
}

// TrackedToken pairs a contract address with its tracking record.
type TrackedToken struct {
	Address string
	Record  TrackingRecord
}

// Quote is a single price snapshot for a token.
type Quote struct {
	Price  float64
	Name   string
	Symbol string
}

// ReversalAlert describes a fired reversal for delivery and auditing.
type ReversalAlert struct {
	Address     string
	Symbol      string
	Name        string
	PercentGain float64
	Price       float64
	LocalBottom float64
	FiredAt     time.Time
}
