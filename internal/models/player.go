package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PlayerRecord is the canonical player entity. The JSON field order here
// defines the on-disk field order of the canonical store file.
type PlayerRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Team           string    `json:"team"`
	Position       string    `json:"position"`
	Price          int       `json:"price"`
	BreakEven      int       `json:"breakEven"`
	AveragePoints  float64   `json:"averagePoints"`
	ScoreHistory   []float64 `json:"scoreHistory,omitempty"`
	L3Average      float64   `json:"l3Average,omitempty"`
	ProjectedScore float64   `json:"projectedScore,omitempty"`
	PricePerPoint  float64   `json:"pricePerPoint,omitempty"`
	Category       string    `json:"category,omitempty"`
}

// Price categories used by the front end to bucket players.
const (
	CategoryPremium = "premium"
	CategoryMid     = "mid-price"
	CategoryRookie  = "rookie"
)

// NewPlayerRecord builds a record with a fresh stable ID and derived
// fields computed from the inputs. Derived fields are computed once at
// ingestion and never recomputed afterwards.
func NewPlayerRecord(name, team, position string, price, breakEven int, avg float64, history []float64) PlayerRecord {
	rec := PlayerRecord{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(name),
		Team:          ResolveTeam(team),
		Position:      NormalizePosition(position),
		Price:         price,
		BreakEven:     breakEven,
		AveragePoints: avg,
		ScoreHistory:  history,
	}
	rec.computeDerived()
	return rec
}

func (r *PlayerRecord) computeDerived() {
	r.L3Average = lastNAverage(r.ScoreHistory, 3)
	if r.L3Average > 0 {
		r.ProjectedScore = (r.L3Average + r.AveragePoints) / 2
	} else {
		r.ProjectedScore = r.AveragePoints
	}
	if r.AveragePoints > 0 {
		r.PricePerPoint = float64(r.Price) / r.AveragePoints
	}
	switch {
	case r.Price >= 600000:
		r.Category = CategoryPremium
	case r.Price >= 350000:
		r.Category = CategoryMid
	default:
		r.Category = CategoryRookie
	}
}

func lastNAverage(scores []float64, n int) float64 {
	if len(scores) == 0 {
		return 0
	}
	if len(scores) > n {
		scores = scores[len(scores)-n:]
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Validate reports whether the record is usable. Records without a name
// are rejected outright; an unrecognized team is not an error because
// "Unknown" is a valid placeholder pending enrichment.
func (r *PlayerRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("player record missing name")
	}
	if r.Price < 0 {
		return fmt.Errorf("player %q has negative price %d", r.Name, r.Price)
	}
	return nil
}

// NormalizePosition folds free-form position strings into the short
// code form, compound positions joined by "/". Unknown tokens pass
// through uppercased so they stay visible in the data.
func NormalizePosition(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ',' || r == '-'
	})
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		code := positionCode(strings.TrimSpace(p))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return strings.Join(codes, "/")
}

func positionCode(token string) string {
	switch strings.ToUpper(token) {
	case "DEF", "DEFENDER", "BACK":
		return "DEF"
	case "MID", "MIDFIELD", "MIDFIELDER", "CENTRE":
		return "MID"
	case "FWD", "FOR", "FORWARD":
		return "FWD"
	case "RUC", "RUCK", "RUCKMAN":
		return "RUC"
	case "":
		return ""
	default:
		return strings.ToUpper(token)
	}
}
