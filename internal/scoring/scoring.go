// Package scoring computes the 0-1000 risk score an analyst assigns to a
// finished investigation. Each product line rates a fixed set of factors
// from 0 to 100; the final score is the weighted sum scaled by ten.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/vdmx/riskintel/internal/catalog"
)

var (
	ErrUnknownCategory  = errors.New("unknown_scoring_category")
	ErrUnknownFactor    = errors.New("unknown_scoring_factor")
	ErrRatingOutOfRange = errors.New("rating_out_of_range")
)

// Factor is one rated dimension of an investigation.
type Factor struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

var automotiveFactors = []Factor{
	{ID: "credit", Name: "Estatus Crediticio (TransUnion)", Weight: 0.20},
	{ID: "pawn", Name: "Empeños / Gravámenes", Weight: 0.20},
	{ID: "theft", Name: "Historial de Robo / Choques", Weight: 0.15},
	{ID: "docs", Name: "Integridad Documental", Weight: 0.20},
	{ID: "vin", Name: "Coherencia VIN / Datos", Weight: 0.15},
	{ID: "seller", Name: "Perfil del Vendedor", Weight: 0.10},
}

var leasingFactors = []Factor{
	{ID: "identity", Name: "Verificación de Identidad", Weight: 0.20},
	{ID: "docs", Name: "Integridad Documental", Weight: 0.20},
	{ID: "solvency", Name: "Solvencia / Ingresos", Weight: 0.25},
	{ID: "bureau", Name: "Buró de Crédito", Weight: 0.20},
	{ID: "digital", Name: "Riesgo Digital (Tel/Email)", Weight: 0.10},
	{ID: "coherence", Name: "Coherencia General", Weight: 0.05},
}

// Factors returns the rating sheet for a product line.
func Factors(cat catalog.Category) ([]Factor, error) {
	switch cat {
	case catalog.CategoryAutomotive:
		return automotiveFactors, nil
	case catalog.CategoryLeasing:
		return leasingFactors, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
	}
}

// Score folds per-factor ratings (0-100) into the final 0-1000 score.
// Unrated factors count as zero; a rating for a factor the category does
// not define is rejected rather than silently dropped.
func Score(cat catalog.Category, ratings map[string]int) (int, error) {
	factors, err := Factors(cat)
	if err != nil {
		return 0, err
	}

	known := make(map[string]float64, len(factors))
	for _, f := range factors {
		known[f.ID] = f.Weight
	}
	for id, val := range ratings {
		if _, ok := known[id]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownFactor, id)
		}
		if val < 0 || val > 100 {
			return 0, fmt.Errorf("%w: %s=%d", ErrRatingOutOfRange, id, val)
		}
	}

	var total float64
	for _, f := range factors {
		total += float64(ratings[f.ID]) * f.Weight
	}
	return int(math.Round(total * 10)), nil
}

// Band labels a score the way reports present it.
func Band(score int) string {
	switch {
	case score >= 700:
		return "APROBADO"
	case score >= 350:
		return "RIESGO"
	default:
		return "RIESGO ALTO"
	}
}
