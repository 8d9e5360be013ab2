package stats

import (
	"math"

	"outcomelab/domain/model"
)

// EffectStrength grades how convincing a single estimated effect is
type EffectStrength string

const (
	StrengthNegligible EffectStrength = "negligible"
	StrengthWeak       EffectStrength = "weak"
	StrengthModerate   EffectStrength = "moderate"
	StrengthStrong     EffectStrength = "strong"
)

// Effect is one model term translated to the odds-ratio scale with a Wald
// 95% interval. An interval that straddles 1 means the direction of the
// effect is not settled by the data.
type Effect struct {
	Name       string         `json:"name"`
	OddsRatio  float64        `json:"odds_ratio"`
	Lower      float64        `json:"lower"`
	Upper      float64        `json:"upper"`
	PValue     float64        `json:"p_value"`
	Strength   EffectStrength `json:"strength"`
	Convincing bool           `json:"convincing"` // interval excludes 1
}

// z975 is the standard normal 97.5% quantile
const z975 = 1.959963984540054

// EffectsFromTerms converts fitted logistic coefficients to odds ratios,
// skipping the intercept. Term order is preserved.
func EffectsFromTerms(terms []model.Term) []Effect {
	out := make([]Effect, 0, len(terms))
	for _, term := range terms {
		if term.Name == "(Intercept)" {
			continue
		}
		lower := math.Exp(term.Estimate - z975*term.StdErr)
		upper := math.Exp(term.Estimate + z975*term.StdErr)
		e := Effect{
			Name:       term.Name,
			OddsRatio:  math.Exp(term.Estimate),
			Lower:      lower,
			Upper:      upper,
			PValue:     term.PValue,
			Convincing: lower > 1 || upper < 1,
		}
		e.Strength = gradeEffect(e)
		out = append(out, e)
	}
	return out
}

// gradeEffect rates an effect by the distance of its odds ratio from 1,
// discounted to negligible when the interval cannot rule out no effect.
func gradeEffect(e Effect) EffectStrength {
	if !e.Convincing {
		return StrengthNegligible
	}
	or := e.OddsRatio
	if or < 1 {
		or = 1 / or
	}
	switch {
	case or >= 3:
		return StrengthStrong
	case or >= 1.5:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
