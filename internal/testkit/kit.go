package testkit

import (
	"math"
	"math/rand"

	"outcomelab/domain/core"
	"outcomelab/domain/table"
)

// CohortOption tweaks the synthetic cohort generator
type CohortOption func(*cohortConfig)

type cohortConfig struct {
	missingFraction float64
}

// WithMissing sprinkles the given fraction of missing cells into the
// predictor columns
func WithMissing(fraction float64) CohortOption {
	return func(c *cohortConfig) { c.missingFraction = fraction }
}

// GenerateCohort builds a synthetic binary-outcome dataset with a known
// dependency structure: the outcome depends strongly on age and smoker,
// weakly on dose, and not at all on noise. Column order is fixed so tests can
// rely on it.
func GenerateCohort(n int, seed int64, opts ...CohortOption) *table.Table {
	cfg := cohortConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	rng := rand.New(rand.NewSource(seed))

	age := make([]float64, n)
	dose := make([]float64, n)
	noise := make([]float64, n)
	smoker := make([]string, n)
	region := make([]string, n)
	outcome := make([]string, n)

	regions := []string{"east", "north", "south"}

	for i := 0; i < n; i++ {
		age[i] = 35 + 18*rng.NormFloat64()
		dose[i] = 5 + 2*rng.Float64()*10
		noise[i] = rng.NormFloat64()
		if rng.Float64() < 0.35 {
			smoker[i] = "yes"
		} else {
			smoker[i] = "no"
		}
		region[i] = regions[rng.Intn(len(regions))]

		logit := -4.0 + 0.09*age[i] - 0.08*dose[i]
		if smoker[i] == "yes" {
			logit += 1.4
		}
		p := 1 / (1 + math.Exp(-logit))
		if rng.Float64() < p {
			outcome[i] = "yes"
		} else {
			outcome[i] = "no"
		}
	}

	if cfg.missingFraction > 0 {
		for i := 0; i < n; i++ {
			if rng.Float64() < cfg.missingFraction {
				age[i] = math.NaN()
			}
			if rng.Float64() < cfg.missingFraction {
				smoker[i] = ""
			}
		}
	}

	tbl := table.New(n)
	_ = tbl.AddNumeric(core.ColumnKey("age"), age)
	_ = tbl.AddNumeric(core.ColumnKey("dose"), dose)
	_ = tbl.AddCategorical(core.ColumnKey("smoker"), smoker)
	_ = tbl.AddCategorical(core.ColumnKey("region"), region)
	_ = tbl.AddNumeric(core.ColumnKey("noise"), noise)
	_ = tbl.AddCategorical(core.ColumnKey("outcome"), outcome)
	return tbl
}
