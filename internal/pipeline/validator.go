package pipeline

import (
	"salaryscope/internal/errors"
	"salaryscope/internal/types"
)

// Plausibility bounds for numeric repair. Salary ceiling is in annual
// local-currency terms; housing bounds are monthly.
const (
	salaryCeiling     = 500_000.0
	housingFloor      = 100.0
	housingCeiling    = 50_000.0
	growthPercentCut  = 2.0 // above this, growth was expressed as a percentage
	growthAbsCeiling  = 2.0
	percentScaleBound = 1.0 // rates above this are percentages, not decimals
)

// Validator applies a fixed, ordered set of invariant checks and
// numeric auto-corrections to a draft analysis. It is a pure function
// of the draft and idempotent: validating already-valid data changes
// nothing. Corrections are logged for observability only; they are
// never errors.
type Validator struct {
	logger *errors.Logger
}

// NewValidator creates a validator
func NewValidator(logger *errors.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate repairs the draft in rule order and returns the corrected
// analysis along with the names of the rules that fired.
func (v *Validator) Validate(draft types.CompensationAnalysis) (types.CompensationAnalysis, []string) {
	out := draft
	var corrections []string

	note := func(rule string) {
		corrections = append(corrections, rule)
	}

	// Rule 1: backfill a missing median from min/max.
	sr := &out.Compensation.SalaryRange
	if sr.Median == 0 {
		switch {
		case sr.Min > 0 && sr.Max > 0:
			sr.Median = (sr.Min + sr.Max) / 2
			note("median_backfill")
		case sr.Max > 0:
			sr.Median = sr.Max
			note("median_backfill")
		case sr.Min > 0:
			sr.Median = sr.Min
			note("median_backfill")
		}
	}

	// Rule 2: clamp implausible annual salaries and recompute median.
	if sr.Min > salaryCeiling || sr.Max > salaryCeiling {
		sr.Min = min(sr.Min, salaryCeiling)
		sr.Max = min(sr.Max, salaryCeiling)
		sr.Median = (sr.Min + sr.Max) / 2
		note("salary_ceiling_clamp")
	}

	// Keep the range ordered even when the model inverted it.
	if sr.Min > sr.Max {
		sr.Min, sr.Max = sr.Max, sr.Min
		note("range_reorder")
	}
	if sr.Median < sr.Min || sr.Median > sr.Max {
		if sr.Max > 0 {
			sr.Median = (sr.Min + sr.Max) / 2
			note("median_rebound")
		}
	}

	// Rule 3: backfill total compensation from the salary range.
	tc := &out.Compensation.TotalCompensation
	if tc.Base == 0 && sr.Median > 0 {
		tc.Base = sr.Median
		note("base_backfill")
	}
	if tc.Total == 0 || tc.Total < tc.Base {
		recomputed := tc.Base + tc.Bonus + tc.Equity + tc.Benefits
		if recomputed != tc.Total {
			tc.Total = recomputed
			note("total_recompute")
		}
	}

	// Rule 4: housing costs are monthly; de-scale obvious annual
	// figures, then clamp into a plausible band.
	loc := &out.Location
	if loc.HousingCosts > housingCeiling {
		descaled := loc.HousingCosts / 1000
		if descaled >= housingFloor && descaled <= housingCeiling {
			loc.HousingCosts = descaled
			note("housing_descale")
		} else {
			loc.HousingCosts = housingCeiling
			note("housing_clamp")
		}
	} else if loc.HousingCosts > 0 && loc.HousingCosts < housingFloor {
		loc.HousingCosts = housingFloor
		note("housing_clamp")
	}

	// Rule 5: tax rates are decimals; values above 1 were percentages.
	taxes := &loc.Taxes
	fixed := false
	for _, rate := range []*float64{&taxes.Federal, &taxes.State, &taxes.Local} {
		if *rate > percentScaleBound {
			*rate = *rate / 100
			fixed = true
		}
	}
	if fixed {
		note("tax_rescale")
	}
	if taxes.Total > percentScaleBound {
		taxes.Total = taxes.Total / 100
		note("tax_total_rescale")
	}
	if taxes.Total == 0 {
		sum := taxes.Federal + taxes.State + taxes.Local
		if sum > 0 {
			taxes.Total = sum
			note("tax_total_backfill")
		}
	}

	// Rule 6: market scores are 0-100; growth is a decimal rate with an
	// absolute ceiling for extreme cases.
	market := &out.Market
	if clamped := clamp(market.Demand, 0, 100); clamped != market.Demand {
		market.Demand = clamped
		note("demand_clamp")
	}
	if clamped := clamp(market.Competition, 0, 100); clamped != market.Competition {
		market.Competition = clamped
		note("competition_clamp")
	}
	if market.Growth > growthPercentCut {
		market.Growth = market.Growth / 100
		if market.Growth > growthAbsCeiling {
			market.Growth = growthAbsCeiling
		}
		note("growth_rescale")
	}

	if len(corrections) > 0 && v.logger != nil {
		v.logger.Info("Validator applied corrections",
			"corrections", corrections,
			"count", len(corrections))
	}

	return out, corrections
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
