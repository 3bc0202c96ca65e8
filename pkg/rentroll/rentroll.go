// Package rentroll turns a lease schedule into an annual revenue schedule
// aligned to the analysis years of a pro forma.
package rentroll

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/datetime"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// ErrInvalidLease is returned when a lease cannot be placed on the calendar.
var ErrInvalidLease = errors.New("invalid lease")

// openEnded marks a lease without an expiration month.
const openEnded = math.MaxInt32

// Lease is one suite or tenant in the rent roll. A zero AnnualRent marks a
// vacant or speculative suite that is leased up at market.
type Lease struct {
	Unit          string  `json:"unit" yaml:"unit" mapstructure:"unit"`
	Tenant        string  `json:"tenant" yaml:"tenant" mapstructure:"tenant"`
	SquareFeet    float64 `json:"squareFeet" yaml:"squareFeet" mapstructure:"square_feet" validate:"gte=0"`
	StartDate     string  `json:"startDate" yaml:"startDate" mapstructure:"start_date" validate:"required"`
	EndDate       string  `json:"endDate,omitempty" yaml:"endDate,omitempty" mapstructure:"end_date"`
	AnnualRent    float64 `json:"annualRent" yaml:"annualRent" mapstructure:"annual_rent" validate:"gte=0"`
	EscalationPct float64 `json:"escalationPct" yaml:"escalationPct" mapstructure:"escalation_pct" validate:"gte=0,lte=1"`
}

// Options aligns the lease calendar with the analysis period.
type Options struct {
	HoldYears int
	// AnalysisStart is the first month of analysis year 1 (YYYY-MM). When
	// empty the earliest lease start is used.
	AnalysisStart    string
	MarketRentPerSf  float64
	MarketVacancyPct float64
}

// LeaseSummary is the per-lease detail reported alongside the schedule.
type LeaseSummary struct {
	Unit           string  `json:"unit" yaml:"unit"`
	Tenant         string  `json:"tenant" yaml:"tenant"`
	SquareFeet     float64 `json:"squareFeet" yaml:"squareFeet"`
	StartDate      string  `json:"startDate" yaml:"startDate"`
	EndDate        string  `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Vacant         bool    `json:"vacant" yaml:"vacant"`
	YearOneRevenue float64 `json:"yearOneRevenue" yaml:"yearOneRevenue"`
	RemainingYears float64 `json:"remainingYears" yaml:"remainingYears"`
}

// RentRoll is the aggregated lease revenue.
type RentRoll struct {
	HasLeases                bool           `json:"hasLeases" yaml:"hasLeases"`
	AnalysisStart            string         `json:"analysisStart,omitempty" yaml:"analysisStart,omitempty"`
	YearOneRevenue           float64        `json:"yearOneRevenue" yaml:"yearOneRevenue"`
	AnnualSchedule           []float64      `json:"annualSchedule" yaml:"annualSchedule"`
	WeightedAverageLeaseTerm float64        `json:"weightedAverageLeaseTerm" yaml:"weightedAverageLeaseTerm"`
	LeasedSf                 float64        `json:"leasedSf" yaml:"leasedSf"`
	Detail                   []LeaseSummary `json:"detail" yaml:"detail"`
}

// RevenueForYear returns the scheduled revenue for a 1-based analysis year.
// Years past the end of the schedule repeat the final figure.
func (r RentRoll) RevenueForYear(year int) float64 {
	if len(r.AnnualSchedule) == 0 || year < 1 {
		return 0
	}
	if year > len(r.AnnualSchedule) {
		return r.AnnualSchedule[len(r.AnnualSchedule)-1]
	}
	return r.AnnualSchedule[year-1]
}

// Rounded returns a copy with currency and ratio fields rounded for
// reporting.
func (r RentRoll) Rounded() RentRoll {
	out := r
	out.YearOneRevenue = mathutil.RoundCurrency(r.YearOneRevenue)
	out.WeightedAverageLeaseTerm = mathutil.RoundRatio(r.WeightedAverageLeaseTerm)
	out.LeasedSf = mathutil.RoundCurrency(r.LeasedSf)
	out.AnnualSchedule = make([]float64, len(r.AnnualSchedule))
	for i, v := range r.AnnualSchedule {
		out.AnnualSchedule[i] = mathutil.RoundCurrency(v)
	}
	out.Detail = make([]LeaseSummary, len(r.Detail))
	for i, d := range r.Detail {
		d.YearOneRevenue = mathutil.RoundCurrency(d.YearOneRevenue)
		d.RemainingYears = mathutil.RoundRatio(d.RemainingYears)
		out.Detail[i] = d
	}
	return out
}

type placedLease struct {
	lease       Lease
	start       int
	end         int
	vacant      bool
	marketRent  float64
	monthlyRent float64
}

// rentForMonth returns the rent earned in absolute month m, zero when the
// lease is not active.
func (p placedLease) rentForMonth(m int) float64 {
	if m < p.start || m > p.end {
		return 0
	}
	if p.vacant {
		return p.marketRent / constants.MonthsPerYear
	}
	anniversaries := (m - p.start) / constants.MonthsPerYear
	return p.monthlyRent * mathutil.GrowthFactor(p.lease.EscalationPct, anniversaries)
}

func (p placedLease) activeBetween(from, to int) bool {
	return p.start <= to && p.end >= from
}

func place(lease Lease, opts Options) (placedLease, error) {
	start, err := datetime.MonthIndex(lease.StartDate)
	if err != nil {
		return placedLease{}, fmt.Errorf("%w: unit %q start: %v", ErrInvalidLease, lease.Unit, err)
	}
	end := openEnded
	if strings.TrimSpace(lease.EndDate) != "" {
		end, err = datetime.MonthIndex(lease.EndDate)
		if err != nil {
			return placedLease{}, fmt.Errorf("%w: unit %q end: %v", ErrInvalidLease, lease.Unit, err)
		}
		if end < start {
			return placedLease{}, fmt.Errorf("%w: unit %q ends %s before it starts %s", ErrInvalidLease, lease.Unit, lease.EndDate, lease.StartDate)
		}
	}
	if lease.SquareFeet < 0 || lease.AnnualRent < 0 {
		return placedLease{}, fmt.Errorf("%w: unit %q has negative area or rent", ErrInvalidLease, lease.Unit)
	}
	return placedLease{
		lease:       lease,
		start:       start,
		end:         end,
		vacant:      lease.AnnualRent == 0,
		marketRent:  lease.SquareFeet * opts.MarketRentPerSf * (1 - opts.MarketVacancyPct),
		monthlyRent: lease.AnnualRent / constants.MonthsPerYear,
	}, nil
}

// Aggregate builds the annual revenue schedule for the hold period. Revenue
// is accrued month by month so partial lease years and mid-year
// escalations land in the right analysis year. The schedule is computed
// through the last analysis year with an active lease and holds flat
// afterwards.
func Aggregate(leases []Lease, opts Options) (RentRoll, error) {
	if len(leases) == 0 {
		return RentRoll{AnnualSchedule: []float64{}, Detail: []LeaseSummary{}}, nil
	}
	holdYears := mathutil.ClampInt(opts.HoldYears, constants.MinHoldYears, constants.MaxHoldYears)

	placed := make([]placedLease, 0, len(leases))
	earliest := openEnded
	for _, lease := range leases {
		p, err := place(lease, opts)
		if err != nil {
			return RentRoll{}, err
		}
		if p.start < earliest {
			earliest = p.start
		}
		placed = append(placed, p)
	}

	analysisStart := earliest
	if strings.TrimSpace(opts.AnalysisStart) != "" {
		idx, err := datetime.MonthIndex(opts.AnalysisStart)
		if err != nil {
			return RentRoll{}, fmt.Errorf("analysis start: %w", err)
		}
		analysisStart = idx
	}

	lastActiveYear := 0
	for year := 1; year <= holdYears; year++ {
		from := analysisStart + (year-1)*constants.MonthsPerYear
		to := from + constants.MonthsPerYear - 1
		for _, p := range placed {
			if p.activeBetween(from, to) {
				lastActiveYear = year
				break
			}
		}
	}

	schedule := make([]float64, holdYears)
	detail := make([]LeaseSummary, len(placed))
	for i, p := range placed {
		detail[i] = LeaseSummary{
			Unit:       p.lease.Unit,
			Tenant:     p.lease.Tenant,
			SquareFeet: p.lease.SquareFeet,
			StartDate:  p.lease.StartDate,
			EndDate:    p.lease.EndDate,
			Vacant:     p.vacant,
		}
	}
	for year := 1; year <= lastActiveYear; year++ {
		from := analysisStart + (year-1)*constants.MonthsPerYear
		for i, p := range placed {
			yearRevenue := 0.0
			for m := from; m < from+constants.MonthsPerYear; m++ {
				yearRevenue += p.rentForMonth(m)
			}
			schedule[year-1] += yearRevenue
			if year == 1 {
				detail[i].YearOneRevenue = yearRevenue
			}
		}
	}
	for year := lastActiveYear + 1; year <= holdYears && lastActiveYear > 0; year++ {
		schedule[year-1] = schedule[lastActiveYear-1]
	}

	walt, leasedSf := leaseTerm(placed, detail, analysisStart, holdYears)

	return RentRoll{
		HasLeases:                true,
		AnalysisStart:            formatMonth(analysisStart),
		YearOneRevenue:           schedule[0],
		AnnualSchedule:           schedule,
		WeightedAverageLeaseTerm: walt,
		LeasedSf:                 leasedSf,
		Detail:                   detail,
	}, nil
}

// leaseTerm computes the rent-weighted average remaining lease term in years
// and fills RemainingYears on each detail row. Open-ended leases run to the
// end of the hold period.
func leaseTerm(placed []placedLease, detail []LeaseSummary, analysisStart, holdYears int) (float64, float64) {
	horizonEnd := analysisStart + holdYears*constants.MonthsPerYear - 1
	weighted, totalRent, simple, leasedSf := 0.0, 0.0, 0.0, 0.0
	for i, p := range placed {
		end := p.end
		if end == openEnded {
			end = horizonEnd
		}
		remaining := float64(end-analysisStart+1) / constants.MonthsPerYear
		if remaining < 0 {
			remaining = 0
		}
		detail[i].RemainingYears = remaining
		simple += remaining
		if p.vacant {
			continue
		}
		leasedSf += p.lease.SquareFeet
		weighted += remaining * p.lease.AnnualRent
		totalRent += p.lease.AnnualRent
	}
	if totalRent > 0 {
		return weighted / totalRent, leasedSf
	}
	return simple / float64(len(placed)), leasedSf
}

func formatMonth(index int) string {
	year := index / constants.MonthsPerYear
	month := index%constants.MonthsPerYear + 1
	return fmt.Sprintf("%04d-%02d", year, month)
}
