package billing

import (
	"math"
	"time"

	"autodeel/models"
)

// DailyCapHours is the maximum number of billable hours per calendar day.
// Hours beyond the cap are dropped; a member is never charged more than this
// per day regardless of how long the car was reserved or used.
const DailyCapHours = 10.0

// Bucket labels used in cost breakdowns.
const (
	BucketEffective     = "effective usage"
	BucketStartReserved = "unused reservation before pickup"
	BucketEndReserved   = "unused reservation after return"
)

// CostLine is one charged period in a time cost breakdown.
type CostLine struct {
	Day    time.Time
	Bucket string
	Hours  float64
	Rate   float64
	Amount float64
}

// KilometerCosts returns the distance portion of a reservation's charge.
// No cap applies.
func KilometerCosts(kilometers float64, scheme models.PriceScheme) float64 {
	return kilometers * scheme.CostsPerKilometer
}

// TimeCosts returns the time portion of a reservation's charge.
//
// The union of the planned and effective windows is partitioned into calendar
// days (midnight to midnight, in the timestamps' location). Per day, three
// disjoint hour buckets are clipped to the day: effective usage, unused
// reserved hours before pickup, and unused reserved hours after return. The
// daily cap consumes the buckets in that strict priority order; excess hours
// are not charged. Days are independent, no cross-day pooling.
//
// Callers must guarantee reservedStart < reservedEnd and
// effectiveStart < effectiveEnd; the engine does not re-validate.
func TimeCosts(reservedStart, reservedEnd, effectiveStart, effectiveEnd time.Time, scheme models.PriceScheme) float64 {
	lines := TimeCostLines(reservedStart, reservedEnd, effectiveStart, effectiveEnd, scheme)
	total := 0.0
	for _, line := range lines {
		total += line.Amount
	}
	return total
}

// TimeCostLines returns the per-day, per-bucket charged periods that make up
// TimeCosts. Summing the line amounts yields exactly the TimeCosts result.
func TimeCostLines(reservedStart, reservedEnd, effectiveStart, effectiveEnd time.Time, scheme models.PriceScheme) []CostLine {
	unionStart := minTime(reservedStart, effectiveStart)
	unionEnd := maxTime(reservedEnd, effectiveEnd)

	var lines []CostLine
	for day := startOfDay(unionStart); day.Before(unionEnd); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)

		effective := overlapHours(effectiveStart, effectiveEnd, day, dayEnd)

		// Early pickup and late return hours live inside the effective
		// bucket; the reserved buckets only exist when the effective window
		// starts after (ends before) the planned one.
		startReserved := 0.0
		if !effectiveStart.Before(reservedStart) {
			startReserved = overlapHours(reservedStart, effectiveStart, day, dayEnd)
		}
		endReserved := 0.0
		if !effectiveEnd.After(reservedEnd) {
			endReserved = overlapHours(effectiveEnd, reservedEnd, day, dayEnd)
		}

		budget := DailyCapHours

		charged := math.Min(effective, budget)
		if charged > 0 {
			lines = append(lines, CostLine{
				Day:    day,
				Bucket: BucketEffective,
				Hours:  charged,
				Rate:   scheme.CostsPerEffectiveHour,
				Amount: charged * scheme.CostsPerEffectiveHour,
			})
		}
		budget -= charged

		charged = math.Min(startReserved, budget)
		if charged > 0 {
			lines = append(lines, CostLine{
				Day:    day,
				Bucket: BucketStartReserved,
				Hours:  charged,
				Rate:   scheme.CostsPerUnusedReservedHourStart,
				Amount: charged * scheme.CostsPerUnusedReservedHourStart,
			})
		}
		budget -= charged

		charged = math.Min(endReserved, budget)
		if charged > 0 {
			lines = append(lines, CostLine{
				Day:    day,
				Bucket: BucketEndReserved,
				Hours:  charged,
				Rate:   scheme.CostsPerUnusedReservedHourEnd,
				Amount: charged * scheme.CostsPerUnusedReservedHourEnd,
			})
		}
	}
	return lines
}

// TotalCosts combines the kilometer and time portions, rounded to whole
// cents. Rounding happens once here, never per component.
func TotalCosts(reservedStart, reservedEnd, effectiveStart, effectiveEnd time.Time, kilometers float64, scheme models.PriceScheme) float64 {
	return Round2(KilometerCosts(kilometers, scheme) + TimeCosts(reservedStart, reservedEnd, effectiveStart, effectiveEnd, scheme))
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// overlapHours returns the length in hours of the overlap of [aStart, aEnd)
// and [bStart, bEnd), or zero when they do not intersect.
func overlapHours(aStart, aEnd, bStart, bEnd time.Time) float64 {
	start := maxTime(aStart, bStart)
	end := minTime(aEnd, bEnd)
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start).Hours()
}

// startOfDay returns midnight of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
