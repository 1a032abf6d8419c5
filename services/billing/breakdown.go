package billing

import (
	"fmt"
	"strings"
	"time"

	"autodeel/models"
)

// TimeCostsBreakdown renders the time cost calculation as a human-readable,
// line-per-charged-period breakdown. It mirrors the exact bucket, day and
// priority decomposition of TimeCosts: the displayed line amounts sum to the
// numeric result.
func TimeCostsBreakdown(reservedStart, reservedEnd, effectiveStart, effectiveEnd time.Time, scheme models.PriceScheme) string {
	lines := TimeCostLines(reservedStart, reservedEnd, effectiveStart, effectiveEnd, scheme)
	if len(lines) == 0 {
		return "no billable hours"
	}

	var b strings.Builder
	total := 0.0
	for _, line := range lines {
		fmt.Fprintf(&b, "%s: %s %s × %s/h = %s\n",
			line.Day.Format("Mon 02 Jan 2006"),
			formatHours(line.Hours),
			line.Bucket,
			formatEuro(line.Rate),
			formatEuro(line.Amount),
		)
		total += line.Amount
	}
	fmt.Fprintf(&b, "time costs: %s", formatEuro(total))
	return b.String()
}

// KilometerCostsBreakdown renders the distance cost calculation.
func KilometerCostsBreakdown(kilometers float64, scheme models.PriceScheme) string {
	return fmt.Sprintf("%.1f km × %s/km = %s",
		kilometers,
		formatEuro(scheme.CostsPerKilometer),
		formatEuro(KilometerCosts(kilometers, scheme)),
	)
}

func formatEuro(amount float64) string {
	return fmt.Sprintf("€%.2f", amount)
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%.2fh", hours)
}
