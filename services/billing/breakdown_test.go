package billing

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var euroAmount = regexp.MustCompile(`= €(\d+\.\d{2})`)

// sumOfDisplayedAmounts extracts the per-line euro amounts from a rendered
// breakdown and sums them.
func sumOfDisplayedAmounts(t *testing.T, breakdown string) float64 {
	t.Helper()
	sum := 0.0
	for _, line := range strings.Split(breakdown, "\n") {
		m := euroAmount.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		sum += v
	}
	return sum
}

func TestTimeCostsBreakdown_SumsMatchNumericResult(t *testing.T) {
	tests := []struct {
		name     string
		resStart time.Time
		resEnd   time.Time
		effStart time.Time
		effEnd   time.Time
	}{
		{
			name:     "single day on-time pickup and return",
			resStart: at("2025-09-03", 9, 0),
			resEnd:   at("2025-09-03", 17, 0),
			effStart: at("2025-09-03", 9, 0),
			effEnd:   at("2025-09-03", 17, 0),
		},
		{
			name:     "single day late pickup early return",
			resStart: at("2025-09-03", 8, 0),
			resEnd:   at("2025-09-03", 18, 0),
			effStart: at("2025-09-03", 9, 0),
			effEnd:   at("2025-09-03", 17, 0),
		},
		{
			name:     "spanning exactly two days",
			resStart: at("2025-09-03", 20, 0),
			resEnd:   at("2025-09-04", 8, 0),
			effStart: at("2025-09-03", 21, 0),
			effEnd:   at("2025-09-04", 7, 0),
		},
		{
			name:     "effective usage alone exceeds the cap",
			resStart: at("2025-09-03", 6, 0),
			resEnd:   at("2025-09-03", 19, 0),
			effStart: at("2025-09-03", 7, 0),
			effEnd:   at("2025-09-03", 18, 30),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			numeric := TimeCosts(tt.resStart, tt.resEnd, tt.effStart, tt.effEnd, testScheme)
			breakdown := TimeCostsBreakdown(tt.resStart, tt.resEnd, tt.effStart, tt.effEnd, testScheme)
			assert.InDelta(t, numeric, sumOfDisplayedAmounts(t, breakdown), 0.005)
		})
	}
}

func TestTimeCostsBreakdown_CapZeroesEndReservedBucket(t *testing.T) {
	// 11.5h effective usage fills the whole budget: the unused end-of-trip
	// hours must not appear as a charged line.
	resStart := at("2025-09-03", 6, 0)
	resEnd := at("2025-09-03", 19, 0)
	effStart := at("2025-09-03", 7, 0)
	effEnd := at("2025-09-03", 18, 30)

	breakdown := TimeCostsBreakdown(resStart, resEnd, effStart, effEnd, testScheme)
	assert.Contains(t, breakdown, BucketEffective)
	assert.NotContains(t, breakdown, BucketStartReserved)
	assert.NotContains(t, breakdown, BucketEndReserved)
}

func TestTimeCostsBreakdown_NoBillableHours(t *testing.T) {
	// Degenerate equal windows of zero length never happen upstream, but a
	// breakdown with no charged lines still renders something sensible.
	start := at("2025-09-03", 9, 0)
	breakdown := TimeCostsBreakdown(start, start, start, start, testScheme)
	assert.Equal(t, "no billable hours", breakdown)
}

func TestKilometerCostsBreakdown(t *testing.T) {
	got := KilometerCostsBreakdown(40, testScheme)
	assert.Equal(t, "40.0 km × €0.25/km = €10.00", got)
}
