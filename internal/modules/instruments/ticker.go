package instruments

import (
	"fmt"
	"time"
)

// monthCodes is the exchange month-code table (Jan=F .. Dec=Z, skipping I).
var monthCodes = [12]byte{'F', 'G', 'H', 'J', 'K', 'M', 'N', 'Q', 'U', 'V', 'X', 'Z'}

// liquidRateMonths are the quarter months with liquid rate-future expiries.
var liquidRateMonths = [4]int{1, 4, 7, 10}

// MonthCode returns the exchange month code for a calendar month (1-12).
func MonthCode(month int) byte {
	if month < 1 || month > 12 {
		return '?'
	}
	return monthCodes[month-1]
}

// Ticker builds an exchange ticker string: {type}{monthCode}{2-digit year}.
//
//	Ticker(TypeDI1, 2027, 1) == "DI1F27"
//	Ticker(TypeWDO, 2026, 3) == "WDOH26"
func Ticker(t ContractType, year, month int) string {
	return fmt.Sprintf("%s%c%02d", t, MonthCode(month), year%100)
}

// ResolveRateTicker resolves the nearest liquid rate-future ticker for a
// tenor from the reference date. The target month snaps to the nearest
// liquid quarter month (Jan/Apr/Jul/Oct); when the snapped month has
// already passed in the target year, the expiry rolls to the next year.
func ResolveRateTicker(t ContractType, tenorYears float64, ref time.Time) string {
	target := ref.AddDate(0, int(tenorYears*12), 0)
	year, month := target.Year(), int(target.Month())

	snapped := snapToLiquidMonth(month)
	if year == ref.Year() && snapped <= int(ref.Month()) {
		year++
	}

	return Ticker(t, year, snapped)
}

// ResolveFXTicker resolves the front-month FX future ticker: FX futures
// always trade the very next calendar month.
func ResolveFXTicker(t ContractType, ref time.Time) string {
	next := ref.AddDate(0, 1, 0)
	return Ticker(t, next.Year(), int(next.Month()))
}

// snapToLiquidMonth returns the liquid quarter month closest to the given
// calendar month. Ties snap forward.
func snapToLiquidMonth(month int) int {
	best := liquidRateMonths[0]
	bestDist := 12
	for _, m := range liquidRateMonths {
		dist := month - m
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist || (dist == bestDist && m > best) {
			best = m
			bestDist = dist
		}
	}
	return best
}
