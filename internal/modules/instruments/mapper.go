package instruments

import "time"

// Mapping binds a model instrument class to a concrete exchange contract
// with an assumed tenor and modified duration. Mappings are recomputed
// per request from the reference date; the duration values are fixed
// assumptions per tenor bucket, not market-implied.
type Mapping struct {
	Class      Class
	Type       ContractType
	Ticker     string
	TenorYears float64
	Duration   float64 // Assumed modified duration
}

// classBinding is the static part of a mapping (everything except the
// date-dependent ticker).
type classBinding struct {
	tenorYears float64
	duration   float64
	rateType   ContractType // Zero for FX (contract chosen by preference)
}

var bindings = [NumClasses]classBinding{
	ClassFX:     {tenorYears: 0, duration: 0},
	ClassFront:  {tenorYears: 1, duration: 0.95, rateType: TypeDI1},
	ClassBelly:  {tenorYears: 5, duration: 3.8, rateType: TypeDI1},
	ClassLong:   {tenorYears: 10, duration: 6.5, rateType: TypeDI1},
	ClassHard:   {tenorYears: 5, duration: 4.2, rateType: TypeDDI},
	ClassLinker: {tenorYears: 10, duration: 7.0, rateType: TypeNTNB},
}

// Map resolves the exchange contract mapping for one model instrument
// class. fxPreference selects between the full-size (DOL) and mini (WDO)
// FX contract and is ignored for non-FX classes.
func Map(c Class, fxPreference ContractType, ref time.Time) Mapping {
	b := bindings[c]

	if c == ClassFX {
		contract := fxPreference
		if contract != TypeDOL && contract != TypeWDO {
			contract = TypeWDO
		}
		return Mapping{
			Class:  c,
			Type:   contract,
			Ticker: ResolveFXTicker(contract, ref),
		}
	}

	return Mapping{
		Class:      c,
		Type:       b.rateType,
		Ticker:     ResolveRateTicker(b.rateType, b.tenorYears, ref),
		TenorYears: b.tenorYears,
		Duration:   b.duration,
	}
}

// MapAll resolves mappings for every model instrument class in canonical order.
func MapAll(fxPreference ContractType, ref time.Time) []Mapping {
	mappings := make([]Mapping, 0, NumClasses)
	for _, c := range Classes() {
		mappings = append(mappings, Map(c, fxPreference, ref))
	}
	return mappings
}

// TenorBucket returns the display tenor bucket for a class ("1y", "5y",
// "10y") or an empty string for FX.
func TenorBucket(c Class) string {
	switch bindings[c].tenorYears {
	case 1:
		return "1y"
	case 5:
		return "5y"
	case 10:
		return "10y"
	}
	return ""
}
