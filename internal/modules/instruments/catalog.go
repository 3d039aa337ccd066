package instruments

// catalog is the static contract specification table. Values follow the
// B3 contract specs for the FX and rate complex; margin percentages are
// conservative exchange-level initial margin assumptions.
var catalog = map[ContractType]Spec{
	TypeDOL: {
		Type:         TypeDOL,
		ContractSize: 50_000, // USD
		Unit:         UnitUSD,
		TickSize:     0.5, // BRL per 1,000 USD
		TickValue:    25.0,
		MarginPct:    0.07,
	},
	TypeWDO: {
		Type:         TypeWDO,
		ContractSize: 10_000, // USD
		Unit:         UnitUSD,
		TickSize:     0.5,
		TickValue:    5.0,
		MarginPct:    0.07,
	},
	TypeDI1: {
		Type:         TypeDI1,
		ContractSize: 100_000, // BRL face value at maturity
		Unit:         UnitPrice,
		TickSize:     0.01, // rate, in percentage points
		TickValue:    10.0,
		MarginPct:    0.04,
	},
	TypeFRC: {
		Type:         TypeFRC,
		ContractSize: 50_000, // USD
		Unit:         UnitUSD,
		TickSize:     0.01,
		TickValue:    5.0,
		MarginPct:    0.05,
	},
	TypeDDI: {
		Type:         TypeDDI,
		ContractSize: 50_000, // USD
		Unit:         UnitUSD,
		TickSize:     0.01,
		TickValue:    5.0,
		MarginPct:    0.06,
	},
	TypeNTNB: {
		Type:         TypeNTNB,
		ContractSize: 100_000, // BRL face, inflation-adjusted principal proxy
		Unit:         UnitPrice,
		TickSize:     0.01,
		TickValue:    10.0,
		MarginPct:    0.08,
	},
}

// Lookup returns the contract spec for a contract type.
func Lookup(t ContractType) (Spec, bool) {
	spec, ok := catalog[t]
	return spec, ok
}

// MustLookup returns the contract spec for a known contract type.
// It panics on unknown types; the type set is closed and covered by tests.
func MustLookup(t ContractType) Spec {
	spec, ok := catalog[t]
	if !ok {
		panic("instruments: unknown contract type " + string(t))
	}
	return spec
}
