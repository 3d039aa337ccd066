// Package instruments provides the static exchange contract catalog,
// ticker resolution and the mapping from model instrument classes to
// concrete exchange contracts.
package instruments

import "strings"

// Class is a model instrument class produced by the macro model.
// The set is closed: every engine component iterates Classes() and is
// exhaustive over it.
type Class int

const (
	ClassFX Class = iota // BRL/USD exposure via FX futures
	ClassFront
	ClassBelly
	ClassLong
	ClassHard // Hard-currency sovereign exposure via currency-coupon futures
	ClassLinker

	// NumClasses is the size of the closed instrument-class set.
	NumClasses int = iota
)

// String returns the model identifier used on the wire (weights maps, JSON).
func (c Class) String() string {
	switch c {
	case ClassFX:
		return "fx"
	case ClassFront:
		return "front"
	case ClassBelly:
		return "belly"
	case ClassLong:
		return "long"
	case ClassHard:
		return "hard"
	case ClassLinker:
		return "inflation-linked"
	}
	return "unknown"
}

// ParseClass parses a model instrument identifier. Unknown identifiers
// return ok=false; callers treat them as zero-weight (flat).
func ParseClass(s string) (Class, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fx":
		return ClassFX, true
	case "front":
		return ClassFront, true
	case "belly":
		return ClassBelly, true
	case "long":
		return ClassLong, true
	case "hard":
		return ClassHard, true
	case "inflation-linked", "linker":
		return ClassLinker, true
	}
	return 0, false
}

// Classes returns all model instrument classes in canonical order.
func Classes() []Class {
	return []Class{ClassFX, ClassFront, ClassBelly, ClassLong, ClassHard, ClassLinker}
}

// ContractType identifies an exchange contract.
type ContractType string

const (
	TypeDOL  ContractType = "DOL"  // Full-size USD future (USD 50,000)
	TypeWDO  ContractType = "WDO"  // Mini USD future (USD 10,000)
	TypeDI1  ContractType = "DI1"  // Interbank deposit rate future (BRL 100,000 face)
	TypeFRC  ContractType = "FRC"  // Forward rate agreement on DI x USD coupon
	TypeDDI  ContractType = "DDI"  // Currency-coupon future (sovereign spread proxy)
	TypeNTNB ContractType = "NTNB" // Inflation-linked bond proxy
)

// Unit is the currency unit of a contract's size.
type Unit int

const (
	UnitBRL Unit = iota
	UnitUSD
	UnitPrice // Contract size expressed in price units (rate futures face value)
)

// Spec describes a static exchange contract specification.
// Specs are immutable and loaded once at process start.
type Spec struct {
	Type         ContractType
	ContractSize float64
	Unit         Unit
	TickSize     float64
	TickValue    float64
	MarginPct    float64 // Exchange initial margin as fraction of notional
}
