package pattern

import (
	"strings"
)

func kindsOf(f Family) []Kind {
	var out []Kind
	for _, k := range Catalog() {
		if kindTable[k].family == f {
			out = append(out, k)
		}
	}
	return out
}

// SingleBarKinds lists the one bar built-ins
func SingleBarKinds() []Kind { return kindsOf(FamilySingle) }

// TwoBarKinds lists the two bar built-ins
func TwoBarKinds() []Kind { return kindsOf(FamilyTwo) }

// ThreeBarKinds lists the three bar built-ins
func ThreeBarKinds() []Kind { return kindsOf(FamilyThree) }

// ExtendedKinds lists the gap and continuation built-ins
func ExtendedKinds() []Kind { return kindsOf(FamilyExtended) }

// AllKinds lists every built-in
func AllKinds() []Kind { return Catalog() }

// PresetKinds resolves a preset name used in configuration files
func PresetKinds(name string) ([]Kind, bool) {
	switch strings.ToLower(name) {
	case "single", "single_bar":
		return SingleBarKinds(), true
	case "two", "two_bar":
		return TwoBarKinds(), true
	case "three", "three_bar":
		return ThreeBarKinds(), true
	case "extended":
		return ExtendedKinds(), true
	case "all":
		return AllKinds(), true
	}
	return nil, false
}
