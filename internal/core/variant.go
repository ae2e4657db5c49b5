package core

// Variant selects one of the two compiler invocation modes.
//
// The external Fairplay compiler runs its optimizer by default; the
// Unoptimized variant disables it with an explicit flag. Each variant
// derives its own artifact suffix so both outputs of the same program
// can coexist.
type Variant string

const (
	Optimized   Variant = "Opt"
	Unoptimized Variant = "NoOpt"
)

// Variants returns both build variants in canonical order.
// The order is part of the deterministic job ordering and must not change.
func Variants() []Variant {
	return []Variant{Optimized, Unoptimized}
}

// Suffix is the artifact suffix appended to the program file path.
func (v Variant) Suffix() string {
	return "." + string(v) + ".circuit"
}

// FormatSuffix is the suffix of the companion format file the compiler
// emits next to each circuit (the wire-to-variable mapping).
func (v Variant) FormatSuffix() string {
	return "." + string(v) + ".fmt"
}

// Flag returns the extra compiler argument for the variant, or "" when
// the default behavior applies.
func (v Variant) Flag() string {
	if v == Unoptimized {
		return "--no-optimize"
	}
	return ""
}

func (v Variant) String() string { return string(v) }

// GeneratedSuffixes lists every artifact suffix the driver owns.
// Clean removes exactly the files matching these.
func GeneratedSuffixes() []string {
	suffixes := make([]string, 0, 2*len(Variants()))
	for _, v := range Variants() {
		suffixes = append(suffixes, v.Suffix(), v.FormatSuffix())
	}
	return suffixes
}

// HasGeneratedSuffix reports whether name ends in a recognized
// generated-artifact suffix.
func HasGeneratedSuffix(name string) bool {
	for _, s := range GeneratedSuffixes() {
		if len(name) > len(s) && name[len(name)-len(s):] == s {
			return true
		}
	}
	return false
}
