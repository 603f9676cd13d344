package attendance

// Policy selects the institutional regulation governing which raw subject
// codes denote the same logical course.
type Policy string

const (
	// PolicyLegacy covers the older regulations where theory and lab rows
	// both carry an explicit trailing marker (CS301T / CS301L).
	PolicyLegacy Policy = "legacy"
	// PolicyCurrent covers the current regulation where only lab rows carry
	// a marker and the bare code is the theory component (CS101 / CS101L).
	PolicyCurrent Policy = "current"
)

// IsValid reports whether p is a known policy.
func (p Policy) IsValid() bool {
	return p == PolicyLegacy || p == PolicyCurrent
}

// String returns the policy key.
func (p Policy) String() string {
	return string(p)
}

// SubjectKind tags which component of a course a raw code denotes.
type SubjectKind string

const (
	KindTheory     SubjectKind = "T"
	KindLab        SubjectKind = "L"
	KindStandalone SubjectKind = ""
)

// Subject code markers and regulation suffixes recognized during base-code
// extraction.
const (
	theoryMarker = "T"
	labMarker    = "L"
)

var regulationSuffixes = []string{"-R21", "-R18"}

// Config holds the OD/ML adjustment rule set.
type Config struct {
	// EnableAdjustment controls whether the OD/ML boost is applied at all.
	EnableAdjustment bool
	// AdjustmentThreshold is the raw percentage below which the boost kicks
	// in.
	AdjustmentThreshold float64
	// MaxAdjustment is the maximum percentage boost in the institutional
	// rule book. Carried for configuration completeness; the engine caps the
	// boost at the conducted-class count instead, matching long-standing
	// practice.
	MaxAdjustment float64
}

// DefaultConfig returns the institutional defaults.
func DefaultConfig() Config {
	return Config{
		EnableAdjustment:    true,
		AdjustmentThreshold: 75.0,
		MaxAdjustment:       10.0,
	}
}
