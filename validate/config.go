package validate

// DefaultMaxInheritanceDepth bounds Extends chains when a config does
// not set its own limit.
const DefaultMaxInheritanceDepth = 100

// Config selects the validator groups that run and their strictness.
type Config struct {
	Structure bool // row cardinality constraints
	Heaps     bool // heap alignment and record integrity
	Bounds    bool // cross-table references and list-column ranges
	Semantics bool // inheritance, nesting and interface graphs
	Naming    bool // identifier content
	Versions  bool // assembly version sanity

	// MaxInheritanceDepth is the longest Extends chain semantic
	// validation accepts.
	MaxInheritanceDepth int

	// FailFast aborts a run once a fatal violation is recorded instead
	// of collecting the full set.
	FailFast bool
}

// Disabled runs no validators.
func Disabled() Config { return Config{} }

// Minimal checks only the cardinality constraints that everything
// downstream assumes.
func Minimal() Config {
	return Config{Structure: true, MaxInheritanceDepth: DefaultMaxInheritanceDepth}
}

// Production adds heap integrity and cross-table bounds, the defect
// classes seen in images from misbehaving emitters.
func Production() Config {
	c := Minimal()
	c.Heaps = true
	c.Bounds = true
	return c
}

// Comprehensive adds the semantic graph and identifier checks.
func Comprehensive() Config {
	c := Production()
	c.Semantics = true
	c.Naming = true
	return c
}

// Strict enables everything and aborts on the first fatal violation.
func Strict() Config {
	c := Comprehensive()
	c.Versions = true
	c.FailFast = true
	return c
}
