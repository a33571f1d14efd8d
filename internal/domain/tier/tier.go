// Package tier holds the static tournament tier table: per-tier K/variance
// weights and the importance values used for tournament-success scoring.
package tier

// Info carries the two per-tier constants.
type Info struct {
	// Weight multiplies the Elo K-factor and shrinks Glicko-2 variance.
	Weight float64
	// Importance feeds tournament achievement scoring.
	Importance float64
}

// Fallback values for tiers missing from the table.
const (
	DefaultWeight     = 1.0
	DefaultImportance = 0.0
)

// Table maps tournament tier names to their constants. It is immutable
// after construction and safe for concurrent reads.
type Table struct {
	entries map[string]Info
}

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithEntry adds or overrides a single tier.
func WithEntry(name string, info Info) Option {
	return func(t *Table) {
		if name != "" && info.Weight > 0 {
			t.entries[name] = info
		}
	}
}

// WithEntries adds or overrides multiple tiers at once.
func WithEntries(entries map[string]Info) Option {
	return func(t *Table) {
		for name, info := range entries {
			if name != "" && info.Weight > 0 {
				t.entries[name] = info
			}
		}
	}
}

// New builds a Table seeded with the standard ATP tier constants, then
// applies any overrides.
func New(opts ...Option) *Table {
	t := &Table{entries: map[string]Info{
		"Grand Slam":   {Weight: 2.0, Importance: 100},
		"ATP Finals":   {Weight: 1.8, Importance: 90},
		"Masters 1000": {Weight: 1.5, Importance: 80},
		"Masters":      {Weight: 1.5, Importance: 80}, // alias
		"ATP 500":      {Weight: 1.2, Importance: 60},
		"ATP 250":      {Weight: 1.0, Importance: 40},
		"Davis Cup":    {Weight: 1.3, Importance: 70},
		"Olympics":     {Weight: 1.6, Importance: 85},
		"Challenger":   {Weight: 0.8, Importance: 30},
		"ITF":          {Weight: 0.6, Importance: 20},
	}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lookup returns the tier constants and whether the tier is known.
// Unknown tiers get the non-fatal defaults.
func (t *Table) Lookup(name string) (Info, bool) {
	if info, ok := t.entries[name]; ok {
		return info, true
	}
	return Info{Weight: DefaultWeight, Importance: DefaultImportance}, false
}

// Weight returns the K/variance weight for a tier, defaulting to 1.0.
func (t *Table) Weight(name string) float64 {
	info, _ := t.Lookup(name)
	return info.Weight
}

// Len returns the number of configured tiers.
func (t *Table) Len() int {
	return len(t.entries)
}
