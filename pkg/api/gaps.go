package api

// GapCategory classifies why a required parameter produced a gap.
type GapCategory string

const (
	GapMissing      GapCategory = "missing"       // no value supplied
	GapOutOfRange   GapCategory = "out-of-range"  // outside the expected range for the material
	GapInconsistent GapCategory = "inconsistent"  // contradicts other supplied values
)

// DataGap is one missing or suspect parameter discovered during a run.
// Gaps are ephemeral per request; the storage collaborator may retain them
// for later review.
type DataGap struct {
	Parameter string       `json:"parameter"`
	Material  MaterialType `json:"material"`
	Category  GapCategory  `json:"category"`
	// Priority is the number of downstream metrics that depend on the
	// parameter; higher fills first. Ties resolve by schema declaration
	// order, so the sequence is deterministic for identical input.
	Priority int `json:"priority"`
	// Detail carries the validator's reason for out-of-range and
	// inconsistent gaps.
	Detail string `json:"detail,omitempty"`
}
