package model

// Category classifies a trip's purpose.
type Category string

const (
	// CategoryCommute marks trips directly between home and work.
	CategoryCommute Category = "commute"
	// CategoryBusiness marks work-related trips.
	CategoryBusiness Category = "business"
	// CategoryPersonal marks everything else.
	CategoryPersonal Category = "personal"
)

// CategoryResult records a trip's category together with the rule that
// produced it, so classifications stay auditable.
type CategoryResult struct {
	Category Category
	Rule     string
}
