package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses vector and keyword scores.
	Hybrid  Mode = "hybrid"
	Vector  Mode = "vector"
	Keyword Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Vector || m == Keyword
}

// UsesVector reports whether the mode needs a query embedding.
func (m Mode) UsesVector() bool { return m == Hybrid || m == Vector }

// UsesKeyword reports whether the mode needs query text.
func (m Mode) UsesKeyword() bool { return m == Hybrid || m == Keyword }
