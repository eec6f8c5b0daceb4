package model

// MaxExamples caps how many sample values a Column carries. Once the cap is
// reached further values are ignored, even if they differ.
const MaxExamples = 3

// Column is one column discovered in an uploaded scope sheet, together with
// up to MaxExamples deduplicated sample values in first-seen order.
type Column struct {
	Name     string   `json:"name"`
	Examples []string `json:"examples"`
}

// AddExample appends a trimmed-nonempty sample value if the cap has not been
// reached and the value has not been seen before (case-sensitive).
// Reports whether the value was added.
func (c *Column) AddExample(value string) bool {
	if len(c.Examples) >= MaxExamples || value == "" {
		return false
	}
	for _, e := range c.Examples {
		if e == value {
			return false
		}
	}
	c.Examples = append(c.Examples, value)
	return true
}
