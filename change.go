package entity

import "fmt"

// Change classifies what a mutation did to a state.
//
// The values are ordered so that the classification of a batch is the
// maximum of the classifications of its parts.
type Change int

const (
	// NoChange means the returned state is the input state.
	NoChange Change = iota
	// EntitiesOnly means record contents changed but the ids did not.
	EntitiesOnly
	// Both means the id membership or order changed.
	Both
)

var changeNames = map[Change]string{
	NoChange:     "NoChange",
	EntitiesOnly: "EntitiesOnly",
	Both:         "Both",
}

// String returns the name of the change.
func (c Change) String() string {
	name, ok := changeNames[c]
	if !ok {
		return fmt.Sprintf("Change(%d)", int(c))
	}
	return name
}

// Max returns the larger of the two changes.
func (c Change) Max(other Change) Change {
	if other > c {
		return other
	}
	return c
}

// ParseChange returns the change with the given name.
func ParseChange(name string) (Change, error) {
	for c, n := range changeNames {
		if n == name {
			return c, nil
		}
	}
	return NoChange, fmt.Errorf("invalid change %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Change) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Change) UnmarshalText(text []byte) error {
	parsed, err := ParseChange(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
