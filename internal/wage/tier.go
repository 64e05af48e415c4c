// Package wage finds the offered wage in classified-ad text.
package wage

import "fmt"

// Tier is the confidence of a wage candidate. Tiers are totally ordered:
// Weak < Potential < Best.
type Tier int

const (
	Weak Tier = iota
	Potential
	Best
)

var tierNames = [...]string{Weak: "weak", Potential: "potential", Best: "best"}

func (t Tier) String() string {
	if t < Weak || t > Best {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if t < Weak || t > Best {
		return nil, fmt.Errorf("invalid wage tier %d", int(t))
	}
	return []byte(tierNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	for i, name := range tierNames {
		if string(b) == name {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("invalid wage tier %q", b)
}

// tierSlots holds at most one candidate per tier; the first value written
// to a slot stays.
type tierSlots [Best + 1]string

func (s *tierSlots) offer(t Tier, text string) {
	if s[t] == "" {
		s[t] = text
	}
}
