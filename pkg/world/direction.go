package world

import (
	"fmt"
	"strings"
)

// Direction indexes one of a section's three adjacency slots.
type Direction int

const (
	Right Direction = iota
	Left
	Down
)

// NumDirections is the number of adjacency slots per section.
const NumDirections = 3

var directionNames = [NumDirections]string{"right", "left", "down"}

// Directions lists every slot in index order.
var Directions = [NumDirections]Direction{Right, Left, Down}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d names one of the three slots.
func (d Direction) Valid() bool { return d >= 0 && d < NumDirections }

// Offset returns the slot amount steps away from d, wrapping in both
// directions.
func (d Direction) Offset(amount int) Direction {
	n := (int(d) + amount) % NumDirections
	if n < 0 {
		n += NumDirections
	}
	return Direction(n)
}

// Angle returns the slot's heading in degrees for the given flip state:
// (slot/3)*360, plus 180 when flipped.
func (d Direction) Angle(flipped bool) float64 {
	angle := float64(d) / NumDirections * 360
	if flipped {
		angle += 180
		if angle >= 360 {
			angle -= 360
		}
	}
	return angle
}

// ParseDirection parses a slot name as produced by [Direction.String].
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Archetype is the role tag of a section.
type Archetype int

const (
	Normal Archetype = iota
	Start
	End
)

var archetypeNames = map[Archetype]string{
	Normal: "normal",
	Start:  "start",
	End:    "end",
}

func (a Archetype) String() string {
	if s, ok := archetypeNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Archetype(%d)", int(a))
}

// Color returns the debug color associated with the archetype as #RRGGBBAA.
func (a Archetype) Color() string {
	switch a {
	case Normal:
		return "#00000080"
	case Start:
		return "#00b30080"
	case End:
		return "#b3000080"
	default:
		return "#ff00ff80"
	}
}

// ParseArchetype parses an archetype name.
func ParseArchetype(s string) (Archetype, error) {
	for a, name := range archetypeNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return Normal, fmt.Errorf("unknown archetype %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Archetype) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Archetype) UnmarshalText(text []byte) error {
	v, err := ParseArchetype(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
