package tiles_test

import (
	"fmt"

	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

func ExampleTileSet_Match() {
	ts := tiles.Default()
	for _, mask := range []int{0b111, 0b011, 0b101, 0b100, 0b000} {
		m, _ := ts.Match(mask)
		fmt.Printf("%03b -> %s %g°\n", mask, m.Tile.Name, m.Degrees)
	}
	// Output:
	// 111 -> Space 0°
	// 011 -> Corner 0°
	// 101 -> Corner 240°
	// 100 -> Wall 240°
	// 000 -> Block 0°
}
