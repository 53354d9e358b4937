package fetch

import (
	"fmt"
	"strings"

	"github.com/bearanvil/trafficled/internal/speeds"
)

// Direction is a direction of travel.
type Direction int

const (
	North Direction = iota
	South
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Category distinguishes current speeds from typical speeds.
type Category int

const (
	Live Category = iota
	Typical
)

func (c Category) String() string {
	switch c {
	case Live:
		return "live"
	case Typical:
		return "typical"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

func (c Category) filePrefix() string {
	if c == Live {
		return "data"
	}
	return "typical"
}

// Dataset names one speed file.
type Dataset struct {
	Direction Direction
	Category  Category
}

func (d Dataset) String() string {
	return d.Category.String() + " " + d.Direction.String()
}

// Datasets lists every dataset the server publishes.
func Datasets() []Dataset {
	return []Dataset{
		{North, Live},
		{North, Typical},
		{South, Live},
		{South, Typical},
	}
}

// URL returns the location of d on server for the given data format
// version, for example "V1_0_5".
func URL(server, version string, d Dataset) string {
	return fmt.Sprintf("%s/current_data/%s_%s_%s.csv",
		strings.TrimRight(server, "/"), d.Category.filePrefix(), d.Direction, version)
}

// Snapshot holds one decoded table per dataset.
type Snapshot map[Dataset]speeds.Table

// Pair returns the live and typical tables for dir.
func (s Snapshot) Pair(dir Direction) (live, typical speeds.Table) {
	return s[Dataset{dir, Live}], s[Dataset{dir, Typical}]
}
