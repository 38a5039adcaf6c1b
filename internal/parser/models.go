package parser

import "fmt"

// Fixed input file names written by the simulation driver.
const (
	VarsFile      = "vars.csv"
	KEffFile      = "k_eff.csv"
	InterfaceFile = "interface.csv"
)

// Vars is the configuration record from vars.csv.
// Line 1: assembly length, line 2: mesh point count, line 3: generation count.
type Vars struct {
	Length      float64
	Meshes      int
	Generations int
}

// KEff holds the multiplication factor series from k_eff.csv.
// Fundamental is nil when the file has no second line.
type KEff struct {
	K           []float64
	Fundamental []float64
}

// HasFundamental reports whether a fundamental-mode series was read.
func (k *KEff) HasFundamental() bool {
	return k != nil && k.Fundamental != nil
}

// Interface holds the spatial profiles from interface.csv.
// Flux and Average are indexed by energy group; Average is empty for plain layouts.
type Interface struct {
	Flux    [][]float64
	Average [][]float64
	Fission []float64
	Layout  Layout
}

// Groups returns the number of energy groups read.
func (in *Interface) Groups() int {
	return len(in.Flux)
}

// Results bundles everything read from one simulation output directory.
type Results struct {
	Dir       string
	Vars      Vars
	KEff      *KEff
	Interface *Interface
}

// Layout describes how interface.csv rows map to series.
// Groups == 0 means the layout is inferred from the row count.
type Layout struct {
	Groups   int
	Averaged bool
}

func (l Layout) String() string {
	if l.Groups == 0 {
		return "auto"
	}
	if l.Averaged {
		return fmt.Sprintf("%d groups, averaged", l.Groups)
	}
	return fmt.Sprintf("%d groups", l.Groups)
}
