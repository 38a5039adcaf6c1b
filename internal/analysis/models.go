package analysis

// KStats holds the convergence statistics of the multiplication factor.
type KStats struct {
	Generations      int // number of k values read
	Skipped          int // inactive generations left out of Mean and StdDev
	Mean             float64
	StdDev           float64 // population standard deviation over active generations
	Final            float64
	FinalFundamental float64 // NaN when no fundamental-mode series was read
}

// ProfileStats summarises one spatial profile (a group flux or the fission density).
type ProfileStats struct {
	Name          string
	Points        int
	Peak          float64
	PeakPosition  float64 // axis coordinate of the peak; NaN when the profile is longer than the axis
	Mean          float64
	PeakingFactor float64 // Peak / Mean
}

// Summary holds all results from the analysis.
type Summary struct {
	Length   float64
	Meshes   int
	K        KStats
	Profiles []ProfileStats
	Warnings []string
}

func NewSummary() *Summary {
	return &Summary{
		Profiles: make([]ProfileStats, 0),
		Warnings: make([]string, 0),
	}
}
