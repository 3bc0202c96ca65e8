// Package optimization provides shared data structures for optimization results.
package optimization

// Timing is an exit strategy's schedule. RefinanceYear is nil when the
// acquisition loan is held to exit.
type Timing struct {
	SellYear      int  `json:"sellYear" yaml:"sellYear"`
	RefinanceYear *int `json:"refinanceYear,omitempty" yaml:"refinanceYear,omitempty"`
	ExitYear      int  `json:"exitYear" yaml:"exitYear"`
}

// Summary captures the winner of one strategy family.
type Summary struct {
	Path               string   `json:"path" yaml:"path"`
	Scenarios          int      `json:"scenarios" yaml:"scenarios"`
	BestID             string   `json:"bestId" yaml:"bestId"`
	BestLabel          string   `json:"bestLabel" yaml:"bestLabel"`
	BestTiming         Timing   `json:"bestTiming" yaml:"bestTiming"`
	BestIRR            *float64 `json:"bestIrr" yaml:"bestIrr"`
	BestEquityMultiple float64  `json:"bestEquityMultiple" yaml:"bestEquityMultiple"`
	Notes              []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}
