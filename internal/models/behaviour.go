package models

// BehaviourTally maps reason labels to point totals, split by sign.
type BehaviourTally struct {
	Positive map[string]int `json:"positive"`
	Negative map[string]int `json:"negative"`
}

// BehaviourRow is one line in a breakdown table.
type BehaviourRow struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
	Other  bool   `json:"other,omitempty"`
}

// BehaviourSummary holds totals and ranked breakdowns.
type BehaviourSummary struct {
	PositiveTotal int            `json:"positiveTotal"`
	NegativeTotal int            `json:"negativeTotal"`
	Positive      []BehaviourRow `json:"positive"`
	Negative      []BehaviourRow `json:"negative"`
}
