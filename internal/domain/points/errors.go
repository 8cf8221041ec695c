package points

import "errors"

// Sentinel kinds for rule table errors.
var (
	ErrInvalidRules = errors.New("invalid rule table")
)

// Warning describes a record that was skipped because it was malformed.
type Warning struct {
	RecordID string `json:"recordId"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

func (w Warning) String() string {
	return w.Category + " record " + w.RecordID + ": " + w.Reason
}
