package models

// ItemState is a step of the per-record processing state machine
type ItemState string

const (
	ItemStateStart        ItemState = "START"
	ItemStateValidating   ItemState = "VALIDATING"
	ItemStateSynthesizing ItemState = "SYNTHESIZING"
	ItemStateMarking      ItemState = "MARKING"
	ItemStateUploading    ItemState = "UPLOADING"
	ItemStatePersisting   ItemState = "PERSISTING"
	ItemStateCommitted    ItemState = "COMMITTED"
	ItemStateRejected     ItemState = "REJECTED"
	ItemStateAborted      ItemState = "ABORTED"
)

// Terminal reports whether no further transition can happen
func (s ItemState) Terminal() bool {
	return s == ItemStateCommitted || s == ItemStateRejected || s == ItemStateAborted
}

// OutcomeKind tags an Outcome
type OutcomeKind int

const (
	// OutcomeUnknown is the zero value, never produced by a processor
	OutcomeUnknown OutcomeKind = iota
	OutcomeCommitted
	OutcomeRejected
	OutcomeAborted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCommitted:
		return "committed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing a single record.
//
// Committed outcomes carry the updated record, rejected outcomes carry the
// reason the text was skipped, aborted outcomes carry the error and the state
// in which processing stopped.
type Outcome struct {
	Kind         OutcomeKind
	Record       ContentRecord
	RejectReason string
	Err          error
	// State is the last state reached before the terminal one
	State ItemState
}

// Committed builds a successful outcome
func Committed(record ContentRecord) Outcome {
	return Outcome{Kind: OutcomeCommitted, Record: record, State: ItemStatePersisting}
}

// Rejected builds a skip outcome
func Rejected(record ContentRecord, reason string) Outcome {
	return Outcome{Kind: OutcomeRejected, Record: record, RejectReason: reason, State: ItemStateValidating}
}

// Aborted builds a failure outcome
func Aborted(record ContentRecord, state ItemState, err error) Outcome {
	return Outcome{Kind: OutcomeAborted, Record: record, Err: err, State: state}
}
