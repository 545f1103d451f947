package buffer

import "github.com/google/uuid"

// captureState is the per-section train-capture phase of the state
// machine: inactive (no capture in progress) or active (capture in
// progress, more fragments expected).
type captureState int

const (
	inactive captureState = iota
	active
)

// SectionParams carries the derived geometry for one section's ring:
// its capacity and the two margin-time reference indices, computed by
// the config package from the section's column count, the batch shape
// and the configured file-size budget per spec §4.D.
type SectionParams struct {
	Capacity    int
	ActiveRef   int
	InactiveRef int
}

// sectionState is the mutable, per-section state owned exclusively by
// the Manager: its ring, capture phase and capture identity.
type sectionState struct {
	params SectionParams
	ring   *ring

	state            captureState
	currentUUID      uuid.UUID
	fileChunkCounter uint32
	captureInitialTS float64
}

func newSectionState(params SectionParams) *sectionState {
	return &sectionState{
		params: params,
		ring:   newRing(params.Capacity),
		state:  inactive,
	}
}
