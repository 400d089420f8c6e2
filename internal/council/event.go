package council

// EventType names one progress notification in a streamed pipeline run. The
// sequence for a successful run is stage1_start, stage1_complete, stage2_start,
// stage2_complete, stage3_start, stage3_complete, then title_complete when a
// title was generated, then complete. A stream always terminates with either
// complete or error.
type EventType string

const (
	EventStage1Start    EventType = "stage1_start"
	EventStage1Complete EventType = "stage1_complete"
	EventStage2Start    EventType = "stage2_start"
	EventStage2Complete EventType = "stage2_complete"
	EventStage3Start    EventType = "stage3_start"
	EventStage3Complete EventType = "stage3_complete"
	EventTitleComplete  EventType = "title_complete"
	EventComplete       EventType = "complete"
	EventError          EventType = "error"
)

// Event is one discrete progress notification. The schema is the external
// contract; the transport (SSE today) is not.
type Event struct {
	Type     EventType `json:"type"`
	Data     any       `json:"data,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// EmitFunc receives pipeline progress events in order.
type EmitFunc func(Event)
