package models

import "time"

// ExecutionStatus is the externally observable outcome of a flow run.
type ExecutionStatus string

const (
	ExecutionStatusCompleted    ExecutionStatus = "completed"
	ExecutionStatusFailed       ExecutionStatus = "failed"
	ExecutionStatusWaitingInput ExecutionStatus = "waiting_input"
	ExecutionStatusSkipped      ExecutionStatus = "skipped"
)

// QuestionnaireState tracks progress through a questionnaire node across
// suspensions.
type QuestionnaireState struct {
	QuestionIndex int `json:"question_index"`
	Retries       int `json:"retries"`
}

// ExecutionContext is the full state of one in-flight flow run. It is owned
// by exactly one execution and is the value persisted while the run waits
// for user input; suspension is data, not a parked call stack.
type ExecutionContext struct {
	ExecutionID   string              `json:"execution_id"`
	FlowID        string              `json:"flow_id"`
	WorkspaceID   string              `json:"workspace_id,omitempty"`
	UserID        string              `json:"user_id"`
	User          *UserContact        `json:"user,omitempty"`
	ChannelID     string              `json:"channel_id"`
	ChannelType   ChannelType         `json:"channel_type"`
	TriggerData   map[string]any      `json:"trigger_data,omitempty"`
	Variables     map[string]any      `json:"variables,omitempty"`
	CurrentNodeID string              `json:"current_node_id"`
	Steps         []ExecutionStep     `json:"steps"`
	Questionnaire *QuestionnaireState `json:"questionnaire,omitempty"`
	WaitingFor    *WaitingFor         `json:"waiting_for,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
}

// PolicyContext assembles the compliance facts for this run's user and
// channel.
func (e *ExecutionContext) PolicyContext() PolicyContext {
	pctx := PolicyContext{
		Channel: e.ChannelType,
		UserID:  e.UserID,
	}

	if e.User != nil {
		pctx.LastInboundAt = e.User.LastInboundAt
		pctx.IsFollower = e.User.IsFollower
	}

	return pctx
}

// ExecutionStep is one entry in the append-only audit log. Steps are never
// reordered or pruned during a run.
type ExecutionStep struct {
	NodeID    string         `json:"node_id"`
	NodeType  NodeType       `json:"node_type"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// WaitingFor describes what a suspended execution is blocked on.
// ExpectedInput "human" marks a permanent handoff with no automatic
// resumption path.
type WaitingFor struct {
	NodeID        string `json:"node_id"`
	QuestionID    string `json:"question_id,omitempty"`
	ExpectedInput string `json:"expected_input,omitempty"`
}

// ExecutionResult is the outcome of one Execute or Resume call.
type ExecutionResult struct {
	ExecutionID string          `json:"execution_id"`
	FlowID      string          `json:"flow_id"`
	Status      ExecutionStatus `json:"status"`
	Steps       []ExecutionStep `json:"steps"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Error       string          `json:"error,omitempty"`
	WaitingFor  *WaitingFor     `json:"waiting_for,omitempty"`
}
