package models

// TriggerKind identifies the inbound event a trigger node fires on.
type TriggerKind string

const (
	TriggerKindComment      TriggerKind = "comment"
	TriggerKindDM           TriggerKind = "dm"
	TriggerKindStoryMention TriggerKind = "story_mention"
	TriggerKindNewFollower  TriggerKind = "new_follower"
	TriggerKindKeyword      TriggerKind = "keyword"
)

// KeywordMatch selects the keyword comparison strategy.
type KeywordMatch string

const (
	KeywordMatchExact    KeywordMatch = "exact"
	KeywordMatchContains KeywordMatch = "contains"
)

// TriggerConfig configures a trigger node. Channel empty means any channel.
type TriggerConfig struct {
	Kind    TriggerKind  `json:"kind" validate:"required"`
	Channel ChannelType  `json:"channel,omitempty"`
	Keyword string       `json:"keyword,omitempty"`
	Match   KeywordMatch `json:"match,omitempty"`
	PostID  string       `json:"post_id,omitempty"`
}

// NodeType implements NodeConfig.
func (c *TriggerConfig) NodeType() NodeType { return NodeTypeTrigger }

// AIConfig enables AI post-processing of outbound text. When the AI
// capability is unconfigured the transform degrades to identity.
type AIConfig struct {
	Enabled      bool   `json:"enabled"`
	Tone         string `json:"tone,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// MessageConfig configures a message node. Intent drives WhatsApp template
// selection when the messaging window forces a template fallback.
type MessageConfig struct {
	Text      string    `json:"text" validate:"required"`
	Buttons   []Button  `json:"buttons,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	MediaType string    `json:"media_type,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	AI        *AIConfig `json:"ai,omitempty"`
	DelayMs   int       `json:"delay_ms,omitempty"`
}

// NodeType implements NodeConfig.
func (c *MessageConfig) NodeType() NodeType { return NodeTypeMessage }

// AnswerType constrains questionnaire answers.
type AnswerType string

const (
	AnswerTypeText   AnswerType = "text"
	AnswerTypeNumber AnswerType = "number"
	AnswerTypeEmail  AnswerType = "email"
	AnswerTypePhone  AnswerType = "phone"
)

// FailAction selects the branch taken after a question's retries are
// exhausted.
type FailAction string

const (
	FailActionSkip   FailAction = "skip"
	FailActionAIHelp FailAction = "ai_help"
	FailActionHuman  FailAction = "human"
)

// AnswerValidation constrains a questionnaire answer. Min/Max apply to the
// numeric value for number answers and to the text length otherwise.
type AnswerValidation struct {
	Required bool     `json:"required,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Question is one prompt/answer pair in a questionnaire node.
type Question struct {
	ID         string           `json:"id"      validate:"required"`
	Prompt     string           `json:"prompt"  validate:"required"`
	SaveTo     string           `json:"save_to" validate:"required"`
	AnswerType AnswerType       `json:"answer_type,omitempty"`
	Validation AnswerValidation `json:"validation,omitempty"`
	Retry      int              `json:"retry,omitempty"`
	OnFail     FailAction       `json:"on_fail,omitempty"`
	AIExtract  bool             `json:"ai_extract,omitempty"`
	FieldType  string           `json:"field_type,omitempty"`
}

// QuestionnaireConfig configures a questionnaire node.
type QuestionnaireConfig struct {
	Questions  []Question `json:"questions" validate:"required,min=1"`
	OnComplete []Action   `json:"on_complete,omitempty"`
}

// NodeType implements NodeConfig.
func (c *QuestionnaireConfig) NodeType() NodeType { return NodeTypeQuestionnaire }

// RuleType identifies what a condition rule inspects.
type RuleType string

const (
	RuleTypeField     RuleType = "field"
	RuleTypeTag       RuleType = "tag"
	RuleTypeTime      RuleType = "time"
	RuleTypeDayOfWeek RuleType = "day_of_week"
	RuleTypeSource    RuleType = "source"
	RuleTypeRandom    RuleType = "random"
	RuleTypeFollower  RuleType = "follower"
)

// ConditionOperator combines condition rules.
type ConditionOperator string

const (
	ConditionAnd ConditionOperator = "AND"
	ConditionOr  ConditionOperator = "OR"
)

// ConditionRule is one predicate inside a condition node.
type ConditionRule struct {
	Type        RuleType `json:"type" validate:"required"`
	Field       string   `json:"field,omitempty"`
	Operator    string   `json:"operator,omitempty"` // equals, not_equals, contains, greater_than, less_than, exists
	Value       any      `json:"value,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	From        string   `json:"from,omitempty"` // "HH:MM", for time rules
	To          string   `json:"to,omitempty"`
	Days        []string `json:"days,omitempty"` // lowercase weekday names
	Probability float64  `json:"probability,omitempty"`
}

// ConditionBranches holds the target node IDs for each outcome. Condition
// nodes route to these IDs directly instead of matching edge labels.
type ConditionBranches struct {
	True  string `json:"true"`
	False string `json:"false"`
}

// ConditionConfig configures a condition node.
type ConditionConfig struct {
	Operator ConditionOperator `json:"operator" validate:"required,oneof=AND OR"`
	Rules    []ConditionRule   `json:"rules"    validate:"required,min=1"`
	Branches ConditionBranches `json:"branches"`
}

// NodeType implements NodeConfig.
func (c *ConditionConfig) NodeType() NodeType { return NodeTypeCondition }

// DefaultHTTPTimeoutMs bounds HTTP node requests when no timeout is
// configured. Never unbounded.
const DefaultHTTPTimeoutMs = 10000

// HTTPConfig configures an HTTP node. ResponseMapping maps variable names to
// dot paths into the response body.
type HTTPConfig struct {
	URL             string            `json:"url" validate:"required"`
	Method          string            `json:"method,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
	Body            string            `json:"body,omitempty"`
	TimeoutMs       int               `json:"timeout_ms,omitempty"`
	ResponseMapping map[string]string `json:"response_mapping,omitempty"`
	OnSuccess       []Action          `json:"on_success,omitempty"`
	OnError         []Action          `json:"on_error,omitempty"`
}

// NodeType implements NodeConfig.
func (c *HTTPConfig) NodeType() NodeType { return NodeTypeHTTP }

// Timeout returns the configured timeout, falling back to the default.
func (c *HTTPConfig) Timeout() int {
	if c.TimeoutMs > 0 {
		return c.TimeoutMs
	}

	return DefaultHTTPTimeoutMs
}
