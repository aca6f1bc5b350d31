package conversation

import (
	"time"

	"github.com/google/uuid"
)

// InboundMessage is the normalized message handed over by the
// ingestion layer. De-duplication by transport id happens before the
// engine sees it.
type InboundMessage struct {
	ID             string
	ConversationID uuid.UUID
	TenantID       uuid.UUID
	SenderAddress  string
	SenderName     string
	Text           string
	ReceivedAt     time.Time
}

type DecisionKind string

const (
	DecisionNoKnowledgeBase   DecisionKind = "no_knowledge_base"
	DecisionAutoReplyDisabled DecisionKind = "auto_reply_disabled"
	DecisionAfterHours        DecisionKind = "after_hours"
	DecisionRuleMatched       DecisionKind = "rule_matched"
	DecisionGenerated         DecisionKind = "generated"
)

// Decision is the terminal output of one engine run for one inbound
// message.
type Decision struct {
	Kind          DecisionKind
	Message       string
	IsAutoReply   bool
	MatchedRuleID *uuid.UUID
	Confidence    *float64
}

// ShouldReply reports whether the decision carries an outbound message.
func (d Decision) ShouldReply() bool {
	return d.Message != ""
}
