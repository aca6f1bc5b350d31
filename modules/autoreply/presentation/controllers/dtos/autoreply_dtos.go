package dtos

const (
	ErrorCodeInvalidRequest   = "INVALID_REQUEST"
	ErrorCodeUnknownTenant    = "UNKNOWN_TENANT"
	ErrorCodeTenantInactive   = "TENANT_INACTIVE"
	ErrorCodeDuplicateMessage = "DUPLICATE_MESSAGE"
	ErrorCodeThreadNotFound   = "THREAD_NOT_FOUND"
	ErrorCodeGenerationFailed = "GENERATION_FAILED"
	ErrorCodeInternalServer   = "INTERNAL_SERVER_ERROR"
)

// InboundMessageRequest is the normalized message posted by a
// transport adapter.
type InboundMessageRequest struct {
	MessageID     string `json:"message_id"`
	TenantID      string `json:"tenant_id"`
	SenderAddress string `json:"sender_address"`
	SenderName    string `json:"sender_name"`
	Text          string `json:"text"`
}

type DecisionResponse struct {
	Kind          string   `json:"kind"`
	Message       string   `json:"message,omitempty"`
	IsAutoReply   bool     `json:"is_auto_reply"`
	MatchedRuleID string   `json:"matched_rule_id,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
}

type ThreadMessage struct {
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ThreadMessagesResponse struct {
	ThreadID string          `json:"thread_id"`
	Messages []ThreadMessage `json:"messages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
