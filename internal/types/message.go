package types

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound body of POST /chat.
type ChatRequest struct {
	Message        string `json:"message"`
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId,omitempty"`

	// Set by the handler, never read from the body.
	Credential string `json:"-"`
	RequestID  string `json:"-"`
}

type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId"`
	Intent         Intent `json:"intent"`
	ContextUsed    bool   `json:"contextUsed"`
}

type UploadResponse struct {
	Answer   string `json:"answer"`
	FileName string `json:"fileName"`
	Chars    int    `json:"chars"`
}
