package assistant

// ChatTurn is one message of the visitor's conversation as sent by the widget
type ChatTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Messages  []ChatTurn `json:"messages" binding:"required,min=1,max=50,dive"`
	SessionID string     `json:"session_id" binding:"omitempty,max=100"`
}

// ChatResponse carries the assistant reply
type ChatResponse struct {
	Message string `json:"message"`
}
