package handler

import (
	"github.com/autodealer/backend/internal/application/assistant"
	"github.com/gin-gonic/gin"
)

// ChatHandler relays the website chat widget to the assistant
type ChatHandler struct {
	BaseHandler
	chatService *assistant.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *assistant.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat godoc
// @ID           chat
// @Summary      Ask the assistant
// @Description  Always answers 200; when the assistant is unavailable the reply is a fallback message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body assistant.ChatRequest true "Conversation"
// @Success      200 {object} dto.Response{data=assistant.ChatResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req assistant.ChatRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.chatService.Reply(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
