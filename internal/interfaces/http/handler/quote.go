package handler

import (
	"fmt"
	"net/http"

	appcatalog "github.com/autodealer/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// QuoteHandler serves the turnkey price calculator
type QuoteHandler struct {
	BaseHandler
	quoteService *appcatalog.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *appcatalog.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Calculate godoc
// @ID           calculateTurnkeyPrice
// @Summary      Turnkey price calculator
// @Description  Breaks a car price down into delivery, customs, fees and commission. Omitted items use dealership defaults.
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.CalculatorRequest true "Calculator input"
// @Success      200 {object} dto.Response{data=appcatalog.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /calculator [post]
func (h *QuoteHandler) Calculate(c *gin.Context) {
	var req appcatalog.CalculatorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.Calculate(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// GetQuote godoc
// @ID           getCarQuote
// @Summary      Turnkey quote for a car
// @Tags         calculator
// @Produce      json
// @Param        id path string true "Car ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcatalog.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cars/{id}/quote [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := h.quoteService.QuoteForCar(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// GetQuotePDF godoc
// @ID           getCarQuotePDF
// @Summary      Turnkey quote as PDF
// @Tags         calculator
// @Produce      application/pdf
// @Param        id path string true "Car ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cars/{id}/quote.pdf [get]
func (h *QuoteHandler) GetQuotePDF(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	pdf, filename, err := h.quoteService.QuotePDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
