package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-center/services"
)

type PaymentHandler struct {
	processor services.PaymentProcessor
}

func NewPaymentHandler(processor services.PaymentProcessor) *PaymentHandler {
	return &PaymentHandler{processor: processor}
}

// Process godoc
// @Summary Procesar un pago simulado
// @Tags payments
// @Description Devuelve el payment_id que exigen reservas y suscripciones. La tarjeta 4000000000000002 siempre se rechaza.
// @Accept json
// @Produce json
// @Param body body services.PaymentInput true "Pago"
// @Success 201 {object} services.PaymentConfirmation
// @Failure 422 {object} map[string]string "Importe no válido / Pago rechazado"
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var input services.PaymentInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}
	confirmation, err := h.processor.ProcessPayment(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, confirmation)
}
