package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-center/services"
)

type MembershipHandler struct {
	membershipService services.MembershipService
}

func NewMembershipHandler(membershipService services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

type subscribeRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

func (h *MembershipHandler) Status(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	status, err := h.membershipService.Status(r.Context(), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, status)
}

// Subscribe godoc
// @Summary Hacerse socio un mes
// @Tags membership
// @Description Amplía la suscripción desde su fin si sigue vigente.
// @Accept json
// @Produce json
// @Param body body subscribeRequest true "Confirmación del pago"
// @Success 200 {object} services.MembershipResult
// @Failure 403 {object} map[string]string "Los administradores no pueden hacerse socios"
// @Failure 422 {object} map[string]interface{} "Falta el pago"
// @Security BearerAuth
// @Router /membership/subscribe [post]
func (h *MembershipHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var input subscribeRequest
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}
	result, err := h.membershipService.Subscribe(r.Context(), caller, input.PaymentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MembershipHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	result, err := h.membershipService.CancelSubscription(r.Context(), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
