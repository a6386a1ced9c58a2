package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-center/services"
)

type ReservationHandler struct {
	reservationService services.ReservationService
}

func NewReservationHandler(reservationService services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// List godoc
// @Summary Reservas visibles para el usuario
// @Tags reservations
// @Description Los administradores ven todas las reservas; el resto, solo las suyas.
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "No autenticado"
// @Security BearerAuth
// @Router /reservations [get]
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	reservations, err := h.reservationService.List(r.Context(), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, reservations)
}

// Quote godoc
// @Summary Calcular el precio de una reserva
// @Tags reservations
// @Accept json
// @Produce json
// @Param body body services.QuoteInput true "Instalación, fecha y horario"
// @Success 200 {object} services.PriceBreakdown
// @Failure 422 {object} map[string]string "Horario no válido"
// @Security BearerAuth
// @Router /reservations/quote [post]
func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var input services.QuoteInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}
	breakdown, err := h.reservationService.Quote(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, breakdown)
}

// Create godoc
// @Summary Reservar una instalación
// @Tags reservations
// @Description Crea una reserva confirmada. meta contiene el desglose de precio.
// @Accept json
// @Produce json
// @Param body body services.CreateReservationInput true "Reserva"
// @Success 201 {object} map[string]interface{} "Reserva creada"
// @Failure 403 {object} map[string]string "Los administradores no pueden reservar"
// @Failure 404 {object} map[string]string "Instalación no encontrada"
// @Failure 409 {object} map[string]string "Ya existe una reserva en ese horario"
// @Failure 422 {object} map[string]string "Datos no válidos"
// @Security BearerAuth
// @Router /reservations [post]
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var input services.CreateReservationInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	reservation, breakdown, err := h.reservationService.Create(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"data": reservation, "meta": breakdown}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefundPreview godoc
// @Summary Consultar el reembolso de una cancelación
// @Tags reservations
// @Produce json
// @Param reservationID path int true "Reservation ID"
// @Success 200 {object} services.RefundBreakdown
// @Failure 403 {object} map[string]string "No autorizado"
// @Failure 404 {object} map[string]string "No encontrada"
// @Security BearerAuth
// @Router /reservations/{reservationID}/refund [get]
func (h *ReservationHandler) RefundPreview(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "reservationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	refund, err := h.reservationService.RefundPreview(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, refund)
}

// Cancel godoc
// @Summary Cancelar una reserva
// @Tags reservations
// @Description Socios recuperan el 100%, el resto el 50%.
// @Produce json
// @Param reservationID path int true "Reservation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "No autorizado"
// @Failure 404 {object} map[string]string "No encontrada"
// @Failure 422 {object} map[string]string "La reserva no se puede cancelar"
// @Security BearerAuth
// @Router /reservations/{reservationID}/cancel [post]
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "reservationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.reservationService.Cancel(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	env := jsonResponse{"data": result.Reservation, "meta": result.Refund, "message": result.Message}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "reservationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.reservationService.Delete(r.Context(), caller, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
