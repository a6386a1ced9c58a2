package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// List godoc
// @Summary Listar torneos vigentes
// @Tags tournaments
// @Description Torneos activos que no han terminado. El estado devuelto es el efectivo.
// @Produce json
// @Param q query string false "Texto en nombre o descripción"
// @Param sport query string false "Deporte"
// @Param province query string false "Provincia"
// @Param status query string false "open, closed o finished"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := services.TournamentFilter{
		Query:    query.Get("q"),
		Sport:    query.Get("sport"),
		Province: query.Get("province"),
	}
	if raw := query.Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		if !status.Valid() {
			failedValidationResponse(w, r, map[string]string{"status": "Debe ser uno de: open closed finished"})
			return
		}
		filter.Status = status
	}

	tournaments, err := h.tournamentService.List(r.Context(), optionalIdentity(r), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournaments)
}

func (h *TournamentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	tournaments, err := h.tournamentService.ListMine(r.Context(), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournaments)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.tournamentService.Get(r.Context(), optionalIdentity(r), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournament)
}

// Enroll godoc
// @Summary Inscribirse en un torneo
// @Tags tournaments
// @Description Cierra el torneo automáticamente al ocupar la última plaza.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Inscripción realizada"
// @Failure 401 {object} map[string]string "No autenticado"
// @Failure 403 {object} map[string]string "Los administradores no pueden inscribirse"
// @Failure 404 {object} map[string]string "Torneo no encontrado"
// @Failure 409 {object} map[string]string "Ya inscrito"
// @Failure 422 {object} map[string]string "Inscripciones cerradas / Torneo completo"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/enroll [post]
func (h *TournamentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.tournamentService.Enroll(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Withdraw godoc
// @Summary Cancelar la inscripción en un torneo
// @Tags tournaments
// @Description Reabre el torneo si estaba cerrado y queda una plaza libre.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Inscripción cancelada"
// @Failure 404 {object} map[string]string "No inscrito / Torneo no encontrado"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/withdraw [post]
func (h *TournamentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.tournamentService.Withdraw(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Bracket godoc
// @Summary Cuadro del torneo
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param format query string false "single_elimination (por defecto) o round_robin"
// @Param legs query int false "Vueltas en round_robin"
// @Success 200 {object} services.BracketView
// @Failure 422 {object} map[string]string "Inscritos insuficientes / formato no válido"
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *TournamentHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	legs := 1
	if raw := r.URL.Query().Get("legs"); raw != "" {
		legs, err = strconv.Atoi(raw)
		if err != nil || legs < 1 {
			badRequestResponse(w, r, errors.New("legs must be a positive integer"))
			return
		}
	}
	view, err := h.tournamentService.Bracket(r.Context(), id, r.URL.Query().Get("format"), legs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, view)
}

func (h *TournamentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournaments)
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}
	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, tournament)
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var patch models.TournamentPatch
	if err := readJSON(w, r, &patch); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, patch) {
		return
	}
	tournament, err := h.tournamentService.Update(r.Context(), id, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournament)
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
