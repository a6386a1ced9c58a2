package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/services"
)

const maxImageSize = 5 << 20

type FacilityHandler struct {
	facilityService services.FacilityService
}

func NewFacilityHandler(facilityService services.FacilityService) *FacilityHandler {
	return &FacilityHandler{facilityService: facilityService}
}

// List godoc
// @Summary Listar instalaciones activas
// @Tags facilities
// @Produce json
// @Param q query string false "Texto a buscar en nombre, descripción o ubicación"
// @Param category query string false "padel, tennis, indoor_soccer, pool o gym"
// @Success 200 {object} map[string]interface{}
// @Router /facilities [get]
func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	facilities, err := h.facilityService.List(r.Context(), query.Get("q"), query.Get("category"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, facilities)
}

func (h *FacilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "facilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	facility, err := h.facilityService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, facility)
}

// Availability godoc
// @Summary Horarios ocupados de una instalación
// @Tags facilities
// @Produce json
// @Param facilityID path int true "Facility ID"
// @Param date query string true "Fecha YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Instalación no encontrada"
// @Failure 422 {object} map[string]string "Fecha no válida"
// @Router /facilities/{facilityID}/availability [get]
func (h *FacilityHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "facilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	availability, err := h.facilityService.Availability(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, availability)
}

func (h *FacilityHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.facilityService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, facilities)
}

// Create godoc
// @Summary Crear una instalación
// @Tags admin
// @Accept json
// @Produce json
// @Param body body services.CreateFacilityInput true "Instalación"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "No autorizado"
// @Failure 422 {object} map[string]interface{} "Datos no válidos"
// @Security BearerAuth
// @Router /admin/facilities [post]
func (h *FacilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateFacilityInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}
	facility, err := h.facilityService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, facility)
}

func (h *FacilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "facilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var patch models.FacilityPatch
	if err := readJSON(w, r, &patch); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, patch) {
		return
	}
	facility, err := h.facilityService.Update(r.Context(), id, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, facility)
}

func (h *FacilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "facilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.facilityService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage godoc
// @Summary Subir la imagen de una instalación
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param facilityID path int true "Facility ID"
// @Param image formData file true "JPEG, PNG o WebP (máx. 5MB)"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Formato no soportado"
// @Failure 503 {object} map[string]string "Almacenamiento no configurado"
// @Security BearerAuth
// @Router /admin/facilities/{facilityID}/image [post]
func (h *FacilityHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "facilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1024)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		badRequestResponse(w, r, errors.New("la imagen no puede superar 5MB"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, errors.New("falta el archivo 'image'"))
		return
	}
	defer file.Close()

	// The client supplied Content-Type is not trusted; sniff the payload.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		serverErrorResponse(w, r, err)
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)

	facility, err := h.facilityService.UploadImage(r.Context(), id, contentType, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, facility)
}
