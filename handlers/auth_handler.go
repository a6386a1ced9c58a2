package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-center/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary Registrar un usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Datos del usuario"
// @Success 201 {object} map[string]interface{} "Usuario y token"
// @Failure 409 {object} map[string]string "El email ya está registrado"
// @Failure 422 {object} map[string]interface{} "Datos no válidos"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	result, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, result)
}

// Login godoc
// @Summary Iniciar sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credenciales"
// @Success 200 {object} map[string]interface{} "Usuario y token"
// @Failure 401 {object} map[string]string "Credenciales incorrectas"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		decodeErrorResponse(w, r, err)
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	user, err := h.authService.Me(r.Context(), caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := h.authService.Logout(r.Context(), caller); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "Sesión cerrada correctamente"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
