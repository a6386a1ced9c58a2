package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/middleware"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/services"
)

type jsonResponse map[string]interface{}

const (
	msgServerError      = "Error interno del servidor"
	msgNotFound         = "Recurso no encontrado"
	msgUnauthenticated  = "No autenticado"
	msgValidationFailed = "Los datos proporcionados no son válidos"
	msgStorageDown      = "El almacenamiento de imágenes no está disponible"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// respond writes the {"data": ...} envelope every successful endpoint uses.
func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, jsonResponse{"data": data}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := writeJSON(w, status, jsonResponse{"message": message}, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	errorResponse(w, r, http.StatusInternalServerError, msgServerError)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// decodeErrorResponse reports a readJSON failure. Values that reject their
// own format during decoding (dates, times) carry a business error and keep
// its status; anything else is a malformed body.
func decodeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := apperr.Message(err); ok {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	badRequestResponse(w, r, err)
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	env := jsonResponse{"message": msgValidationFailed, "errors": fields}
	if err := writeJSON(w, http.StatusUnprocessableEntity, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, msgNotFound)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusUnauthorized, msgUnauthenticated)
}

// validateInput runs the struct validators and writes a 422 on failure. It
// reports whether the handler may continue.
func validateInput(w http.ResponseWriter, r *http.Request, input interface{}) bool {
	err := validate.Struct(input)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		serverErrorResponse(w, r, err)
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	failedValidationResponse(w, r, fields)
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "El campo es obligatorio"
	case "email":
		return "Debe ser un email válido"
	case "min":
		return "Debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		return "No puede superar " + fe.Param() + " caracteres"
	case "gt":
		return "Debe ser mayor que " + fe.Param()
	case "oneof":
		return "Debe ser uno de: " + fe.Param()
	case "numeric":
		return "Debe contener solo dígitos"
	default:
		return "Valor no válido"
	}
}

// mapServiceErrorToHTTP turns service errors into responses. Business errors
// carry their own message and status; anything else is a 500.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrStorageUnavailable) {
		errorResponse(w, r, http.StatusServiceUnavailable, msgStorageDown)
		return
	}
	if msg, ok := apperr.Message(err); ok {
		errorResponse(w, r, apperr.HTTPStatus(err), msg)
		return
	}
	serverErrorResponse(w, r, err)
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		idStr = chi.URLParam(r, "id")
		if idStr == "" {
			return 0, fmt.Errorf("missing ID parameter '%s' in URL path", paramName)
		}
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID parameter '%s': must be a positive integer", paramName)
	}
	return id, nil
}

// requireIdentity fetches the caller set by middleware.Authenticate and
// writes a 401 when the route was mounted without it.
func requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r)
		return models.Identity{}, false
	}
	return identity, true
}

func optionalIdentity(r *http.Request) *models.Identity {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		return nil
	}
	return &identity
}
