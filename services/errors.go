package services

import "github.com/Dosada05/sports-center/apperr"

// Business errors returned to clients. Messages are part of the API: the web
// client matches on some of them.
var (
	ErrNotFound     = apperr.New(apperr.ErrNotFound, "No encontrado")
	ErrUnauthorized = apperr.New(apperr.ErrForbidden, "No autorizado")

	ErrSlotTaken           = apperr.New(apperr.ErrConflict, "Ya existe una reserva en ese horario")
	ErrAdminCannotReserve  = apperr.New(apperr.ErrForbidden, "Los administradores no pueden reservar instalaciones")
	ErrReservationInPast   = apperr.New(apperr.ErrState, "No se puede reservar en una fecha u hora pasada")
	ErrPaymentRequired     = apperr.New(apperr.ErrValidation, "Se requiere la confirmación del pago")
	ErrAlreadyCancelled    = apperr.New(apperr.ErrState, "Esta reserva ya está cancelada")
	ErrFacilityHasBookings = apperr.New(apperr.ErrState, "No se puede eliminar una instalación con reservas activas")
	ErrInvalidCategory     = apperr.New(apperr.ErrValidation, "Categoría de instalación no válida")

	ErrAdminCannotEnroll       = apperr.New(apperr.ErrForbidden, "Los administradores no pueden inscribirse a torneos")
	ErrTournamentNotFound      = apperr.New(apperr.ErrNotFound, "Torneo no encontrado")
	ErrTournamentInactive      = apperr.New(apperr.ErrNotFound, "Torneo no disponible")
	ErrEnrollmentClosed        = apperr.New(apperr.ErrState, "Las inscripciones están cerradas. El torneo ya comenzó o es hoy.")
	ErrTournamentNotOpen       = apperr.New(apperr.ErrState, "El torneo no está abierto para inscripciones")
	ErrAlreadyEnrolled         = apperr.New(apperr.ErrConflict, "Ya estás inscrito en este torneo")
	ErrTournamentFull          = apperr.New(apperr.ErrCapacity, "El torneo está completo")
	ErrNotEnrolled             = apperr.New(apperr.ErrNotFound, "No estás inscrito en este torneo")
	ErrTournamentFinished      = apperr.New(apperr.ErrImmutableState, "No se puede editar un torneo finalizado")
	ErrTournamentDatesRequired = apperr.New(apperr.ErrValidation, "Las fechas de inicio y fin son obligatorias")
	ErrTournamentDates         = apperr.New(apperr.ErrInvalidRange, "La fecha de fin debe ser igual o posterior a la de inicio")
	ErrNotEnoughEntrants       = apperr.New(apperr.ErrState, "El torneo necesita al menos dos inscritos para generar el cuadro")
	ErrUnknownBracketFormat    = apperr.New(apperr.ErrValidation, "Formato de cuadro no válido")

	ErrAdminCannotSubscribe = apperr.New(apperr.ErrForbidden, "Los administradores no pueden hacerse socios")
	ErrAdminCannotCancelSub = apperr.New(apperr.ErrForbidden, "Los administradores no pueden cancelar suscripciones")
	ErrNotAMember           = apperr.New(apperr.ErrState, "No eres socio, no hay suscripción que cancelar")

	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "Credenciales incorrectas")
	ErrEmailTaken         = apperr.New(apperr.ErrConflict, "El email ya está registrado")
	ErrInvalidToken       = apperr.New(apperr.ErrUnauthorized, "No autenticado")

	ErrInvalidAmount = apperr.New(apperr.ErrValidation, "El importe debe ser mayor que cero")
	ErrCardDeclined  = apperr.New(apperr.ErrState, "Pago rechazado")
)
