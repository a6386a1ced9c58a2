package lifecycle

import (
	"time"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
)

// EffectiveReservationStatus reports a confirmed reservation whose end has
// passed as completed. Every other status is returned unchanged.
func EffectiveReservationStatus(stored models.ReservationStatus, date schedule.Date, end schedule.Clock, now time.Time) models.ReservationStatus {
	if stored != models.ReservationConfirmed {
		return stored
	}
	if date.At(end, now.Location()).Before(now) {
		return models.ReservationCompleted
	}
	return stored
}

// CanCancel checks whether userID may cancel r.
func CanCancel(r models.Reservation, userID int) error {
	if !r.OwnedBy(userID) {
		return apperr.New(apperr.ErrForbidden, "No autorizado")
	}
	if r.Status == models.ReservationCancelled {
		return apperr.New(apperr.ErrState, "Esta reserva ya está cancelada")
	}
	if r.Status == models.ReservationCompleted {
		return apperr.New(apperr.ErrState, "No se puede cancelar una reserva completada")
	}
	return nil
}

// CanDelete checks whether userID may remove r from their history.
func CanDelete(r models.Reservation, userID int) error {
	if !r.OwnedBy(userID) {
		return apperr.New(apperr.ErrForbidden, "No autorizado")
	}
	if r.Status != models.ReservationCancelled && r.Status != models.ReservationCompleted {
		return apperr.New(apperr.ErrState, "Solo se pueden eliminar reservas canceladas o completadas")
	}
	return nil
}
