package api

import (
	"errors"
	"net/http"

	"hotelbook/internal/auth"
	"hotelbook/internal/database"
	"hotelbook/internal/pkg/apperror"
	"hotelbook/internal/service"
)

// mapError translates service and store errors into client-facing ones.
// fallback is the message used when the failure is internal.
func mapError(err error, fallback string) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return apperror.Wrap(err, http.StatusBadRequest, verr.Error())
	}

	var conflict *database.AvailabilityError
	if errors.As(err, &conflict) {
		return apperror.Wrap(err, http.StatusConflict, conflict.Error()).WithDetails(map[string]any{
			"room_id":   conflict.RoomID,
			"room_name": conflict.RoomName,
			"requested": conflict.Requested,
			"available": conflict.Available,
			"shortfall": conflict.Shortfall(),
		})
	}

	switch {
	case errors.Is(err, database.ErrNotFound):
		return apperror.Wrap(err, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrNotAvailable):
		return apperror.Wrap(err, http.StatusConflict, "not enough rooms available")
	case errors.Is(err, database.ErrRoomNotOffered):
		return apperror.Wrap(err, http.StatusConflict, "room type is not offered for booking")
	case errors.Is(err, database.ErrRoomInUse):
		return apperror.Wrap(err, http.StatusConflict, "room type has active bookings and cannot be deleted")
	case errors.Is(err, database.ErrConcurrentModification):
		return apperror.Wrap(err, http.StatusConflict, "record was modified by someone else, reload and retry")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperror.Wrap(err, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrUnauthorized):
		return apperror.Wrap(err, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, auth.ErrForbidden):
		return apperror.Wrap(err, http.StatusForbidden, "admin access required")
	case errors.Is(err, service.ErrLoginThrottled):
		return apperror.Wrap(err, http.StatusTooManyRequests, "too many login attempts, try again later")
	}

	return apperror.Wrap(err, http.StatusInternalServerError, fallback)
}
