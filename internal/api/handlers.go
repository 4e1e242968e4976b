package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"
	"hotelbook/internal/pkg/apperror"
	"hotelbook/internal/pkg/response"
	"hotelbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	bookings domain.BookingService
	rooms    domain.RoomService
	auth     domain.AuthService
	logger   *zerolog.Logger
}

func NewHandler(bookings domain.BookingService, rooms domain.RoomService, authService domain.AuthService, logger *zerolog.Logger) *Handler {
	return &Handler{
		bookings: bookings,
		rooms:    rooms,
		auth:     authService,
		logger:   logger,
	}
}

// fail logs internal failures and writes the mapped error response.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	appErr := mapError(err, fallback)
	if appErr.Code >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("request_id", requestIDFrom(c)).Msg(fallback)
	}
	response.Error(c, appErr)
}

func (h *Handler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()
	roomType := strings.TrimSpace(c.Query("type"))

	ci, co := c.Query("check_in"), c.Query("check_out")
	if ci == "" && co == "" {
		rooms, err := h.rooms.ListRooms(ctx, roomType)
		if err != nil {
			h.fail(c, err, "failed to list rooms")
			return
		}
		out := make([]RoomResponse, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, NewRoomResponse(r))
		}
		c.JSON(http.StatusOK, gin.H{"rooms": out})
		return
	}

	checkIn, checkOut, err := parseRange(ci, co)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	rooms, err := h.rooms.ListRoomsWithAvailability(ctx, roomType, checkIn, checkOut)
	if err != nil {
		h.fail(c, err, "failed to list rooms")
		return
	}
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		resp := NewRoomResponse(r.RoomType)
		free := r.AvailableUnits
		resp.AvailableUnits = &free
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	room, err := h.rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load room")
		return
	}
	c.JSON(http.StatusOK, NewRoomResponse(room))
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "room_id, check_in and check_out are required"))
		return
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	res, err := h.bookings.CheckAvailability(c.Request.Context(), models.AvailabilityQuery{
		RoomID:   req.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.fail(c, err, "failed to check availability")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PlaceBooking(c *gin.Context) {
	var req PlaceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid booking request"))
		return
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	booking, err := h.bookings.PlaceBooking(c.Request.Context(), req.toModel(checkIn, checkOut))
	if err != nil {
		h.fail(c, err, "booking could not be saved, please try again")
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(booking))
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	booking, err := h.bookings.LookupBooking(c.Request.Context(), id, c.Query("email"))
	if err != nil {
		h.fail(c, err, "failed to load booking")
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(booking))
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid id"))
		return 0, false
	}
	return id, true
}

func parseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	ci, err := models.ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, &service.ValidationError{Field: "check_in", Message: err.Error()}
	}
	co, err := models.ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, &service.ValidationError{Field: "check_out", Message: err.Error()}
	}
	return ci, co, nil
}
