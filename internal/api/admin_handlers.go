package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hotelbook/internal/export"
	"hotelbook/internal/pkg/apperror"
	"hotelbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "username and password are required"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		h.fail(c, err, "login failed")
		return
	}
	c.JSON(http.StatusOK, NewLoginResponse(res))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), capabilityFrom(c)); err != nil {
		h.fail(c, err, "logout failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.bookings.Dashboard(c.Request.Context(), capabilityFrom(c))
	if err != nil {
		h.fail(c, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, NewDashboardResponse(stats))
}

func (h *Handler) AdminListRooms(c *gin.Context) {
	rooms, err := h.rooms.AllRooms(c.Request.Context(), capabilityFrom(c))
	if err != nil {
		h.fail(c, err, "failed to list rooms")
		return
	}
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, NewRoomResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid room: "+err.Error()))
		return
	}
	room := req.toModel()
	if err := h.rooms.CreateRoom(c.Request.Context(), capabilityFrom(c), room); err != nil {
		h.fail(c, err, "failed to create room")
		return
	}
	c.JSON(http.StatusCreated, NewRoomResponse(room))
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "invalid room: "+err.Error()))
		return
	}
	current, err := h.rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to update room")
		return
	}
	room := *current
	req.applyTo(&room)
	if err := h.rooms.UpdateRoom(c.Request.Context(), capabilityFrom(c), &room); err != nil {
		h.fail(c, err, "failed to update room")
		return
	}
	c.JSON(http.StatusOK, NewRoomResponse(&room))
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.rooms.DeleteRoom(c.Request.Context(), capabilityFrom(c), id); err != nil {
		h.fail(c, err, "failed to delete room")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	res, err := h.bookings.ListBookings(c.Request.Context(), capabilityFrom(c), c.Query("status"), page, pageSize)
	if err != nil {
		h.fail(c, err, "failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(res.Bookings), res.Page, res.PageSize, res.Total))
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, "status is required"))
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), capabilityFrom(c), id, req.Version, req.Status)
	if err != nil {
		h.fail(c, err, "failed to update booking status")
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(booking))
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.bookings.DeleteBooking(c.Request.Context(), capabilityFrom(c), id); err != nil {
		h.fail(c, err, "failed to delete booking")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ExportBookings(c *gin.Context) {
	bookings, err := h.bookings.AllBookings(c.Request.Context(), capabilityFrom(c), c.Query("status"))
	if err != nil {
		h.fail(c, err, "failed to export bookings")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings); err != nil {
		h.fail(c, err, "failed to export bookings")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(time.Now())))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
