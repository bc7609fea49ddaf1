package handler

import (
	"net/http"

	"rentwheels/internal/bookings/service"
	httputil "rentwheels/pkg/http"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// Create answers 201 with the booking when accepted and 200 with a message
// when the request was rejected (missing fields, car already booked).
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := httputil.DecodeJSON(r, &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	outcome, err := h.service.CreateBooking(r.Context(), &booking)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if !outcome.Accepted {
		if err := httputil.WriteMessage(w, outcome.Message); err != nil {
			h.log.Error("failed to write message response", "handler", "Create", "operation", "WriteMessage", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, outcome.Booking, outcome.Message); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListBookings(r.Context(), httputil.OptionalQuery(r, "email"))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.CancelBooking(r.Context(), id); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, service.MessageCancelled); err != nil {
		h.log.Error("failed to write message response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bookings", h.Create)
	router.GET("/bookings", h.List)
	router.DELETE("/bookings/:id", h.Cancel)
}
