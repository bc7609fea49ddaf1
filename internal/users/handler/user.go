package handler

import (
	"net/http"

	"rentwheels/internal/users/service"
	httputil "rentwheels/pkg/http"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user model.User
	if err := httputil.DecodeJSON(r, &user); err != nil {
		h.writeError(w, err)
		return
	}

	registration, err := h.service.RegisterIfAbsent(r.Context(), &user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if !registration.Created {
		if err := httputil.WriteMessage(w, registration.Message); err != nil {
			h.log.Error("failed to write message response", "handler", "Register", "operation", "WriteMessage", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, registration.User, registration.Message); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/users", h.Register)
}
