package handler

import (
	"net/http"

	"rentwheels/internal/cars/service"
	httputil "rentwheels/pkg/http"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Collection views served under /cars/:id. httprouter cannot register these
// next to the :id wildcard, so GetByID dispatches them itself.
const (
	viewNewest   = "newest"
	viewTopRated = "topRatedCars"
	viewRandom   = "randomCars"
	viewBrowse   = "browsecars"
)

type CarHandler struct {
	listings service.ListingService
	cars     service.CarService
	log      *logger.Logger
}

func NewCarHandler(listings service.ListingService, cars service.CarService, log *logger.Logger) *CarHandler {
	return &CarHandler{
		listings: listings,
		cars:     cars,
		log:      log,
	}
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var car model.Car
	if err := httputil.DecodeJSON(r, &car); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.cars.Create(r.Context(), &car); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, car, "Car created successfully"); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *CarHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cars, err := h.listings.ListAll(r.Context())
	h.writeList(w, "ListAll", cars, err)
}

func (h *CarHandler) ListNewest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cars, err := h.listings.ListNewest(r.Context())
	h.writeList(w, "ListNewest", cars, err)
}

func (h *CarHandler) ListTopRated(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cars, err := h.listings.ListTopRated(r.Context())
	h.writeList(w, "ListTopRated", cars, err)
}

func (h *CarHandler) ListRandom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cars, err := h.listings.ListRandomSample(r.Context())
	h.writeList(w, "ListRandom", cars, err)
}

func (h *CarHandler) Browse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cars, err := h.listings.Browse(r.Context())
	h.writeList(w, "Browse", cars, err)
}

func (h *CarHandler) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cars, err := h.listings.ListByOwner(r.Context(), httputil.OptionalQuery(r, "email"))
	h.writeList(w, "ListByOwner", cars, err)
}

func (h *CarHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	switch id {
	case viewNewest:
		h.ListNewest(w, r, ps)
		return
	case viewTopRated:
		h.ListTopRated(w, r, ps)
		return
	case viewRandom:
		h.ListRandom(w, r, ps)
		return
	case viewBrowse:
		h.Browse(w, r, ps)
		return
	}

	car, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, car); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.CarUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.cars.Update(r.Context(), id, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteMessage(w, "Car updated successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Update", "operation", "WriteMessage", "error", err)
	}
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.cars.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Car deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *CarHandler) writeList(w http.ResponseWriter, name string, cars []*model.Car, err error) {
	if err != nil {
		h.writeError(w, name, err)
		return
	}
	if cars == nil {
		cars = []*model.Car{}
	}
	if err := httputil.WriteSuccess(w, cars); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *CarHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CarHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/cars", h.Create)
	router.GET("/cars", h.ListAll)
	router.GET("/cars/:id", h.GetByID)
	router.PATCH("/cars/:id", h.Update)
	router.DELETE("/cars/:id", h.Delete)
	router.GET("/myListing", h.ListByOwner)
}
