package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"rentwheels/internal/bookings/service"
	apperrors "rentwheels/pkg/errors"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	createFunc func(ctx context.Context, booking *model.Booking) (*service.Outcome, error)
	cancelFunc func(ctx context.Context, id string) error
	listFunc   func(ctx context.Context, email string) ([]*model.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, booking *model.Booking) (*service.Outcome, error) {
	return m.createFunc(ctx, booking)
}

func (m *mockBookingService) CancelBooking(ctx context.Context, id string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingService) ListBookings(ctx context.Context, email string) ([]*model.Booking, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, email)
	}
	return nil, nil
}

func serve(svc service.BookingService, method, path, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreate_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		outcome     *service.Outcome
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "accepted",
			outcome:     &service.Outcome{Accepted: true, Message: service.MessageBooked, Booking: &model.Booking{ID: "b1", CarID: "c1"}},
			wantStatus:  http.StatusCreated,
			wantMessage: service.MessageBooked,
		},
		{
			name:        "already booked",
			outcome:     &service.Outcome{Message: service.MessageAlreadyBooked},
			wantStatus:  http.StatusOK,
			wantMessage: service.MessageAlreadyBooked,
		},
		{
			name:        "missing fields",
			outcome:     &service.Outcome{Message: "Missing required fields: carId"},
			wantStatus:  http.StatusOK,
			wantMessage: "Missing required fields: carId",
		},
		{
			name:       "car not found",
			err:        apperrors.NotFoundWithID("Car", "c1"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFunc: func(ctx context.Context, booking *model.Booking) (*service.Outcome, error) {
					if booking.CarID != "c1" {
						t.Errorf("expected decoded carId, got %q", booking.CarID)
					}
					return tt.outcome, tt.err
				},
			}

			w := serve(svc, http.MethodPost, "/bookings", `{"carId":"c1","userName":"Rahim","userEmail":"r@example.com"}`)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if tt.wantMessage != "" && body["message"] != tt.wantMessage {
				t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
			}
			if tt.wantStatus == http.StatusCreated && body["data"] == nil {
				t.Error("expected booking in data")
			}
		})
	}
}

func TestList_PassesEmail(t *testing.T) {
	var got string
	svc := &mockBookingService{
		listFunc: func(ctx context.Context, email string) ([]*model.Booking, error) {
			got = email
			return []*model.Booking{{ID: "b1"}}, nil
		},
	}

	w := serve(svc, http.MethodGet, "/bookings?email=r@example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != "r@example.com" {
		t.Errorf("expected email filter, got %q", got)
	}
}

func TestCancel_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"cancelled", nil, http.StatusOK},
		{"absent", apperrors.NotFoundWithID("Booking", "x"), http.StatusNotFound},
		{"malformed", apperrors.InvalidID("booking", "x"), http.StatusBadRequest},
		{"storage failure", apperrors.Internal("Failed to cancel booking", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				cancelFunc: func(ctx context.Context, id string) error {
					if id != "x" {
						t.Errorf("expected id x, got %q", id)
					}
					return tt.err
				},
			}
			w := serve(svc, http.MethodDelete, "/bookings/x", "")
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
