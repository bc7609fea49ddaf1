package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"rentwheels/pkg/logger"
	"testing"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return f.err
}

func serve(db Pinger, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewHealthHandler(db, logger.Discard()).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoot_Banner(t *testing.T) {
	w := serve(fakePinger{}, "/")
	if w.Code != http.StatusOK || w.Body.String() != Banner {
		t.Errorf("unexpected response %d %q", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	if w := serve(fakePinger{err: errors.New("down")}, "/health"); w.Code != http.StatusOK {
		t.Errorf("liveness must not depend on the database, got %d", w.Code)
	}
}

func TestReady(t *testing.T) {
	if w := serve(fakePinger{}, "/ready"); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := serve(fakePinger{err: errors.New("no reachable servers")}, "/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
