package repository

import (
	"rentwheels/pkg/model"
	"testing"
)

func TestBuildSetFields_OnlyPresentFields(t *testing.T) {
	name := "Civic"
	price := 0.0

	fields := buildSetFields(&model.CarUpdate{CarName: &name, RentPrice: &price})

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", fields)
	}
	if fields["carName"] != "Civic" {
		t.Errorf("unexpected carName %v", fields["carName"])
	}
	if fields["rentPrice"] != 0.0 {
		t.Errorf("zero price must still be written, got %v", fields["rentPrice"])
	}
	if _, ok := fields["status"]; ok {
		t.Error("status must never be patched")
	}
}

func TestBuildSetFields_Empty(t *testing.T) {
	if fields := buildSetFields(nil); len(fields) != 0 {
		t.Errorf("expected no fields for nil patch, got %v", fields)
	}
	if fields := buildSetFields(&model.CarUpdate{}); len(fields) != 0 {
		t.Errorf("expected no fields for empty patch, got %v", fields)
	}
}

func TestBuildSetFields_WritesExtraKeys(t *testing.T) {
	fields := buildSetFields(&model.CarUpdate{Extra: model.Extra{"seats": 7.0}})

	if len(fields) != 1 || fields["seats"] != 7.0 {
		t.Fatalf("expected only seats=7, got %v", fields)
	}
}

func TestBuildSetFields_RefusesReservedAndOperatorKeys(t *testing.T) {
	fields := buildSetFields(&model.CarUpdate{Extra: model.Extra{
		"status":      "unavailable",
		"_id":         "64b7f0c2a1b2c3d4e5f60718",
		"createdAt":   "2020-01-01",
		"$where":      "1",
		"owner.email": "x@example.com",
		"fuelType":    "petrol",
	}})

	if len(fields) != 1 || fields["fuelType"] != "petrol" {
		t.Fatalf("expected only fuelType, got %v", fields)
	}
}
