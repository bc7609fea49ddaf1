package mongo

import (
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverEveryRepository(t *testing.T) {
	var names []string
	for _, def := range Collections() {
		names = append(names, def.Name)
		if def.Validator == nil {
			t.Errorf("collection %s has no validator", def.Name)
		}
		if len(def.Indexes) == 0 {
			t.Errorf("collection %s has no indexes", def.Name)
		}
	}

	for _, want := range []string{"Users", "Cars", "Bookings"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing collection %s in %v", want, names)
		}
	}
}

func TestUsersIndexes_EmailIsUnique(t *testing.T) {
	for _, idx := range UsersIndexes {
		keys, ok := idx.Keys.(bson.D)
		if !ok || len(keys) != 1 || keys[0].Key != "email" {
			continue
		}
		if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Fatal("email index must be unique")
		}
		return
	}
	t.Fatal("no index on email")
}

func TestBookingValidator_RequiresCoreFields(t *testing.T) {
	required, ok := validatorsSchema(t, Collections(), "Bookings")["required"].([]string)
	if !ok {
		t.Fatal("required list missing")
	}
	for _, field := range []string{"carId", "userName", "userEmail", "bookedAt"} {
		if !slices.Contains(required, field) {
			t.Errorf("booking schema should require %s", field)
		}
	}
}

func TestCarValidator_StatusIsOptional(t *testing.T) {
	required, _ := validatorsSchema(t, Collections(), "Cars")["required"].([]string)
	if slices.Contains(required, "status") {
		t.Error("status must stay optional for listings stored without it")
	}
}

func validatorsSchema(t *testing.T, defs []CollectionDefinition, name string) bson.M {
	t.Helper()
	for _, def := range defs {
		if def.Name != name {
			continue
		}
		schema, ok := def.Validator["$jsonSchema"].(bson.M)
		if !ok {
			t.Fatalf("collection %s has no $jsonSchema", name)
		}
		return schema
	}
	t.Fatalf("collection %s not defined", name)
	return nil
}
