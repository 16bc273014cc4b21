package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestSchemaHeader(t *testing.T) {
	s := Schema{Name: "spp-biomass-log.csv", RegionColumn: "EcoName", Species: []string{"acersacc", "betualle"}}
	want := []string{"Time", "EcoName", "NumActiveSites", "AboveGroundBiomass_acersacc", "AboveGroundBiomass_betualle"}
	if got := s.Header(); !reflect.DeepEqual(got, want) {
		t.Fatalf("header %v want %v", got, want)
	}
}

func TestCheckRowsAndValidate(t *testing.T) {
	s := Schema{Name: "log", RegionColumn: "EcoName", Species: []string{"a"}}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (Schema{Name: "log"}).Validate(); err == nil {
		t.Fatalf("expected missing region column error")
	}
	if err := CheckRows(s, []Row{{AboveGroundBiomass: []float64{1}}}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := CheckRows(s, []Row{{}}); !errors.Is(err, ErrWidthMismatch) {
		t.Fatalf("expected ErrWidthMismatch, got %v", err)
	}
}
