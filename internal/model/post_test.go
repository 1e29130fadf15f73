package model

import "testing"

func TestPostType_Known(t *testing.T) {
	known := []PostType{PostTypeTaskPromo, PostTypeSwap, PostTypeFreecycle, PostTypeNotice, PostTypeVolunteerSlotPack}
	for _, pt := range known {
		if !pt.Known() {
			t.Fatalf("%s must be known", pt)
		}
		if err := ValidatePostType(pt); err != nil {
			t.Fatalf("ValidatePostType(%s): %v", pt, err)
		}
	}

	if PostType("garage_sale").Known() {
		t.Fatalf("unexpected known type")
	}
	if err := ValidatePostType("garage_sale"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestPostType_FieldCarriers(t *testing.T) {
	withCalendar := map[PostType]bool{
		PostTypeTaskPromo:         false,
		PostTypeSwap:              true,
		PostTypeFreecycle:         true,
		PostTypeNotice:            false,
		PostTypeVolunteerSlotPack: true,
	}
	for pt, want := range withCalendar {
		if got := pt.CarriesCalendar(); got != want {
			t.Fatalf("CarriesCalendar(%s) = %v, want %v", pt, got, want)
		}
	}

	if !PostTypeVolunteerSlotPack.CarriesSlotCount() || PostTypeSwap.CarriesSlotCount() {
		t.Fatalf("slot count carrier mismatch")
	}
	if !PostTypeTaskPromo.CarriesTaskLink() || PostTypeNotice.CarriesTaskLink() {
		t.Fatalf("task link carrier mismatch")
	}
}
