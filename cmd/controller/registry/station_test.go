package registry

import (
	"errors"
	"testing"
)

func TestNextStationID(t *testing.T) {
	cases := []struct {
		code     string
		existing int64
		want     string
	}{
		{"PJY", 0, "PJY001"},
		{"PJY", 8, "PJY009"},
		{"SAM", 99, "SAM100"},
		{"KLG", 999, "KLG1000"},
	}
	for _, tc := range cases {
		if got := NextStationID(tc.code, tc.existing); got != tc.want {
			t.Errorf("NextStationID(%q, %d) = %q, want %q", tc.code, tc.existing, got, tc.want)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateStationInputValidate(t *testing.T) {
	valid := CreateStationInput{
		Name:               "Taman Jaya",
		StateID:            1,
		DistrictID:         2,
		Address:            "Jalan Timur, Petaling Jaya",
		Latitude:           floatPtr(3.1048),
		Longitude:          floatPtr(101.6424),
		MacAddress:         "aa:bb:cc:dd:ee:ff",
		DataInterval:       30,
		DataCollectionTime: 5,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input rejected: %s", err.Error())
	}

	cases := []struct {
		name    string
		mutate  func(*CreateStationInput)
		wantMac bool
	}{
		{"empty name", func(in *CreateStationInput) { in.Name = "" }, false},
		{"missing state", func(in *CreateStationInput) { in.StateID = 0 }, false},
		{"missing district", func(in *CreateStationInput) { in.DistrictID = 0 }, false},
		{"bad mac", func(in *CreateStationInput) { in.MacAddress = "not-a-mac" }, true},
		{"short mac", func(in *CreateStationInput) { in.MacAddress = "aa:bb:cc" }, true},
		{"zero interval", func(in *CreateStationInput) { in.DataInterval = 0 }, false},
		{"zero collection time", func(in *CreateStationInput) { in.DataCollectionTime = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := in.Validate()
			if err == nil {
				t.Fatal("expected rejection")
			}
			if tc.wantMac && !errors.Is(err, ErrInvalidMac) {
				t.Errorf("expected ErrInvalidMac, got %v", err)
			}
		})
	}
}
