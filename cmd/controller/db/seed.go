package db

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"station-monitor/cmd/controller/model"
)

type districtSeed struct {
	name string
	code string
}

// Malaysian states with the districts currently covered by deployments.
// District codes are the station id prefixes and must stay stable.
var geography = map[string][]districtSeed{
	"Kuala Lumpur": {
		{"Kuala Lumpur", "KUL"},
	},
	"Selangor": {
		{"Petaling Jaya", "PJY"},
		{"Shah Alam", "SAM"},
		{"Klang", "KLG"},
		{"Sepang", "SPG"},
	},
	"Penang": {
		{"George Town", "GTN"},
		{"Seberang Perai", "SPR"},
	},
	"Johor": {
		{"Johor Bahru", "JBU"},
		{"Muar", "MUR"},
		{"Kluang", "KLU"},
	},
	"Sabah": {
		{"Kota Kinabalu", "KKI"},
		{"Sandakan", "SDK"},
	},
	"Sarawak": {
		{"Kuching", "KCH"},
		{"Miri", "MIR"},
	},
	"Perak": {
		{"Ipoh", "IPH"},
		{"Taiping", "TPG"},
	},
	"Kelantan": {
		{"Kota Bharu", "KBR"},
	},
	"Terengganu": {
		{"Kuala Terengganu", "KTR"},
	},
	"Pahang": {
		{"Kuantan", "KTN"},
		{"Cameron Highlands", "CMH"},
	},
}

// Seed inserts the geographic reference data, idempotent on district code.
func Seed() {
	for stateName, districts := range geography {
		state := model.State{Name: stateName}
		if err := MysqlClient.DB.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&state).Error; err != nil {
			logrus.Errorf("seed state %s failed: %s", stateName, err.Error())
			continue
		}
		if state.ID == 0 {
			// already present, fetch the id
			if err := MysqlClient.DB.Where("name=?", stateName).First(&state).Error; err != nil {
				logrus.Errorf("seed state %s failed: %s", stateName, err.Error())
				continue
			}
		}
		for _, d := range districts {
			district := model.District{StateID: state.ID, Name: d.name, Code: d.code}
			if err := MysqlClient.DB.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&district).Error; err != nil {
				logrus.Errorf("seed district %s failed: %s", d.name, err.Error())
			}
		}
	}
}
