package channels

import (
	"fmt"
	"strings"
)

type Category uint8

const (
	CategoryEnvironment Category = iota
	CategoryPowertrain
	CategoryBrakes
	CategorySuspension
	CategorySteering
	CategoryTires
	CategoryVehicle
	CategoryLaps
)

var Categories = []Category{
	CategoryEnvironment,
	CategoryPowertrain,
	CategoryBrakes,
	CategorySuspension,
	CategorySteering,
	CategoryTires,
	CategoryVehicle,
	CategoryLaps,
}

var categoryNames = map[Category]string{
	CategoryEnvironment: "environment",
	CategoryPowertrain:  "powertrain",
	CategoryBrakes:      "brakes",
	CategorySuspension:  "suspension",
	CategorySteering:    "steering",
	CategoryTires:       "tires",
	CategoryVehicle:     "vehicle",
	CategoryLaps:        "laps",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}

	return fmt.Sprintf("Category(%d)", uint8(c))
}

func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("channels: unknown category %q", s)
}

// Channels returns the catalogued channel names of the category.
func (c Category) Channels() []string {
	return append([]string(nil), catalogue[c]...)
}

var catalogue = map[Category][]string{
	CategoryEnvironment: {
		"AirDensity", "AirPressure", "AirTemp", "FogLevel", "RelativeHumidity", "SessionTimeOfDay",
		"SessionTimeTotal", "SolarAltitude", "SolarAzimuth", "TrackTempCrew", "WindDir", "WindVel",
	},
	CategoryPowertrain: {
		"Clutch", "FuelLevel", "FuelLevelPct", "FuelPress", "FuelUsePerHour", "Gear", "ManifoldPress",
		"OilLevel", "OilPress", "OilTemp", "RPM", "ShiftGrindRPM", "ShiftPowerPct", "Throttle",
		"Voltage", "WaterLevel", "WaterTemp",
	},
	CategoryBrakes: {
		"Brake", "BrakeABSactive", "LFbrakeLinePress", "LRbrakeLinePress", "RFbrakeLinePress", "RRbrakeLinePress",
	},
	CategorySuspension: {
		"LFshockDefl", "LFshockVel", "LRshockDefl", "LRshockVel",
		"RFshockDefl", "RFshockVel", "RRshockDefl", "RRshockVel",
	},
	CategorySteering: {
		"SteeringWheelAngle", "SteeringWheelPctTorque", "SteeringWheelTorque",
	},
	CategoryTires: {
		"LFcoldPressure", "LFtempCL", "LFtempCM", "LFtempCR", "LFwearL", "LFwearM", "LFwearR",
		"LRcoldPressure", "LRtempCL", "LRtempCM", "LRtempCR", "LRwearL", "LRwearM", "LRwearR",
		"RFcoldPressure", "RFtempCL", "RFtempCM", "RFtempCR", "RFwearL", "RFwearM", "RFwearR",
		"RRcoldPressure", "RRtempCL", "RRtempCM", "RRtempCR", "RRwearL", "RRwearM", "RRwearR",
	},
	CategoryVehicle: {
		"LatAccel", "LongAccel", "Pitch", "PitchRate", "PlayerCarPosition", "Roll", "RollRate", "Speed",
		"VelocityX", "VelocityY", "VelocityZ", "VertAccel", "Yaw", "YawNorth", "YawRate",
	},
	CategoryLaps: {
		"Lap", "LapBestLap", "LapBestLapTime", "LapCurrentLapTime", "LapDeltaToBestLap", "LapDeltaToOptimalLap",
		"LapDeltaToSessionBestLap", "LapDeltaToSessionLastlLap", "LapDeltaToSessionOptimalLap", "LapDist",
		"LapDistPct", "LapLastLapTime", "RaceLaps",
	},
}
