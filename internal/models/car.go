package models

import (
	"github.com/dkoren/drivenet/internal/types"
)

// Car represents a tracked vehicle. A car is owned exclusively by its
// creator; its fuel logs live in the nested logs collection
// (cars/{carId}/logs).
type Car struct {
	ID         string         `json:"id,omitempty"`
	UserID     string         `json:"userId"`
	Make       string         `json:"make"`
	Model      string         `json:"model"`
	Year       types.FlexInt  `json:"year"`
	Plate      string         `json:"plate,omitempty"`
	FuelType   string         `json:"fuelType,omitempty"`
	Horsepower types.FlexInt  `json:"horsepower,omitempty"`
	Image      string         `json:"image,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
}

// Condition is the driving-condition tag on a fuel log, used to partition
// consumption analytics.
type Condition string

const (
	ConditionCity    Condition = "city"
	ConditionHighway Condition = "highway"
	ConditionOffroad Condition = "offroad"
	ConditionMixed   Condition = "mixed"
)

// Conditions lists the known driving conditions in display order.
func Conditions() []Condition {
	return []Condition{ConditionCity, ConditionHighway, ConditionOffroad, ConditionMixed}
}

// Known reports whether c is one of the fixed enumeration values. A log
// with an unknown condition still counts toward overall consumption but
// draws on no per-condition line.
func (c Condition) Known() bool {
	switch c {
	case ConditionCity, ConditionHighway, ConditionOffroad, ConditionMixed:
		return true
	}
	return false
}

// FuelLog is one refuelling entry of a car. Liters and km arrive as numeric
// strings from older clients, hence the flex types. An entry with
// non-positive or non-finite liters or km is stored and displayed but is
// excluded from every aggregate.
type FuelLog struct {
	ID        string            `json:"id,omitempty"`
	Date      string            `json:"date"` // ISO calendar date
	Liters    types.FlexFloat64 `json:"liters"`
	Km        types.FlexFloat64 `json:"km"`
	Price     types.FlexFloat64 `json:"price,omitempty"`
	Condition Condition         `json:"condition"`
	Odometer  types.FlexFloat64 `json:"km_stand,omitempty"`
	AC        types.FlexBool    `json:"ac,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
}
