// Package shelflife holds the static table of how many days donated food may
// wait before pickup, keyed by food type and storage temperature.
package shelflife

import "github.com/BearBump/FoodBridge/internal/models"

type key struct {
	food models.FoodType
	temp models.TemperatureCategory
}

// Days until expiry counted from the fabrication date. 0 means same day only.
var table = map[key]int{
	{models.FoodTypePrepared, models.TemperatureFrozen}:          30,
	{models.FoodTypePrepared, models.TemperatureRefrigerated}:    3,
	{models.FoodTypePrepared, models.TemperatureRoomTemperature}: 0,
	{models.FoodTypePrepared, models.TemperatureHotCooked}:       0,

	{models.FoodTypeProduce, models.TemperatureFrozen}:          30,
	{models.FoodTypeProduce, models.TemperatureRefrigerated}:    5,
	{models.FoodTypeProduce, models.TemperatureRoomTemperature}: 2,
	{models.FoodTypeProduce, models.TemperatureHotCooked}:       2,

	{models.FoodTypeBakery, models.TemperatureFrozen}:          30,
	{models.FoodTypeBakery, models.TemperatureRefrigerated}:    3,
	{models.FoodTypeBakery, models.TemperatureRoomTemperature}: 1,
	{models.FoodTypeBakery, models.TemperatureHotCooked}:       1,

	{models.FoodTypeDairyEggs, models.TemperatureFrozen}:          30,
	{models.FoodTypeDairyEggs, models.TemperatureRefrigerated}:    3,
	{models.FoodTypeDairyEggs, models.TemperatureRoomTemperature}: 0,
	{models.FoodTypeDairyEggs, models.TemperatureHotCooked}:       0,

	{models.FoodTypeMeatPoultry, models.TemperatureFrozen}:          30,
	{models.FoodTypeMeatPoultry, models.TemperatureRefrigerated}:    1,
	{models.FoodTypeMeatPoultry, models.TemperatureRoomTemperature}: 0,
	{models.FoodTypeMeatPoultry, models.TemperatureHotCooked}:       0,

	{models.FoodTypeSeafood, models.TemperatureFrozen}:          30,
	{models.FoodTypeSeafood, models.TemperatureRefrigerated}:    1,
	{models.FoodTypeSeafood, models.TemperatureRoomTemperature}: 0,
	{models.FoodTypeSeafood, models.TemperatureHotCooked}:       0,

	{models.FoodTypePantry, models.TemperatureFrozen}:          60,
	{models.FoodTypePantry, models.TemperatureRefrigerated}:    30,
	{models.FoodTypePantry, models.TemperatureRoomTemperature}: 30,
	{models.FoodTypePantry, models.TemperatureHotCooked}:       30,

	{models.FoodTypeBeverages, models.TemperatureFrozen}:          30,
	{models.FoodTypeBeverages, models.TemperatureRefrigerated}:    7,
	{models.FoodTypeBeverages, models.TemperatureRoomTemperature}: 7,
	{models.FoodTypeBeverages, models.TemperatureHotCooked}:       0,
}

// Lookup returns the shelf life in days. ok is false when the pair is not in
// the table, which callers treat as "not enough data", not as an error.
func Lookup(food models.FoodType, temp models.TemperatureCategory) (days int, ok bool) {
	days, ok = table[key{food, temp}]
	return days, ok
}

const (
	WarningColdPackaging   = "Packaging suggests cold storage, confirm temperature"
	WarningFrozenPackaging = "Packaging suggests frozen storage, confirm temperature"
)

// PackagingWarnings flags packaging that contradicts the declared temperature.
// An empty temperature only suppresses the frozen-container check.
func PackagingWarnings(packaging models.PackagingType, temp models.TemperatureCategory) []string {
	var out []string
	if packaging == models.PackagingRefrigeratedContainer &&
		(temp == models.TemperatureRoomTemperature || temp == models.TemperatureHotCooked) {
		out = append(out, WarningColdPackaging)
	}
	if packaging == models.PackagingFrozenContainer && temp != "" && temp != models.TemperatureFrozen {
		out = append(out, WarningFrozenPackaging)
	}
	return out
}
