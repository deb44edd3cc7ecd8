package expiry

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/shelflife"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

const (
	WarningHotPrepared  = "Hot food must be cooled and refrigerated to be eligible for donation"
	WarningHotProduce   = "Produce is usually not hot/cooked"
	WarningHotPantry    = "Pantry items are usually stored at room temperature"
	WarningHotBeverages = "Hot beverages are same-day donations"
)

// Input is the raw draft state. Empty enum values mean "not chosen yet".
type Input struct {
	FoodType        models.FoodType
	Temperature     models.TemperatureCategory
	Packaging       models.PackagingType
	FabricationDate string
	// Zone decides the calendar date of a full fabrication timestamp. Nil is UTC.
	Zone *time.Location
}

var notAtRoomTemperature = map[models.FoodType]bool{
	models.FoodTypePrepared:    true,
	models.FoodTypeDairyEggs:   true,
	models.FoodTypeMeatPoultry: true,
	models.FoodTypeSeafood:     true,
}

var notHot = map[models.FoodType]bool{
	models.FoodTypeDairyEggs:   true,
	models.FoodTypeMeatPoultry: true,
	models.FoodTypeSeafood:     true,
}

var hotWarnings = []struct {
	food    models.FoodType
	warning string
}{
	{models.FoodTypePrepared, WarningHotPrepared},
	{models.FoodTypeProduce, WarningHotProduce},
	{models.FoodTypePantry, WarningHotPantry},
	{models.FoodTypeBeverages, WarningHotBeverages},
}

// Eligible reports whether the combination may be donated at all. Missing
// inputs are permissive.
func Eligible(food models.FoodType, temp models.TemperatureCategory) bool {
	switch temp {
	case models.TemperatureRoomTemperature:
		return !notAtRoomTemperature[food]
	case models.TemperatureHotCooked:
		return !notHot[food]
	default:
		return true
	}
}

// Warnings lists advisory messages in a fixed order: packaging checks first,
// then food/temperature checks.
func Warnings(food models.FoodType, temp models.TemperatureCategory, packaging models.PackagingType) []string {
	out := []string{}
	out = append(out, shelflife.PackagingWarnings(packaging, temp)...)
	if temp == models.TemperatureHotCooked {
		for _, w := range hotWarnings {
			if w.food == food {
				out = append(out, w.warning)
			}
		}
	}
	return out
}

// Suggest computes the expiry suggestion for a draft. It never fails: when
// data is missing the date fields stay nil.
func Suggest(in Input) models.ExpirySuggestion {
	res := models.ExpirySuggestion{
		Eligible: Eligible(in.FoodType, in.Temperature),
		Warnings: Warnings(in.FoodType, in.Temperature, in.Packaging),
	}

	days, ok := shelflife.Lookup(in.FoodType, in.Temperature)
	if !ok {
		return res
	}
	res.ShelfLifeDays = &days

	fabricated, ok := ParseFabricationDate(in.FabricationDate, in.Zone)
	if !ok {
		return res
	}

	expires := fabricated.AddDays(days)
	explanation := explain(in.FoodType, in.Temperature, days, expires)
	res.SuggestedExpiryDate = &expires
	res.Explanation = &explanation
	return res
}

// ParseFabricationDate accepts YYYY-MM-DD as a calendar date or a timestamp,
// whose calendar date is taken in zone.
func ParseFabricationDate(raw string, zone *time.Location) (civil.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return civil.Date{}, false
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, true
	}
	t, ok := tzclock.ToInstant(s)
	if !ok {
		return civil.Date{}, false
	}
	return tzclock.DateIn(t, zone), true
}

func explain(food models.FoodType, temp models.TemperatureCategory, days int, expires civil.Date) string {
	subject := fmt.Sprintf("%s (%s)", food.Label(), temp.Label())
	switch days {
	case 0:
		return fmt.Sprintf("%s must be picked up the same day: expires %s.", subject, expires)
	case 1:
		return fmt.Sprintf("%s keeps for 1 day: expires %s.", subject, expires)
	default:
		return fmt.Sprintf("%s keeps for %d days: expires %s.", subject, days, expires)
	}
}
