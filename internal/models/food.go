package models

// FoodType is the canonical category of donated food.
type FoodType string

const (
	FoodTypePrepared    FoodType = "PREPARED"
	FoodTypeProduce     FoodType = "PRODUCE"
	FoodTypeBakery      FoodType = "BAKERY"
	FoodTypeDairyEggs   FoodType = "DAIRY_EGGS"
	FoodTypeMeatPoultry FoodType = "MEAT_POULTRY"
	FoodTypeSeafood     FoodType = "SEAFOOD"
	FoodTypePantry      FoodType = "PANTRY"
	FoodTypeBeverages   FoodType = "BEVERAGES"
)

// FoodTypes lists every canonical food type in display order.
var FoodTypes = []FoodType{
	FoodTypePrepared,
	FoodTypeProduce,
	FoodTypeBakery,
	FoodTypeDairyEggs,
	FoodTypeMeatPoultry,
	FoodTypeSeafood,
	FoodTypePantry,
	FoodTypeBeverages,
}

var foodTypeLabels = map[FoodType]string{
	FoodTypePrepared:    "Prepared Meals",
	FoodTypeProduce:     "Fruits & Vegetables",
	FoodTypeBakery:      "Bakery & Bread",
	FoodTypeDairyEggs:   "Dairy & Eggs",
	FoodTypeMeatPoultry: "Meat & Poultry",
	FoodTypeSeafood:     "Seafood",
	FoodTypePantry:      "Pantry Items",
	FoodTypeBeverages:   "Beverages",
}

func (f FoodType) Valid() bool {
	_, ok := foodTypeLabels[f]
	return ok
}

// Label returns the display label, or the raw code for unknown values.
func (f FoodType) Label() string {
	if l, ok := foodTypeLabels[f]; ok {
		return l
	}
	return string(f)
}

// TemperatureCategory is the storage condition of an item at donation time.
type TemperatureCategory string

const (
	TemperatureFrozen          TemperatureCategory = "FROZEN"
	TemperatureRefrigerated    TemperatureCategory = "REFRIGERATED"
	TemperatureRoomTemperature TemperatureCategory = "ROOM_TEMPERATURE"
	TemperatureHotCooked       TemperatureCategory = "HOT_COOKED"
)

var TemperatureCategories = []TemperatureCategory{
	TemperatureFrozen,
	TemperatureRefrigerated,
	TemperatureRoomTemperature,
	TemperatureHotCooked,
}

var temperatureLabels = map[TemperatureCategory]string{
	TemperatureFrozen:          "Frozen",
	TemperatureRefrigerated:    "Refrigerated",
	TemperatureRoomTemperature: "Room Temperature",
	TemperatureHotCooked:       "Hot/Cooked",
}

func (t TemperatureCategory) Valid() bool {
	_, ok := temperatureLabels[t]
	return ok
}

func (t TemperatureCategory) Label() string {
	if l, ok := temperatureLabels[t]; ok {
		return l
	}
	return string(t)
}

// PackagingType is advisory only: it produces warnings, never rejections.
type PackagingType string

const (
	PackagingSealed                PackagingType = "SEALED"
	PackagingLoose                 PackagingType = "LOOSE"
	PackagingRefrigeratedContainer PackagingType = "REFRIGERATED_CONTAINER"
	PackagingFrozenContainer       PackagingType = "FROZEN_CONTAINER"
	PackagingVacuumPacked          PackagingType = "VACUUM_PACKED"
	PackagingBoxed                 PackagingType = "BOXED"
	PackagingWrapped               PackagingType = "WRAPPED"
	PackagingBulk                  PackagingType = "BULK"
	PackagingOther                 PackagingType = "OTHER"
)

var validPackaging = map[PackagingType]bool{
	PackagingSealed:                true,
	PackagingLoose:                 true,
	PackagingRefrigeratedContainer: true,
	PackagingFrozenContainer:       true,
	PackagingVacuumPacked:          true,
	PackagingBoxed:                 true,
	PackagingWrapped:               true,
	PackagingBulk:                  true,
	PackagingOther:                 true,
}

func (p PackagingType) Valid() bool {
	return validPackaging[p]
}
