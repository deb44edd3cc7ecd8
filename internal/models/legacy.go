package models

// legacyFoodTypes maps category codes still sent by older clients onto the
// canonical FoodType. Several legacy codes collapse onto one canonical value.
var legacyFoodTypes = map[string]FoodType{
	"PREPARED_MEALS":    FoodTypePrepared,
	"COOKED_MEALS":      FoodTypePrepared,
	"MEALS":             FoodTypePrepared,
	"FRUITS_VEGETABLES": FoodTypeProduce,
	"FRESH_PRODUCE":     FoodTypeProduce,
	"VEGETABLES":        FoodTypeProduce,
	"FRUITS":            FoodTypeProduce,
	"BAKED_GOODS":       FoodTypeBakery,
	"BREAD":             FoodTypeBakery,
	"DAIRY":             FoodTypeDairyEggs,
	"EGGS":              FoodTypeDairyEggs,
	"MEAT":              FoodTypeMeatPoultry,
	"POULTRY":           FoodTypeMeatPoultry,
	"FISH_SEAFOOD":      FoodTypeSeafood,
	"FISH":              FoodTypeSeafood,
	"CANNED_GOODS":      FoodTypePantry,
	"DRY_GOODS":         FoodTypePantry,
	"NON_PERISHABLE":    FoodTypePantry,
	"DRINKS":            FoodTypeBeverages,
	"JUICE":             FoodTypeBeverages,
}

// primaryLegacyCodes is the outbound direction: exactly one legacy code per
// canonical type.
var primaryLegacyCodes = map[FoodType]string{
	FoodTypePrepared:    "PREPARED_MEALS",
	FoodTypeProduce:     "FRUITS_VEGETABLES",
	FoodTypeBakery:      "BAKED_GOODS",
	FoodTypeDairyEggs:   "DAIRY",
	FoodTypeMeatPoultry: "MEAT",
	FoodTypeSeafood:     "FISH_SEAFOOD",
	FoodTypePantry:      "CANNED_GOODS",
	FoodTypeBeverages:   "DRINKS",
}

// LegacyFoodTypeCodes returns a copy of the inbound alias table.
func LegacyFoodTypeCodes() map[string]FoodType {
	out := make(map[string]FoodType, len(legacyFoodTypes))
	for k, v := range legacyFoodTypes {
		out[k] = v
	}
	return out
}

// LegacyToCanonicalFoodType resolves a legacy category code. Canonical codes
// resolve to themselves so callers can pass either system.
func LegacyToCanonicalFoodType(code string) (FoodType, bool) {
	if ft, ok := legacyFoodTypes[code]; ok {
		return ft, true
	}
	if ft := FoodType(code); ft.Valid() {
		return ft, true
	}
	return "", false
}

// CanonicalToLegacyFoodType returns the primary legacy code for outbound
// compatibility.
func CanonicalToLegacyFoodType(ft FoodType) (string, bool) {
	code, ok := primaryLegacyCodes[ft]
	return code, ok
}
