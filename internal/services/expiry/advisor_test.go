package expiry

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/shelflife"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestSuggest_ConcreteCases(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		want     civil.Date
		days     int
		eligible bool
	}{
		{
			name:     "prepared refrigerated",
			in:       Input{models.FoodTypePrepared, models.TemperatureRefrigerated, models.PackagingSealed, "2026-02-17", nil},
			want:     date(2026, 2, 20),
			days:     3,
			eligible: true,
		},
		{
			name:     "prepared room temperature",
			in:       Input{models.FoodTypePrepared, models.TemperatureRoomTemperature, models.PackagingSealed, "2026-02-17", nil},
			want:     date(2026, 2, 17),
			days:     0,
			eligible: false,
		},
		{
			name:     "pantry room temperature",
			in:       Input{models.FoodTypePantry, models.TemperatureRoomTemperature, models.PackagingBoxed, "2026-02-17", nil},
			want:     date(2026, 3, 19),
			days:     30,
			eligible: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.in)
			require.NotNil(t, got.SuggestedExpiryDate)
			require.Equal(t, tt.want, *got.SuggestedExpiryDate)
			require.NotNil(t, got.ShelfLifeDays)
			require.Equal(t, tt.days, *got.ShelfLifeDays)
			require.Equal(t, tt.eligible, got.Eligible)
			require.NotNil(t, got.Explanation)
			require.Contains(t, *got.Explanation, tt.in.FoodType.Label())
			require.Contains(t, *got.Explanation, tt.in.Temperature.Label())
			require.Contains(t, *got.Explanation, tt.want.String())
		})
	}
}

func TestSuggest_IsPure(t *testing.T) {
	in := Input{models.FoodTypeBakery, models.TemperatureHotCooked, models.PackagingRefrigeratedContainer, "2026-02-17", nil}
	require.Equal(t, Suggest(in), Suggest(in))
}

func TestSuggest_EveryTablePairMatches(t *testing.T) {
	for _, ft := range models.FoodTypes {
		for _, temp := range models.TemperatureCategories {
			want, ok := shelflife.Lookup(ft, temp)
			require.True(t, ok)

			got := Suggest(Input{FoodType: ft, Temperature: temp, FabricationDate: "2026-12-30"})
			require.NotNil(t, got.ShelfLifeDays)
			require.Equal(t, want, *got.ShelfLifeDays)
			require.Equal(t, date(2026, 12, 30).AddDays(want), *got.SuggestedExpiryDate)
		}
	}
}

func TestSuggest_MissingData(t *testing.T) {
	// no pair in the table
	got := Suggest(Input{FoodType: models.FoodTypePrepared, FabricationDate: "2026-02-17"})
	require.Nil(t, got.SuggestedExpiryDate)
	require.Nil(t, got.ShelfLifeDays)
	require.Nil(t, got.Explanation)
	require.True(t, got.Eligible)
	require.NotNil(t, got.Warnings)
	require.Empty(t, got.Warnings)

	got = Suggest(Input{})
	require.Nil(t, got.SuggestedExpiryDate)
	require.True(t, got.Eligible)

	// pair known, date unusable
	for _, raw := range []string{"", "yesterday", "2026-02-30", "02/17/2026"} {
		got = Suggest(Input{FoodType: models.FoodTypeSeafood, Temperature: models.TemperatureFrozen, FabricationDate: raw})
		require.Nil(t, got.SuggestedExpiryDate, raw)
		require.Nil(t, got.Explanation, raw)
		require.NotNil(t, got.ShelfLifeDays, raw)
		require.Equal(t, 30, *got.ShelfLifeDays, raw)
	}
}

func TestSuggest_TimestampFabricationDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	in := Input{FoodType: models.FoodTypeMeatPoultry, Temperature: models.TemperatureRefrigerated, FabricationDate: "2026-02-17T02:00:00"}
	got := Suggest(in)
	require.Equal(t, date(2026, 2, 18), *got.SuggestedExpiryDate)

	// naive timestamps are UTC: 02:00Z is still the 16th in New York
	in.Zone = ny
	got = Suggest(in)
	require.Equal(t, date(2026, 2, 17), *got.SuggestedExpiryDate)
}

func TestEligible(t *testing.T) {
	for _, ft := range []models.FoodType{models.FoodTypePrepared, models.FoodTypeDairyEggs, models.FoodTypeMeatPoultry, models.FoodTypeSeafood} {
		require.False(t, Eligible(ft, models.TemperatureRoomTemperature), ft)
	}
	for _, ft := range []models.FoodType{models.FoodTypeDairyEggs, models.FoodTypeMeatPoultry, models.FoodTypeSeafood} {
		require.False(t, Eligible(ft, models.TemperatureHotCooked), ft)
	}
	require.True(t, Eligible(models.FoodTypePrepared, models.TemperatureHotCooked))
	require.True(t, Eligible(models.FoodTypeProduce, models.TemperatureRoomTemperature))
	require.True(t, Eligible("", models.TemperatureRoomTemperature))
	require.True(t, Eligible(models.FoodTypeSeafood, ""))
}

func TestWarnings_Order(t *testing.T) {
	got := Warnings(models.FoodTypePrepared, models.TemperatureHotCooked, models.PackagingRefrigeratedContainer)
	require.Equal(t, []string{shelflife.WarningColdPackaging, WarningHotPrepared}, got)

	got = Warnings(models.FoodTypeBeverages, models.TemperatureHotCooked, models.PackagingFrozenContainer)
	require.Equal(t, []string{shelflife.WarningFrozenPackaging, WarningHotBeverages}, got)

	require.Equal(t, []string{WarningHotProduce}, Warnings(models.FoodTypeProduce, models.TemperatureHotCooked, ""))
	require.Equal(t, []string{WarningHotPantry}, Warnings(models.FoodTypePantry, models.TemperatureHotCooked, models.PackagingBoxed))
	require.Empty(t, Warnings(models.FoodTypeSeafood, models.TemperatureHotCooked, models.PackagingSealed))
	require.Empty(t, Warnings(models.FoodTypeProduce, models.TemperatureRefrigerated, models.PackagingLoose))
}
