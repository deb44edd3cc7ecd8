package donations_api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/services/donations"
	"github.com/BearBump/FoodBridge/internal/services/expiry"
	"github.com/BearBump/FoodBridge/internal/services/pickup"
	"github.com/BearBump/FoodBridge/internal/services/status"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

const maxBodyBytes = 1 << 20

type suggestExpiryRequest struct {
	FoodType            string `json:"foodType"`
	TemperatureCategory string `json:"temperatureCategory"`
	PackagingType       string `json:"packagingType"`
	FabricationDate     string `json:"fabricationDate"`
	Zone                string `json:"zone"`
}

type suggestExpiryResponse struct {
	models.ExpirySuggestion
	SuggestedExpiryLabel *string `json:"suggestedExpiryLabel,omitempty"`
}

func (a *DonationsAPI) suggestExpiry(w http.ResponseWriter, r *http.Request) {
	var req suggestExpiryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	food, err := parseFoodType(req.FoodType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	temp := models.TemperatureCategory(req.TemperatureCategory)
	if temp != "" && !temp.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown temperatureCategory %q", req.TemperatureCategory))
		return
	}
	packaging := models.PackagingType(req.PackagingType)
	if packaging != "" && !packaging.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown packagingType %q", req.PackagingType))
		return
	}
	zone, ok := a.zone(w, req.Zone)
	if !ok {
		return
	}

	res := expiry.Suggest(expiry.Input{
		FoodType:        food,
		Temperature:     temp,
		Packaging:       packaging,
		FabricationDate: req.FabricationDate,
		Zone:            zone,
	})
	a.metrics.ObserveExpirySuggestion(res.Eligible)

	out := suggestExpiryResponse{ExpirySuggestion: res}
	if res.SuggestedExpiryDate != nil {
		label := a.formatter.FormatDate(res.SuggestedExpiryDate.In(zone), zone)
		out.SuggestedExpiryLabel = &label
	}
	writeJSON(w, http.StatusOK, out)
}

type pickupSlotDTO struct {
	PickupDate string  `json:"pickupDate"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Notes      *string `json:"notes,omitempty"`
}

type validateSlotsRequest struct {
	DonationID string          `json:"donationId"`
	ExpiryDate string          `json:"expiryDate"`
	Zone       string          `json:"zone"`
	Slots      []pickupSlotDTO `json:"slots"`
}

type validateSlotsResponse struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// validatePickupSlots checks slots against an expiry date sent inline, for
// drafts that are not stored yet.
func (a *DonationsAPI) validatePickupSlots(w http.ResponseWriter, r *http.Request) {
	var req validateSlotsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	slots, err := toSlots(req.Slots)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var expiryDate *civil.Date
	if req.ExpiryDate != "" {
		d, err := civil.ParseDate(req.ExpiryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid expiryDate %q", req.ExpiryDate))
			return
		}
		expiryDate = &d
	}
	zone, ok := a.zone(w, req.Zone)
	if !ok {
		return
	}

	err = pickup.Validate(pickup.Request{
		DonationID: req.DonationID,
		ExpiryDate: expiryDate,
		Slots:      slots,
	}, a.now(), zone)
	a.writeValidation(w, err)
}

func (a *DonationsAPI) validateDonationPickupSlots(w http.ResponseWriter, r *http.Request) {
	var req validateSlotsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	slots, err := toSlots(req.Slots)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = a.svc.ValidatePickupSlots(r.Context(), chi.URLParam(r, "id"), slots, a.now())
	if err != nil && pickup.ReasonOf(err) == "" {
		a.log.WithError(err).Error("validate pickup slots")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, validationResponse(err))
}

func (a *DonationsAPI) writeValidation(w http.ResponseWriter, err error) {
	res := validationResponse(err)
	result := "ok"
	if !res.OK {
		result = res.Reason
	}
	a.metrics.ObservePickupValidation(result)
	writeJSON(w, http.StatusOK, res)
}

func validationResponse(err error) validateSlotsResponse {
	if err == nil {
		return validateSlotsResponse{OK: true}
	}
	return validateSlotsResponse{Reason: string(pickup.ReasonOf(err)), Message: err.Error()}
}

type donationResponse struct {
	Donation *models.Donation    `json:"donation"`
	Phase    models.DisplayPhase `json:"phase"`
	Terminal bool                `json:"terminal"`
}

func (a *DonationsAPI) getDonation(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.GetDonation(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, donations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		a.log.WithError(err).Error("get donation")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	phase := status.Classify(d.Status)
	writeJSON(w, http.StatusOK, donationResponse{Donation: d, Phase: phase, Terminal: status.IsTerminal(phase)})
}

type phaseResponse struct {
	Raw      string              `json:"raw"`
	Phase    models.DisplayPhase `json:"phase"`
	Terminal bool                `json:"terminal"`
}

func (a *DonationsAPI) classifyStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	phase := status.Classify(raw)
	writeJSON(w, http.StatusOK, phaseResponse{Raw: raw, Phase: phase, Terminal: status.IsTerminal(phase)})
}

type foodTypeResponse struct {
	FoodType   models.FoodType `json:"foodType"`
	Label      string          `json:"label"`
	LegacyCode string          `json:"legacyCode"`
}

func (a *DonationsAPI) listFoodTypes(w http.ResponseWriter, r *http.Request) {
	out := make([]foodTypeResponse, 0, len(models.FoodTypes))
	for _, ft := range models.FoodTypes {
		code, _ := models.CanonicalToLegacyFoodType(ft)
		out = append(out, foodTypeResponse{FoodType: ft, Label: ft.Label(), LegacyCode: code})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *DonationsAPI) legacyToCanonical(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ft, ok := models.LegacyToCanonicalFoodType(code)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown legacy food type %q", code))
		return
	}
	primary, _ := models.CanonicalToLegacyFoodType(ft)
	writeJSON(w, http.StatusOK, foodTypeResponse{FoodType: ft, Label: ft.Label(), LegacyCode: primary})
}

func (a *DonationsAPI) canonicalToLegacy(w http.ResponseWriter, r *http.Request) {
	ft := models.FoodType(chi.URLParam(r, "type"))
	code, ok := models.CanonicalToLegacyFoodType(ft)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown food type %q", ft))
		return
	}
	writeJSON(w, http.StatusOK, foodTypeResponse{FoodType: ft, Label: ft.Label(), LegacyCode: code})
}

type timeLabelResponse struct {
	Instant time.Time `json:"instant"`
	Zone    string    `json:"zone"`
	Locale  string    `json:"locale"`
	Label   string    `json:"label"`
	Date    string    `json:"date"`
	Time    string    `json:"time"`
}

func (a *DonationsAPI) timeLabel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	at, ok := tzclock.ToInstant(q.Get("at"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid timestamp %q", q.Get("at")))
		return
	}
	zone, ok := a.zone(w, q.Get("zone"))
	if !ok {
		return
	}
	f := a.formatter
	if locale := q.Get("locale"); locale != "" {
		f = tzclock.NewFormatter(locale)
	}
	writeJSON(w, http.StatusOK, timeLabelResponse{
		Instant: at,
		Zone:    zone.String(),
		Locale:  f.Locale(),
		Label:   f.DateSeparatorLabel(at, zone, a.now()),
		Date:    f.FormatDate(at, zone),
		Time:    f.FormatTime(at, zone),
	})
}

// zone resolves an IANA id, falling back to the service default when empty.
// It writes a 400 and returns false for unknown ids.
func (a *DonationsAPI) zone(w http.ResponseWriter, id string) (*time.Location, bool) {
	if id == "" {
		return a.svc.DefaultZone(), true
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown zone %q", id))
		return nil, false
	}
	return loc, true
}

func parseFoodType(raw string) (models.FoodType, error) {
	if raw == "" {
		return "", nil
	}
	ft, ok := models.LegacyToCanonicalFoodType(raw)
	if !ok {
		return "", errors.Errorf("unknown foodType %q", raw)
	}
	return ft, nil
}

func toSlots(in []pickupSlotDTO) ([]models.PickupSlot, error) {
	out := make([]models.PickupSlot, 0, len(in))
	for i, s := range in {
		var slot models.PickupSlot
		if s.PickupDate != "" {
			d, err := civil.ParseDate(s.PickupDate)
			if err != nil {
				return nil, errors.Errorf("slots[%d]: invalid pickupDate %q", i, s.PickupDate)
			}
			slot.PickupDate = &d
		}
		var err error
		if slot.StartTime, err = parseClock(s.StartTime); err != nil {
			return nil, errors.Wrapf(err, "slots[%d]: startTime", i)
		}
		if slot.EndTime, err = parseClock(s.EndTime); err != nil {
			return nil, errors.Wrapf(err, "slots[%d]: endTime", i)
		}
		slot.Notes = s.Notes
		out = append(out, slot)
	}
	return out, nil
}

// parseClock accepts HH:MM or HH:MM:SS. Empty means not set.
func parseClock(raw string) (*civil.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	ct, ok := tzclock.ParseClock(raw)
	if !ok {
		return nil, errors.Errorf("invalid time of day %q", raw)
	}
	return &ct, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (a *DonationsAPI) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		client := r.RemoteAddr
		if host, _, err := net.SplitHostPort(client); err == nil {
			client = host
		}
		v, err := a.limiter.Allow(r.Context(), client)
		if err != nil {
			a.log.WithError(err).Warn("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !v.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(v.RetryAfter)))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds rounds up, never below one second.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}
