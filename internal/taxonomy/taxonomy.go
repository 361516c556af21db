package taxonomy

import (
	"strings"

	"github.com/practicepulse/backend/internal/types"
)

// Group is one entry of an ordered classification table. Matching is a
// lowercase substring scan over the table in slice order; the first
// group with a matching keyword wins, so the order of these tables is
// a compatibility contract, not a style choice.
type Group struct {
	Name     string
	Keywords []string
}

// OutcomeGroupOther is the catch-all outcome group
const OutcomeGroupOther = "Other / Unknown"

// OutcomeGroupAppointment gates the appointment-subtype scan
const OutcomeGroupAppointment = "Appointment"

// SubtypeOther is the catch-all appointment subtype
const SubtypeOther = "Other Appointment"

// OutcomeGroups is the default outcome taxonomy, scanned in order.
// Appointment sits first so mixed text like "telephone triage advice"
// resolves as an appointment rather than advice.
var OutcomeGroups = []Group{
	{Name: OutcomeGroupAppointment, Keywords: []string{
		"appointment", "appt", "booked", "face to face", "f2f",
		"telephone", "phone call", "video", "home visit", "seen by",
		"consultation booked",
	}},
	{Name: "Advice / Self-care", Keywords: []string{
		"advice", "self care", "self-care", "signpost", "reassur",
		"information given",
	}},
	{Name: "Prescription / Medication", Keywords: []string{
		"prescription", "medication", "medicine", "pharmacy", "issued",
		"script",
	}},
	{Name: "Referral", Keywords: []string{
		"referral", "referred", "refer to",
	}},
	{Name: "Admin Completed", Keywords: []string{
		"admin", "fit note", "sick note", "letter", "form completed",
		"processed", "completed request",
	}},
	{Name: "No Action / Rejected", Keywords: []string{
		"no action", "rejected", "duplicate", "cancelled", "withdrawn",
		"no response",
	}},
}

// AppointmentSubtypes is the default subtype taxonomy, scanned in
// order, applied only to records already classified as Appointment.
var AppointmentSubtypes = []Group{
	{Name: "Face to Face", Keywords: []string{"face to face", "f2f", "in person", "surgery appointment"}},
	{Name: "Telephone", Keywords: []string{"telephone", "phone", "call back", "callback"}},
	{Name: "Video", Keywords: []string{"video"}},
	{Name: "Home Visit", Keywords: []string{"home visit", "visit at home"}},
}

// ClassifyOutcome maps free-text outcome into an outcome group. An
// optional override map (lowercased exact text -> group) is consulted
// before the keyword scan. Empty or unmatched text falls back to the
// catch-all group.
func ClassifyOutcome(outcome string, overrides map[string]string) string {
	text := strings.ToLower(strings.TrimSpace(outcome))
	if text == "" {
		return OutcomeGroupOther
	}

	if overrides != nil {
		if group, ok := overrides[text]; ok {
			return group
		}
	}

	return scan(OutcomeGroups, text, OutcomeGroupOther)
}

// ClassifySubtype maps an appointment outcome's text into a subtype
func ClassifySubtype(outcome string) string {
	text := strings.ToLower(strings.TrimSpace(outcome))
	if text == "" {
		return SubtypeOther
	}
	return scan(AppointmentSubtypes, text, SubtypeOther)
}

func scan(groups []Group, text, fallback string) string {
	for _, g := range groups {
		for _, kw := range g.Keywords {
			if strings.Contains(text, kw) {
				return g.Name
			}
		}
	}
	return fallback
}

// AgeBandFor buckets a raw age into the fixed band set
func AgeBandFor(age int) types.AgeBand {
	switch {
	case age < 0:
		return types.AgeBandUnknown
	case age <= 4:
		return types.AgeBand0to4
	case age <= 14:
		return types.AgeBand5to14
	case age <= 24:
		return types.AgeBand15to24
	case age <= 44:
		return types.AgeBand25to44
	case age <= 64:
		return types.AgeBand45to64
	case age <= 74:
		return types.AgeBand65to74
	case age <= 84:
		return types.AgeBand75to84
	default:
		return types.AgeBand85Plus
	}
}
