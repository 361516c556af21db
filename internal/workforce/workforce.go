package workforce

import (
	"math"

	"github.com/practicepulse/backend/internal/types"
)

// defaultRates are appointments per WTE per day by role group,
// overridable per role through Config.
var defaultRates = map[types.RoleGroup]float64{
	types.RoleGPPartner:          26,
	types.RoleSalariedGP:         26,
	types.RoleGPRegistrar:        13,
	types.RoleNurse:              20,
	types.RoleHCA:                16,
	types.RolePharmacist:         12,
	types.RoleParamedic:          14,
	types.RolePhysiotherapist:    14,
	types.RoleMentalHealth:       10,
	types.RolePharmacyTechnician: 10,
}

// Pressure-score blend. The weights and clamp ceilings are fixed so
// scores stay comparable across practices.
const (
	weightDemand      = 0.6
	weightMissedCalls = 0.25
	weightOnline      = 0.15

	ceilingDemandRatio       = 2.0  // demand / theoretical capacity
	ceilingMissedPerWTEDay   = 20.0 // missed calls per admin WTE per day
	ceilingOnlinePerGPWTEDay = 10.0 // online requests per GP WTE per day
)

// SPOFThresholds configure the single-point-of-failure test for one
// role super-group.
type SPOFThresholds struct {
	MaxWTE       float64
	MaxHeadcount int
}

var defaultSPOF = SPOFThresholds{MaxWTE: 0.5, MaxHeadcount: 1}

// Config carries the overridable knobs of the capacity model
type Config struct {
	WorkingDays int
	// Rates overrides the per-role appointments-per-WTE-per-day
	// defaults for any role present in the map.
	Rates map[types.RoleGroup]float64
	// SPOF thresholds per flagged group; zero value falls back to the
	// 0.5 WTE / 1 headcount defaults.
	GPThresholds        SPOFThresholds
	NurseThresholds     SPOFThresholds
	ReceptionThresholds SPOFThresholds
}

// DefaultConfig returns the standard model configuration for a period
// of the given working days.
func DefaultConfig(workingDays int) Config {
	return Config{
		WorkingDays:         workingDays,
		GPThresholds:        defaultSPOF,
		NurseThresholds:     defaultSPOF,
		ReceptionThresholds: defaultSPOF,
	}
}

// BuildModel converts role staffing totals and observed activity into
// the full capacity model. Pure function of its inputs.
//
// Actual throughput per role is an estimate: the observed activity is
// distributed across constituent role groups in proportion to WTE
// share, because the source extracts carry no per-role attribution.
func BuildModel(totals map[types.RoleGroup]types.RoleTotal, activity types.ActivityCounts, cfg Config) types.CapacityModel {
	if cfg.WorkingDays <= 0 {
		cfg.WorkingDays = 1
	}

	model := types.CapacityModel{
		GP:          rollup(totals, types.GPRoles),
		Clinical:    rollup(totals, types.ClinicalRoles),
		NonClinical: rollup(totals, types.NonClinicalRoles),
		ARRS:        rollup(totals, types.ARRSRoles),
		WorkingDays: cfg.WorkingDays,
		AttributionNote: "actual throughput is estimated by distributing observed activity across role groups in proportion to WTE share; it is not a measured per-role figure",
	}

	model.Flags = dependencyFlags(totals, cfg)
	model.Entries = capacityEntries(totals, activity, cfg, model.GP.WTE, model.Clinical.WTE)

	for _, e := range model.Entries {
		model.TheoreticalTotal += e.Theoretical
		model.ActualTotal += e.Actual
	}
	model.TheoreticalTotal = round1(model.TheoreticalTotal)
	model.ActualTotal = round1(model.ActualTotal)

	model.PressureScore = PressureScore(activity, model.TheoreticalTotal, model.NonClinical.WTE, model.GP.WTE, cfg.WorkingDays)

	return model
}

// rollup aggregates WTE and headcount over a role super-group. A role
// group absent from the totals contributes zero; a present role group
// with unknown headcount makes the whole rollup's headcount unknown.
// Unknown and zero never collapse into each other.
func rollup(totals map[types.RoleGroup]types.RoleTotal, roles []types.RoleGroup) types.RoleRollup {
	var r types.RoleRollup
	head := 0
	headKnown := true

	for _, role := range roles {
		total, ok := totals[role]
		if !ok {
			continue
		}
		r.WTE += total.WTE
		if total.Headcount == nil {
			headKnown = false
		} else {
			head += *total.Headcount
		}
	}

	r.WTE = round1(r.WTE)
	if headKnown {
		r.Headcount = &head
	}
	return r
}

// dependencyFlags evaluates the single-point-of-failure test for the
// GP super-group, the nurse group and the reception group. A group is
// flagged when it carries positive WTE and either its known headcount
// or its WTE sits at or below the configured thresholds.
func dependencyFlags(totals map[types.RoleGroup]types.RoleTotal, cfg Config) []types.DependencyFlag {
	gp := rollup(totals, types.GPRoles)
	nurse := rollup(totals, []types.RoleGroup{types.RoleNurse})
	reception := rollup(totals, []types.RoleGroup{types.RoleReception})

	return []types.DependencyFlag{
		flagFor("GP", gp, orDefault(cfg.GPThresholds)),
		flagFor("Nurse", nurse, orDefault(cfg.NurseThresholds)),
		flagFor("Reception", reception, orDefault(cfg.ReceptionThresholds)),
	}
}

func flagFor(group string, r types.RoleRollup, t SPOFThresholds) types.DependencyFlag {
	flagged := false
	if r.WTE > 0 {
		if r.Headcount != nil && *r.Headcount <= t.MaxHeadcount {
			flagged = true
		}
		if r.WTE <= t.MaxWTE {
			flagged = true
		}
	}
	return types.DependencyFlag{Group: group, WTE: r.WTE, Headcount: r.Headcount, Flagged: flagged}
}

func orDefault(t SPOFThresholds) SPOFThresholds {
	if t.MaxWTE == 0 && t.MaxHeadcount == 0 {
		return defaultSPOF
	}
	return t
}

// capacityEntries models each clinical role group's theoretical and
// estimated actual throughput. GP activity splits across GP roles by
// WTE share; the remaining appointment activity splits across the
// other clinical roles the same way.
func capacityEntries(totals map[types.RoleGroup]types.RoleTotal, activity types.ActivityCounts, cfg Config, gpWTE, clinicalWTE float64) []types.CapacityEntry {
	nonGPWTE := clinicalWTE - gpWTE
	nonGPActivity := activity.Appointments - activity.GPAppointments
	if nonGPActivity < 0 {
		nonGPActivity = 0
	}

	var entries []types.CapacityEntry
	for _, role := range types.ClinicalRoles {
		total, ok := totals[role]
		if !ok || total.WTE <= 0 {
			continue
		}

		rate := defaultRates[role]
		if override, ok := cfg.Rates[role]; ok && override > 0 {
			rate = override
		}

		theoretical := total.WTE * rate * float64(cfg.WorkingDays)

		var actual float64
		if isGPRole(role) {
			if gpWTE > 0 {
				actual = float64(activity.GPAppointments) * total.WTE / gpWTE
			}
		} else {
			if nonGPWTE > 0 {
				actual = float64(nonGPActivity) * total.WTE / nonGPWTE
			}
		}

		utilization := 0.0
		if theoretical > 0 {
			utilization = round1(actual / theoretical * 100)
		}

		entries = append(entries, types.CapacityEntry{
			Role:           role,
			WTE:            total.WTE,
			RatePerWTEDay:  rate,
			Theoretical:    round1(theoretical),
			Actual:         round1(actual),
			Utilization:    utilization,
			UnusedCapacity: round1(math.Max(0, theoretical-actual)),
		})
	}
	return entries
}

// PressureScore blends three demand signals into a 0-100 composite:
// demand over theoretical capacity (weight 0.6), missed calls per
// admin WTE per day (0.25) and online requests per GP WTE per day
// (0.15). Each term is clamped to its ceiling and rescaled to 0-100
// before weighting, so the composite always lies in [0,100].
func PressureScore(activity types.ActivityCounts, theoreticalTotal, adminWTE, gpWTE float64, workingDays int) float64 {
	if workingDays <= 0 {
		workingDays = 1
	}

	demand := float64(activity.Appointments + activity.OnlineRequests)
	demandTerm := scaledTerm(demand, theoreticalTotal, ceilingDemandRatio)

	missedPerDay := float64(activity.CallsMissed) / float64(workingDays)
	missedTerm := scaledTerm(missedPerDay, adminWTE, ceilingMissedPerWTEDay)

	onlinePerDay := float64(activity.OnlineRequests) / float64(workingDays)
	onlineTerm := scaledTerm(onlinePerDay, gpWTE, ceilingOnlinePerGPWTEDay)

	score := weightDemand*demandTerm + weightMissedCalls*missedTerm + weightOnline*onlineTerm
	return round1(math.Min(100, math.Max(0, score)))
}

// scaledTerm computes numerator/denominator, clamps at ceiling and
// rescales to 0-100. A zero denominator with positive numerator means
// unbounded pressure and scores the full 100; with zero numerator it
// scores 0.
func scaledTerm(numerator, denominator, ceiling float64) float64 {
	if denominator <= 0 {
		if numerator > 0 {
			return 100
		}
		return 0
	}
	ratio := numerator / denominator
	if ratio > ceiling {
		ratio = ceiling
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio / ceiling * 100
}

func isGPRole(role types.RoleGroup) bool {
	for _, r := range types.GPRoles {
		if r == role {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
