package types

// RoleGroup is one workforce staffing category
type RoleGroup string

const (
	RoleGPPartner          RoleGroup = "gp_partner"
	RoleSalariedGP         RoleGroup = "salaried_gp"
	RoleGPRegistrar        RoleGroup = "gp_registrar"
	RoleNurse              RoleGroup = "nurse"
	RoleHCA                RoleGroup = "hca"
	RolePharmacist         RoleGroup = "pharmacist"
	RoleParamedic          RoleGroup = "paramedic"
	RolePhysiotherapist    RoleGroup = "physiotherapist"
	RoleMentalHealth       RoleGroup = "mental_health"
	RolePharmacyTechnician RoleGroup = "pharmacy_technician"
	RoleReception          RoleGroup = "reception"
	RoleAdmin              RoleGroup = "admin"
	RoleManagement         RoleGroup = "management"
)

// GPRoles are the doctor role groups
var GPRoles = []RoleGroup{RoleGPPartner, RoleSalariedGP, RoleGPRegistrar}

// ClinicalRoles are every patient-facing clinical role group, GPs included
var ClinicalRoles = []RoleGroup{
	RoleGPPartner, RoleSalariedGP, RoleGPRegistrar,
	RoleNurse, RoleHCA,
	RolePharmacist, RoleParamedic, RolePhysiotherapist,
	RoleMentalHealth, RolePharmacyTechnician,
}

// NonClinicalRoles are the back-office role groups
var NonClinicalRoles = []RoleGroup{RoleReception, RoleAdmin, RoleManagement}

// ARRSRoles are the additional-roles-reimbursement-scheme role groups
var ARRSRoles = []RoleGroup{
	RolePharmacist, RoleParamedic, RolePhysiotherapist,
	RoleMentalHealth, RolePharmacyTechnician,
}

// RoleTotal is the staffing for one role group. Headcount is nil when
// unknown; unknown and zero stay distinguishable through every rollup.
type RoleTotal struct {
	WTE       float64 `json:"wte"`
	Headcount *int    `json:"headcount,omitempty"`
}

// RoleRollup aggregates a role super-group. Headcount is nil if any
// contributing role group's headcount was unknown.
type RoleRollup struct {
	WTE       float64 `json:"wte"`
	Headcount *int    `json:"headcount,omitempty"`
}

// CapacityEntry is one clinical role group's throughput model. Actual
// throughput is an estimate: observed activity distributed across role
// groups in proportion to WTE share, not a measured per-role figure.
type CapacityEntry struct {
	Role           RoleGroup `json:"role"`
	WTE            float64   `json:"wte"`
	RatePerWTEDay  float64   `json:"ratePerWteDay"`
	Theoretical    float64   `json:"theoretical"`
	Actual         float64   `json:"actual"`
	Utilization    float64   `json:"utilization"` // percent
	UnusedCapacity float64   `json:"unusedCapacity"`
}

// DependencyFlag marks a role super-group as a single point of failure
type DependencyFlag struct {
	Group     string  `json:"group"`
	WTE       float64 `json:"wte"`
	Headcount *int    `json:"headcount,omitempty"`
	Flagged   bool    `json:"flagged"`
}

// ActivityCounts are the observed demand figures for the period
type ActivityCounts struct {
	Appointments   int `json:"appointments"`
	GPAppointments int `json:"gpAppointments"`
	CallsAnswered  int `json:"callsAnswered"`
	CallsMissed    int `json:"callsMissed"`
	OnlineRequests int `json:"onlineRequests"`
}

// CapacityModel is the full workforce capacity output
type CapacityModel struct {
	GP          RoleRollup `json:"gp"`
	Clinical    RoleRollup `json:"clinical"`
	NonClinical RoleRollup `json:"nonClinical"`
	ARRS        RoleRollup `json:"arrs"`

	Flags []DependencyFlag `json:"dependencyFlags"`

	WorkingDays int             `json:"workingDays"`
	Entries     []CapacityEntry `json:"entries"`

	TheoreticalTotal float64 `json:"theoreticalTotal"`
	ActualTotal      float64 `json:"actualTotal"`

	// PressureScore is 0-100; see workforce.PressureScore for the
	// blend weights and clamp ceilings.
	PressureScore float64 `json:"pressureScore"`

	// AttributionNote flags the proportional-split estimate for
	// consumers of the model.
	AttributionNote string `json:"attributionNote"`
}
