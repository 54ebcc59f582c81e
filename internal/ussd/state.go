package ussd

// Family groups the steps of one menu flow.
type Family uint8

const (
	FamilyRoot Family = iota
	FamilyMainMenu
	FamilyRegistration
	FamilySymptoms
	FamilyAppointments
	FamilyMessages
	FamilyHealthInfo
	FamilyProfile
)

var familyNames = map[Family]string{
	FamilyRoot:         "root",
	FamilyMainMenu:     "main_menu",
	FamilyRegistration: "registration",
	FamilySymptoms:     "symptoms",
	FamilyAppointments: "appointments",
	FamilyMessages:     "messages",
	FamilyHealthInfo:   "health_info",
	FamilyProfile:      "profile",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown"
}

// Step is a position inside a family.
type Step uint8

const (
	StepNone Step = iota
	StepStart
	StepSelectLanguage
	StepName
	StepAge
	StepGender
	StepLocation
	StepCoordinatesChoice
	StepCoordinates
	StepComplete
	StepDescription
	StepDuration
	StepSeverity
	StepNextSteps
	StepDate
	StepTime
	StepProvider
	StepMenu
	StepCompose
	StepSent
	StepDetail
	StepView
	StepUpdateCoordinates
	StepCoordinatesUpdated
)

// State is the position of a session in the menu graph.
type State struct {
	Family Family
	Step   Step
}

var (
	StateStart          = State{FamilyRoot, StepStart}
	StateSelectLanguage = State{FamilyRoot, StepSelectLanguage}
	StateMainMenu       = State{FamilyMainMenu, StepMenu}

	StateRegisterName              = State{FamilyRegistration, StepName}
	StateRegisterAge               = State{FamilyRegistration, StepAge}
	StateRegisterGender            = State{FamilyRegistration, StepGender}
	StateRegisterLocation          = State{FamilyRegistration, StepLocation}
	StateRegisterCoordinatesChoice = State{FamilyRegistration, StepCoordinatesChoice}
	StateRegisterCoordinates       = State{FamilyRegistration, StepCoordinates}
	StateRegistrationComplete      = State{FamilyRegistration, StepComplete}

	StateSymptomDescription = State{FamilySymptoms, StepDescription}
	StateSymptomDuration    = State{FamilySymptoms, StepDuration}
	StateSymptomSeverity    = State{FamilySymptoms, StepSeverity}
	StateSymptomNextSteps   = State{FamilySymptoms, StepNextSteps}

	StateAppointmentDate     = State{FamilyAppointments, StepDate}
	StateAppointmentTime     = State{FamilyAppointments, StepTime}
	StateAppointmentProvider = State{FamilyAppointments, StepProvider}
	StateAppointmentComplete = State{FamilyAppointments, StepComplete}

	StateMessageMenu    = State{FamilyMessages, StepMenu}
	StateMessageCompose = State{FamilyMessages, StepCompose}
	StateMessageSent    = State{FamilyMessages, StepSent}

	StateInfoMenu   = State{FamilyHealthInfo, StepMenu}
	StateInfoDetail = State{FamilyHealthInfo, StepDetail}

	StateProfileView        = State{FamilyProfile, StepView}
	StateUpdateCoordinates  = State{FamilyProfile, StepUpdateCoordinates}
	StateCoordinatesUpdated = State{FamilyProfile, StepCoordinatesUpdated}
)

// stateTags are the persisted names. They match the tags used by the
// dashboard and older session records, so they must not change.
var stateTags = map[State]string{
	StateStart:          "start",
	StateSelectLanguage: "select_language",
	StateMainMenu:       "main_menu",

	StateRegisterName:              "register_name",
	StateRegisterAge:               "register_age",
	StateRegisterGender:            "register_gender",
	StateRegisterLocation:          "register_location",
	StateRegisterCoordinatesChoice: "register_coordinates_choice",
	StateRegisterCoordinates:       "register_coordinates",
	StateRegistrationComplete:      "registration_complete",

	StateSymptomDescription: "symptom_description",
	StateSymptomDuration:    "symptom_duration",
	StateSymptomSeverity:    "symptom_severity",
	StateSymptomNextSteps:   "symptom_next_steps",

	StateAppointmentDate:     "appointment_date",
	StateAppointmentTime:     "appointment_time",
	StateAppointmentProvider: "appointment_provider",
	StateAppointmentComplete: "appointment_complete",

	StateMessageMenu:    "message_menu",
	StateMessageCompose: "message_compose",
	StateMessageSent:    "message_sent",

	StateInfoMenu:   "info_menu",
	StateInfoDetail: "info_detail",

	StateProfileView:        "profile_view",
	StateUpdateCoordinates:  "update_coordinates",
	StateCoordinatesUpdated: "coordinates_updated",
}

var statesByTag = func() map[string]State {
	out := make(map[string]State, len(stateTags))
	for s, tag := range stateTags {
		out[tag] = s
	}
	return out
}()

// Known reports whether s is a state of the menu graph.
func (s State) Known() bool {
	_, ok := stateTags[s]
	return ok
}

// Root reports whether the universal main-menu code is ignored in s.
func (s State) Root() bool {
	return s.Family == FamilyRoot || s.Family == FamilyMainMenu
}

func (s State) String() string {
	if tag, ok := stateTags[s]; ok {
		return tag
	}
	return "unknown"
}

// ParseState maps a persisted tag back to a State. Unknown tags resolve to
// the main menu, or to start when no language has been chosen yet.
func ParseState(tag string, hasLanguage bool) State {
	if s, ok := statesByTag[tag]; ok {
		return s
	}
	if hasLanguage {
		return StateMainMenu
	}
	return StateStart
}
