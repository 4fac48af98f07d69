package perfindex

import "strings"

const (
	unknownActivityMET               = 7.0
	unknownActivityIntensityFraction = 0.65

	// long runs push the estimated heart rate up
	longRunMinutes        = 30
	longRunIntensityBonus = 0.10
)

// Activity is a canonical workout type with its energy cost (MET) and the fraction
// of the max heart rate a typical session reaches.
type Activity struct {
	Name              string
	MET               float64
	IntensityFraction float64
}

var activityRegistry = map[string]Activity{
	"running":  {Name: "running", MET: 8.0, IntensityFraction: 0.75},
	"cycling":  {Name: "cycling", MET: 7.5, IntensityFraction: 0.70},
	"cardio":   {Name: "cardio", MET: 6.0, IntensityFraction: 0.65},
	"hiit":     {Name: "hiit", MET: 9.0, IntensityFraction: 0.85},
	"strength": {Name: "strength", MET: 5.0, IntensityFraction: 0.60},
	"yoga":     {Name: "yoga", MET: 3.0, IntensityFraction: 0.45},
	"boxing":   {Name: "boxing", MET: 9.0, IntensityFraction: 0.85},
}

var activityAliases = map[string]string{
	"run":           "running",
	"bike":          "cycling",
	"weightlifting": "strength",
	"weights":       "strength",
	"kickboxing":    "boxing",
}

// CanonicalActivityCount is the number of registered activity types, the
// denominator of the variety score.
var CanonicalActivityCount = len(activityRegistry)

// canonicalActivityType lower-cases and trims the type and resolves aliases.
// Unknown types are returned normalized but otherwise unchanged.
func canonicalActivityType(activityType string) string {
	t := strings.ToLower(strings.TrimSpace(activityType))
	if canonical, ok := activityAliases[t]; ok {
		return canonical
	}
	return t
}

// LookupActivity resolves a raw activity type against the registry.
func LookupActivity(activityType string) (Activity, bool) {
	a, ok := activityRegistry[canonicalActivityType(activityType)]
	return a, ok
}

func activityMET(activityType string) float64 {
	if a, ok := activityRegistry[activityType]; ok {
		return a.MET
	}
	return unknownActivityMET
}

func activityIntensityFraction(activityType string, durationMinutes float64) float64 {
	a, ok := activityRegistry[activityType]
	if !ok {
		return unknownActivityIntensityFraction
	}
	if a.Name == "running" && durationMinutes > longRunMinutes {
		return a.IntensityFraction + longRunIntensityBonus
	}
	return a.IntensityFraction
}
