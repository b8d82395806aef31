package domain

import "strings"

// Canonical race distances.
const (
	Distance5K           = "5k"
	Distance10K          = "10k"
	DistanceHalfMarathon = "half_marathon"
	DistanceMarathon     = "marathon"
	Distance50K          = "50k"
	Distance50Mile       = "50_mile"
	Distance100K         = "100k"
	Distance100Mile      = "100_mile"
)

var distanceAliases = map[string]string{
	"5k":            Distance5K,
	"5km":           Distance5K,
	"10k":           Distance10K,
	"10km":          Distance10K,
	"half":          DistanceHalfMarathon,
	"half_marathon": DistanceHalfMarathon,
	"halfmarathon":  DistanceHalfMarathon,
	"hm":            DistanceHalfMarathon,
	"21k":           DistanceHalfMarathon,
	"marathon":      DistanceMarathon,
	"full":          DistanceMarathon,
	"full_marathon": DistanceMarathon,
	"42k":           DistanceMarathon,
	"50k":           Distance50K,
	"50_mile":       Distance50Mile,
	"50mi":          Distance50Mile,
	"50_miler":      Distance50Mile,
	"100k":          Distance100K,
	"100_mile":      Distance100Mile,
	"100mi":         Distance100Mile,
	"100_miler":     Distance100Mile,
}

var ultraDistances = map[string]bool{
	Distance50K: true, Distance50Mile: true, Distance100K: true, Distance100Mile: true,
}

// NormalizeDistance maps a user- or document-supplied distance onto its
// canonical spelling. Unknown values are returned lowercased and
// underscore-joined so they still compare consistently.
func NormalizeDistance(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if canonical, ok := distanceAliases[key]; ok {
		return canonical
	}
	return key
}

// IsKnownDistance reports whether d normalizes to a canonical distance.
func IsKnownDistance(d string) bool {
	_, ok := distanceAliases[NormalizeDistance(d)]
	return ok
}

// DomainForDistance routes ultra distances to the ultra domain and
// everything else, including an empty distance, to running.
func DomainForDistance(d string) TrainingDomain {
	if ultraDistances[NormalizeDistance(d)] {
		return DomainUltra
	}
	return DomainRunning
}
