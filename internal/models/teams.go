package models

import "strings"

// TeamUnknown is the placeholder used when a source row carries no
// resolvable club. It is a legal value pending enrichment.
const TeamUnknown = "Unknown"

// The canonical representation for Team is the full club name. Sources
// write abbreviations, nicknames and full names interchangeably;
// everything is migrated to the full name on ingestion and on save.
var aflTeams = []struct {
	Name   string
	Abbrev string
}{
	{"Adelaide", "ADE"},
	{"Brisbane", "BRL"},
	{"Carlton", "CAR"},
	{"Collingwood", "COL"},
	{"Essendon", "ESS"},
	{"Fremantle", "FRE"},
	{"Geelong", "GEE"},
	{"Gold Coast", "GCS"},
	{"GWS", "GWS"},
	{"Hawthorn", "HAW"},
	{"Melbourne", "MEL"},
	{"North Melbourne", "NTH"},
	{"Port Adelaide", "PTA"},
	{"Richmond", "RIC"},
	{"St Kilda", "STK"},
	{"Sydney", "SYD"},
	{"West Coast", "WCE"},
	{"Western Bulldogs", "WBD"},
}

// teamAliases maps lowercased variant spellings seen in source sheets
// to the canonical full name.
var teamAliases = map[string]string{
	"adelaide crows":          "Adelaide",
	"crows":                   "Adelaide",
	"brisbane lions":          "Brisbane",
	"lions":                   "Brisbane",
	"bri":                     "Brisbane",
	"blues":                   "Carlton",
	"magpies":                 "Collingwood",
	"bombers":                 "Essendon",
	"dockers":                 "Fremantle",
	"cats":                    "Geelong",
	"suns":                    "Gold Coast",
	"gcfc":                    "Gold Coast",
	"greater western sydney":  "GWS",
	"gws giants":              "GWS",
	"giants":                  "GWS",
	"hawks":                   "Hawthorn",
	"demons":                  "Melbourne",
	"kangaroos":               "North Melbourne",
	"north":                   "North Melbourne",
	"nm":                      "North Melbourne",
	"power":                   "Port Adelaide",
	"port":                    "Port Adelaide",
	"tigers":                  "Richmond",
	"saints":                  "St Kilda",
	"st. kilda":               "St Kilda",
	"swans":                   "Sydney",
	"sydney swans":            "Sydney",
	"eagles":                  "West Coast",
	"west coast eagles":       "West Coast",
	"bulldogs":                "Western Bulldogs",
	"dogs":                    "Western Bulldogs",
	"footscray":               "Western Bulldogs",
}

// ResolveTeam maps a raw club string (full name, abbreviation or common
// variant) to the canonical full name, or TeamUnknown when it matches
// nothing in the 18-team set.
func ResolveTeam(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, TeamUnknown) {
		return TeamUnknown
	}
	for _, t := range aflTeams {
		if strings.EqualFold(raw, t.Name) || strings.EqualFold(raw, t.Abbrev) {
			return t.Name
		}
	}
	if name, ok := teamAliases[strings.ToLower(raw)]; ok {
		return name
	}
	return TeamUnknown
}

// TeamAbbreviation returns the three-letter code for a canonical full
// name, or "" when the team is unknown.
func TeamAbbreviation(name string) string {
	for _, t := range aflTeams {
		if strings.EqualFold(name, t.Name) {
			return t.Abbrev
		}
	}
	return ""
}

// KnownTeam reports whether name is one of the 18 canonical full names.
func KnownTeam(name string) bool {
	for _, t := range aflTeams {
		if t.Name == name {
			return true
		}
	}
	return false
}

// TeamNames returns the canonical full names of the 18-team set.
func TeamNames() []string {
	names := make([]string, len(aflTeams))
	for i, t := range aflTeams {
		names[i] = t.Name
	}
	return names
}
