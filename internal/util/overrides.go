package util

// Display names that do not round-trip through the IOC reference list.
var nameOverrides = map[string]string{
	"Czechia":                    "Czech Republic",
	"Türkiye":                    "Turkey",
	"United States":              "United States of America",
	"United States of America":   "United States of America",
	"Great Britain":              "Great Britain",
	"Russia":                     "Russian Federation",
	"Korea":                      "South Korea",
	"Korea, South":               "South Korea",
	"Korea, North":               "North Korea",
	"People's Republic of China": "China",
	"Hong Kong":                  "Hong Kong, China",
	"Côte d'Ivoire":              "Cote d'Ivoire",
	"Curaçao":                    "Curacao",
}

// Alpha-2 codes for names the geographic database resolves poorly or not at all.
var iso2Overrides = map[string]string{
	"EU27":                       "EU",
	"EU":                         "EU",
	"Great Britain":              "GB",
	"United States of America":   "US",
	"United States":              "US",
	"Russia":                     "RU",
	"Russian Federation":         "RU",
	"Czech Republic":             "CZ",
	"Czechia":                    "CZ",
	"Türkiye":                    "TR",
	"Turkey":                     "TR",
	"South Korea":                "KR",
	"North Korea":                "KP",
	"Korea":                      "KR",
	"China":                      "CN",
	"People's Republic of China": "CN",
	"Hong Kong, China":           "HK",
	"Hong Kong":                  "HK",
	"Cote d'Ivoire":              "CI",
	"Côte d'Ivoire":              "CI",
	"Viet Nam":                   "VN",
	"Vietnam":                    "VN",
	"Iran":                       "IR",
	"Iran, Islamic Republic of":  "IR",
	"Moldova":                    "MD",
	"Bolivia":                    "BO",
	"Venezuela":                  "VE",
	"Syria":                      "SY",
	"Republic of the Congo":      "CG",
	"Congo":                      "CG",
	"DR Congo":                   "CD",
	"The Gambia":                 "GM",
}

var (
	foldedNameOverrides = foldKeys(nameOverrides)
	foldedISO2Overrides = foldKeys(iso2Overrides)
)

func foldKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[Fold(k)] = v
	}
	return out
}

// CanonicalName maps a label to its canonical spelling, or returns it unchanged.
func CanonicalName(label string) string {
	if v, ok := foldedNameOverrides[Fold(label)]; ok {
		return v
	}
	return label
}

func ISO2Override(name string) (string, bool) {
	v, ok := foldedISO2Overrides[Fold(name)]
	return v, ok
}
