package document

import "strings"

var euCountries = []string{
	"AUT", "BEL", "BGR", "HRV", "CYP",
	"CZE", "DNK", "EST", "FIN", "FRA",
	// Germany has D instead of the expected DEU.
	"D<<", "GRC", "HUN", "IRL", "ITA",
	"LVA", "LTU", "LUX", "MLT", "NLD",
	"POL", "PRT", "ROU", "SVK", "SVN",
	"ESP", "SWE",
}

func BoolToYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

// IsEuCitizen takes the nationality as printed in the zone, fillers included.
func IsEuCitizen(nationality string) bool {
	for _, country := range euCountries {
		if strings.ToUpper(nationality) == country {
			return true
		}
	}
	return false
}
