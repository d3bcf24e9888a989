package enums

import "strings"

// Agency is a sales branch, recorded on profiles as the user's city.
type Agency string

const (
	AgencyOujda     Agency = "OUJDA"
	AgencyMarrakech Agency = "MARRAKECH"
	AgencyRabat     Agency = "RABAT"
	AgencyFes       Agency = "FES"
	AgencyCasa      Agency = "CASA"
	AgencyAgadir    Agency = "AGADIR"
	AgencyMeknes    Agency = "MEKNES"
	AgencyTanger    Agency = "TANGER"
)

var knownAgencies = []Agency{
	AgencyOujda,
	AgencyMarrakech,
	AgencyRabat,
	AgencyFes,
	AgencyCasa,
	AgencyAgadir,
	AgencyMeknes,
	AgencyTanger,
}

// String implements fmt.Stringer.
func (a Agency) String() string {
	return string(a)
}

// IsKnownAgency reports whether value names a known agency, ignoring case and padding.
func IsKnownAgency(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range knownAgencies {
		if string(candidate) == v {
			return true
		}
	}
	return false
}
