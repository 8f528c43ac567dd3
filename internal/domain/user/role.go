package user

// Role is the stored role of a user.
type Role string

const (
	RoleCRE          Role = "CRE"
	RoleReceptionist Role = "Receptionist"
	RoleCRM          Role = "CRM"
	RoleDP           Role = "DP"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCRE, RoleReceptionist, RoleCRM, RoleDP:
		return true
	}
	return false
}

// EffectiveRole collapses the stored role onto the role used by permission
// checks. Dealer Principals act with CRM permissions.
func EffectiveRole(stored string) Role {
	r := Role(stored)
	if r == RoleDP {
		return RoleCRM
	}
	return r
}

// HasRole reports whether the effective role of stored is one of allowed.
func HasRole(stored string, allowed ...Role) bool {
	eff := EffectiveRole(stored)
	for _, a := range allowed {
		if EffectiveRole(string(a)) == eff {
			return true
		}
	}
	return false
}

func IsAdmin(stored string) bool {
	return EffectiveRole(stored) == RoleCRM
}

// CanBook reports whether the role may create appointments.
func CanBook(stored string) bool {
	return HasRole(stored, RoleCRE, RoleReceptionist, RoleCRM)
}

// IsPrimaryAdmin reports whether username is the protected primary admin.
func IsPrimaryAdmin(username, primary string) bool {
	return primary != "" && username == primary
}
