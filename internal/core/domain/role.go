package domain

// Role is the capability class a caller acts under for one session.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleRequester Role = "requester"
)

// roleAliases maps legacy client values onto canonical roles.
var roleAliases = map[string]Role{
	"farmer": RoleRequester,
}

// Roles returns every role in the order role lists are reported (owner first).
func Roles() []Role {
	return []Role{RoleOwner, RoleRequester}
}

// ParseRole accepts only the canonical role values.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleRequester:
		return Role(s), true
	}
	return "", false
}

// NormalizeRole is ParseRole plus the legacy aliases accepted from clients.
// Matching is exact.
func NormalizeRole(s string) (Role, bool) {
	if r, ok := roleAliases[s]; ok {
		return r, true
	}
	return ParseRole(s)
}

func (r Role) String() string { return string(r) }

// Profile binds a mobile number to a display name and optional location,
// scoped to a single role. The same mobile may own one profile per role.
type Profile struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Mobile string   `json:"mobile"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
}

// Identity is the verified (mobile, role) pair behind a request.
type Identity struct {
	Mobile string
	Role   Role
}

// Require fails with ErrForbidden unless the identity acts as role.
func (id Identity) Require(role Role) error {
	if id.Role != role {
		return roleRequiredError(role)
	}
	return nil
}

// TokenClaims is the decoded payload of a bearer token. Role is kept raw so
// callers decide how to treat values outside the enumeration.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt int64 // unix seconds, 0 when absent
}
