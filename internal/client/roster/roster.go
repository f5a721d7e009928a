// Package roster turns free-form employee rows (typed into the onboarding
// wizard or imported from a spreadsheet) into the payload the API accepts.
package roster

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Role is the fixed set of employee roles the backend knows.
type Role string

const (
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
	RoleCashier    Role = "cashier"
	RoleAssociate  Role = "associate"
	RoleSecurity   Role = "security"
	RoleOther      Role = "other"
)

// Roles lists every valid role.
var Roles = []Role{RoleManager, RoleSupervisor, RoleCashier, RoleAssociate, RoleSecurity, RoleOther}

var roleLabels = map[string]Role{
	"manager":           RoleManager,
	"store manager":     RoleManager,
	"general manager":   RoleManager,
	"gm":                RoleManager,
	"owner":             RoleManager,
	"assistant manager": RoleSupervisor,
	"supervisor":        RoleSupervisor,
	"shift lead":        RoleSupervisor,
	"shift supervisor":  RoleSupervisor,
	"lead":              RoleSupervisor,
	"team lead":         RoleSupervisor,
	"cashier":           RoleCashier,
	"checkout":          RoleCashier,
	"clerk":             RoleCashier,
	"associate":         RoleAssociate,
	"sales associate":   RoleAssociate,
	"sales":             RoleAssociate,
	"stocker":           RoleAssociate,
	"staff":             RoleAssociate,
	"security":          RoleSecurity,
	"guard":             RoleSecurity,
	"security guard":    RoleSecurity,
	"loss prevention":   RoleSecurity,
	"asset protection":  RoleSecurity,
	"other":             RoleOther,
}

// emailRe is deliberately loose: one @, no spaces, a dot in the domain.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Draft is one row as entered by the user.
type Draft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Entry is one row of the API payload.
type Entry struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// MapRole maps a free-text label onto Role. Unknown labels map to RoleOther.
func MapRole(label string) Role {
	key := strings.Join(strings.Fields(foldString(label)), " ")
	if r, ok := roleLabels[key]; ok {
		return r
	}
	return RoleOther
}

// EmailKey is the case-insensitive identity of an e-mail address.
func EmailKey(email string) string {
	return foldString(strings.TrimSpace(email))
}

// foldString case-folds s. A Caser is stateful, so each call gets its own.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// ValidateEmail reports whether email looks like an address.
func ValidateEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// BuildPayload trims every field, maps roles and keeps only the first row
// per case-insensitive e-mail. Rows without an e-mail are passed through
// unfiltered, blank ones included.
func BuildPayload(drafts []Draft) []Entry {
	out := make([]Entry, 0, len(drafts))
	seen := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		e := Entry{
			Name:  strings.TrimSpace(d.Name),
			Email: strings.TrimSpace(d.Email),
			Role:  MapRole(d.Role),
		}
		if e.Email != "" {
			key := EmailKey(e.Email)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, e)
	}
	return out
}
