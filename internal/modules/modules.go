// Package modules defines the four advisor module types shared across domains.
package modules

// Type identifies one of the AI advisor modules.
type Type string

const (
	Marketing       Type = "MARKETING"
	Operations      Type = "OPERATIONS"
	CustomerSupport Type = "CUSTOMER_SUPPORT"
	Compliance      Type = "COMPLIANCE"
)

// All returns every module type in registration order.
func All() []Type {
	return []Type{Marketing, Operations, CustomerSupport, Compliance}
}

// Valid reports whether t names a known module.
func Valid(t Type) bool {
	switch t {
	case Marketing, Operations, CustomerSupport, Compliance:
		return true
	default:
		return false
	}
}
