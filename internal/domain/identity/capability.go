package identity

// Capability is an explicit permission resolved once when a session token is
// issued. Handlers gate on capabilities, never on role-name comparison.
type Capability string

const (
	CapabilityOrdersRead         Capability = "orders:read"
	CapabilityOrdersEditPayments Capability = "orders:edit-payments"
	CapabilityOrdersAssignChange Capability = "orders:assign-change"
	CapabilityBanksRead          Capability = "banks:read"
	CapabilityRatesRead          Capability = "rates:read"
	CapabilityReceiptsWrite      Capability = "receipts:write"
)

// AllCapabilities lists every known capability
var AllCapabilities = []Capability{
	CapabilityOrdersRead,
	CapabilityOrdersEditPayments,
	CapabilityOrdersAssignChange,
	CapabilityBanksRead,
	CapabilityRatesRead,
	CapabilityReceiptsWrite,
}

// IsValid reports whether the capability is known
func (c Capability) IsValid() bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// CapabilitySet is the resolved permission set carried in a session
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from a list of capability strings, ignoring
// unknown values
func NewCapabilitySet(values []string) CapabilitySet {
	set := make(CapabilitySet, len(values))
	for _, v := range values {
		c := Capability(v)
		if c.IsValid() {
			set[c] = struct{}{}
		}
	}
	return set
}

// Has reports whether the capability is granted
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Strings returns the granted capabilities for serialization
func (s CapabilitySet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, c := range AllCapabilities {
		if s.Has(c) {
			out = append(out, string(c))
		}
	}
	return out
}
