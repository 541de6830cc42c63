package engine

// Role tags a field name with classification behavior. A field may carry
// several roles; assignment is by field name alone, case-sensitive, and
// independent of value content.
type Role uint16

const (
	// RoleNumericExempt marks business/reference-number fields that are
	// never scanned for the digit-length direct identifiers.
	RoleNumericExempt Role = 1 << iota
	RoleName
	RoleFirstName
	RoleLastName
	// RoleEmail covers email and username fields; both are validated with
	// the same email-shape check.
	RoleEmail
	RoleAddress
	RoleAddressPart
	RoleDevice
	RoleIP
)

// Has reports whether the set contains the given role tag.
func (r Role) Has(tag Role) bool { return r&tag != 0 }

// roleTags maps configuration tag names to role bits.
var roleTags = map[string]Role{
	"numeric_exempt": RoleNumericExempt,
	"name":           RoleName,
	"first_name":     RoleFirstName,
	"last_name":      RoleLastName,
	"email":          RoleEmail,
	"address":        RoleAddress,
	"address_part":   RoleAddressPart,
	"device":         RoleDevice,
	"ip":             RoleIP,
}

// ParseRole resolves a configuration tag name to its role bit.
func ParseRole(tag string) (Role, bool) {
	r, ok := roleTags[tag]
	return r, ok
}

// DefaultRoles returns the closed field-name → role table. New bindings are
// added here (or through Overrides.Roles), never as scattered string
// comparisons at call sites.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		// Business/reference numbers that happen to be 10 or 12 digits long.
		"order_id":          RoleNumericExempt,
		"transaction_id":    RoleNumericExempt,
		"product_id":        RoleNumericExempt,
		"booking_reference": RoleNumericExempt,
		"customer_id":       RoleNumericExempt,
		"warehouse_code":    RoleNumericExempt,
		"ticket_id":         RoleNumericExempt,
		"gst_number":        RoleNumericExempt,
		"state_code":        RoleNumericExempt,

		"name":       RoleName,
		"first_name": RoleFirstName,
		"last_name":  RoleLastName,

		"email":    RoleEmail,
		"username": RoleEmail,

		"address":  RoleAddress,
		"city":     RoleAddressPart,
		"state":    RoleAddressPart,
		"pin_code": RoleAddressPart,

		"device_id":  RoleDevice,
		"ip_address": RoleIP,
	}
}
