package query

import "strings"

// Key identifies a cached read. Keys are hierarchical: ["student","balance"]
// is stored as "student:balance", and invalidating a key also invalidates
// everything nested under it.
type Key []string

// K builds a key from its segments.
func K(parts ...string) Key {
	return Key(parts)
}

// String returns the canonical cache key.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Pattern returns the glob matching the key and every key nested under it.
func (k Key) Pattern() string {
	return k.String() + "*"
}

// Well-known key roots.
var (
	KeyAuthMe = K("auth", "me")

	KeyStudentProfile      = K("student", "profile")
	KeyStudentBalance      = K("student", "balance")
	KeyStudentStatistics   = K("student", "statistics")
	KeyStudentTransactions = K("student", "transactions")
	KeyStudentCoupons      = K("student", "coupons")

	KeyProfessorProfile      = K("professor", "profile")
	KeyProfessorBalance      = K("professor", "balance")
	KeyProfessorStatistics   = K("professor", "statistics")
	KeyProfessorTransactions = K("professor", "transactions")
	KeyProfessorStudents     = K("professor", "students")

	KeyCompanyProfile     = K("company", "profile")
	KeyCompanyStatistics  = K("company", "statistics")
	KeyCompanyRewards     = K("company", "rewards")
	KeyCompanyValidations = K("company", "validations")
	KeyCompanyHistory     = K("company", "history")

	KeyNotifications = K("notifications")

	KeyMarketplaceRewards      = K("marketplace", "rewards")
	KeyMarketplaceInstitutions = K("marketplace", "institutions")
)
