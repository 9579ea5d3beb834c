package services

// Backend endpoint paths, grouped by resource area.
const (
	epAuthLogin         = "/api/auth/login"
	epAuthSignupStudent = "/api/auth/signup/student"
	epAuthSignupCompany = "/api/auth/signup/company"
	epAuthMe            = "/api/auth/me"

	epStudentProfile       = "/api/student/profile"
	epStudentAvatar        = "/api/student/profile/avatar"
	epStudentBalance       = "/api/student/balance"
	epStudentStatistics    = "/api/student/statistics"
	epStudentTransactions  = "/api/student/transactions"
	epStudentRedeem        = "/api/student/redeem"
	epStudentCoupons       = "/api/student/coupons"
	epStudentNotifications = "/api/student/notifications"

	epProfessorProfile        = "/api/professor/profile"
	epProfessorBalance        = "/api/professor/balance"
	epProfessorStatistics     = "/api/professor/statistics"
	epProfessorTransactions   = "/api/professor/transactions"
	epProfessorStudents       = "/api/professor/students"
	epProfessorSearchStudents = "/api/professor/students/search"
	epProfessorGiveCoins      = "/api/professor/give-coins"
	epProfessorNotifications  = "/api/professor/notifications"

	epCompanyProfile        = "/api/company/profile"
	epCompanyLogo           = "/api/company/profile/logo"
	epCompanyStatistics     = "/api/company/statistics"
	epCompanyValidations    = "/api/company/validations"
	epCompanyRewards        = "/api/company/rewards"
	epCompanyHistory        = "/api/company/history"
	epCompanyValidateCoupon = "/api/company/validate-coupon"
	epCompanyCouponByHash   = "/api/company/coupon"

	epMarketplaceRewards      = "/api/rewards"
	epMarketplaceInstitutions = "/api/institutions"
)
