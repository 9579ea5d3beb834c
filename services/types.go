package services

import (
	"fmt"
	"time"
)

// Role represents the closed set of CampusCash user roles. Role handling is
// exhaustive everywhere: an unknown role is an error, never silently ignored.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleCompany   Role = "company"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleCompany:
		return true
	}
	return false
}

// DashboardPath returns the post-login navigation target for the role.
func (r Role) DashboardPath() (string, error) {
	switch r {
	case RoleStudent:
		return "/student/dashboard", nil
	case RoleProfessor:
		return "/professor/dashboard", nil
	case RoleCompany:
		return "/company/dashboard", nil
	default:
		return "", fmt.Errorf("unknown role %q", string(r))
	}
}

// TransactionType discriminates coin movements.
type TransactionType string

const (
	TransactionGive   TransactionType = "give"
	TransactionRedeem TransactionType = "redeem"
)

// User is the identity shared by all roles. The role is immutable after
// creation; every user owns exactly one balance.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Student is a user with role "student".
type Student struct {
	User
	CPF          string `json:"cpf"`
	Registration string `json:"registration"`
	Course       string `json:"course"`
	Institution  string `json:"institution"`
	AvatarData   string `json:"avatarData,omitempty"`
	Balance      int64  `json:"balance"`
}

// Professor is a user with role "professor".
type Professor struct {
	User
	CPF         string `json:"cpf"`
	Department  string `json:"department"`
	Institution string `json:"institution"`
	AvatarData  string `json:"avatarData,omitempty"`
	Balance     int64  `json:"balance"`
}

// Company is a user with role "company".
type Company struct {
	User
	CNPJ        string `json:"cnpj"`
	Description string `json:"description"`
	LogoData    string `json:"logoData,omitempty"`
	Balance     int64  `json:"balance"`
}

// Reward is a company-owned catalog entry redeemable for coins.
type Reward struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cost        int64     `json:"cost"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	ImageData   string    `json:"imageData,omitempty"`
	CompanyID   int64     `json:"companyId"`
	Company     *Company  `json:"company,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Transaction is an immutable record of a coin movement. The client never
// edits one after creation.
type Transaction struct {
	ID         int64           `json:"id"`
	Type       TransactionType `json:"type"`
	Amount     int64           `json:"amount"`
	FromUserID *int64          `json:"fromUserId,omitempty"`
	ToUserID   *int64          `json:"toUserId,omitempty"`
	Message    string          `json:"message,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Coupon is the proof-of-redemption artifact issued by the backend together
// with its redeem transaction.
type Coupon struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	RewardID  int64      `json:"rewardId"`
	Reward    *Reward    `json:"reward,omitempty"`
	StudentID int64      `json:"studentId"`
	Student   *Student   `json:"student,omitempty"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Institution is a public catalog entry used on signup.
type Institution struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Notification is a per-user, role-scoped message polled from the backend.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Statistics aggregates per-role dashboard numbers.
type Statistics struct {
	TotalCoins        int64         `json:"totalCoins"`
	TotalTransactions int64         `json:"totalTransactions"`
	TotalRewards      int64         `json:"totalRewards,omitempty"`
	TotalStudents     int64         `json:"totalStudents,omitempty"`
	TotalValidations  int64         `json:"totalValidations,omitempty"`
	RecentActivity    []Transaction `json:"recentActivity,omitempty"`
}

// Balance mirrors the {balance} payload of the balance endpoints.
type Balance struct {
	Balance int64 `json:"balance"`
}

// UnreadCount mirrors the {count} payload of the unread-count endpoints.
type UnreadCount struct {
	Count int64 `json:"count"`
}

// LoginRequest carries user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignupStudentRequest registers a new student account.
type SignupStudentRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	CPF          string `json:"cpf" validate:"required"`
	Registration string `json:"registration" validate:"required"`
	Course       string `json:"course" validate:"required"`
	Institution  string `json:"institution" validate:"required"`
}

// SignupCompanyRequest registers a new company account.
type SignupCompanyRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	CNPJ        string `json:"cnpj" validate:"required"`
	Description string `json:"description"`
}

// UpdateProfileRequest carries the mutable profile fields; unset fields are
// omitted from the payload.
type UpdateProfileRequest struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	CPF          string `json:"cpf,omitempty"`
	Registration string `json:"registration,omitempty"`
	Course       string `json:"course,omitempty"`
	Institution  string `json:"institution,omitempty"`
	Department   string `json:"department,omitempty"`
	Description  string `json:"description,omitempty"`
}

// GiveCoinsRequest awards coins to a student.
type GiveCoinsRequest struct {
	StudentID int64  `json:"studentId" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Reason    string `json:"reason" validate:"required"`
}

// RedeemRequest exchanges coins for a reward.
type RedeemRequest struct {
	RewardID int64 `json:"rewardId" validate:"required"`
}

// CreateRewardRequest adds a catalog entry.
type CreateRewardRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Cost        int64  `json:"cost" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
}

// UpdateRewardRequest edits a catalog entry; unset fields are left untouched.
type UpdateRewardRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Cost        *int64 `json:"cost,omitempty" validate:"omitempty,gt=0"`
	Category    string `json:"category,omitempty"`
}

// ValidateCouponRequest checks a coupon code at the point of sale.
type ValidateCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// ValidateCouponResponse reports the outcome of a coupon validation.
type ValidateCouponResponse struct {
	Valid   bool    `json:"valid"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Message string  `json:"message"`
}

// RewardSort orders marketplace listings. The values are the wire-level
// identifiers the backend expects.
type RewardSort string

const (
	SortPriceAsc  RewardSort = "preco_menor"
	SortPriceDesc RewardSort = "preco_maior"
	SortName      RewardSort = "nome"
	SortNewest    RewardSort = "data"
)

// RewardFilters narrows marketplace listings.
type RewardFilters struct {
	Category string
	PriceMin int64
	PriceMax int64
	Sort     RewardSort
}
