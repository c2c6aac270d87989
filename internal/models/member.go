package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserStatus string

const (
	UserStatusPending UserStatus = "Pending"
	UserStatusActive  UserStatus = "Active"
)

// User is a login account. Only Active users can sign in; a Pending user
// is a sign-up request waiting for an admin.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"not null;uniqueIndex"`
	Mobile       string     `json:"mobile"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Status       UserStatus `json:"status" gorm:"not null;index;default:'Pending'"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Member is an approved participant in the fund. Contribution totals are
// derived from the contribution log, never stored here.
type Member struct {
	ID       uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string    `json:"name"`
	Email    string    `json:"email" gorm:"not null;uniqueIndex"`
	JoinDate time.Time `json:"joinDate"`
}

// Contribution is one logged payment. Rows are append-only.
type Contribution struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	MemberEmail string          `json:"email" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:text;not null"`
	Date        time.Time       `json:"date" gorm:"index"`
	Notes       string          `json:"notes"`
	IsMonthly   bool            `json:"isMonthly"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MemberWithContribution is a member row plus their contribution total.
type MemberWithContribution struct {
	Member
	Contribution decimal.Decimal `json:"contribution"`
}

// ContributionHistoryItem is how a member sees one of their contributions.
type ContributionHistoryItem struct {
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes"`
	IsMonthly bool            `json:"isMonthly"`
}
