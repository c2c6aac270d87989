package models

import (
	"github.com/shopspring/decimal"
)

// ActionRequest is the part of every POST body the dispatcher reads
// before binding the action-specific payload.
type ActionRequest struct {
	Action     string `json:"action" binding:"required"`
	AdminEmail string `json:"adminEmail"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignInResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Email           string `json:"email,omitempty"`
	IsAdmin         bool   `json:"isAdmin"`
	Message         string `json:"message,omitempty"`
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Mobile   string `json:"mobile"`
	Password string `json:"password" binding:"required"`
}

type AddUserRequest struct {
	NewName     string `json:"newName" binding:"required"`
	NewEmail    string `json:"newEmail" binding:"required"`
	NewMobile   string `json:"newMobile"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type UpdateProfileRequest struct {
	Email  string `json:"email" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Mobile string `json:"mobile"`
}

type AddNotificationRequest struct {
	Message     string `json:"message" binding:"required"`
	TargetEmail string `json:"targetEmail"`
}

type ToggleNotificationRequest struct {
	ID       string `json:"id" binding:"required"`
	IsActive bool   `json:"isActive"`
}

type NotificationIDRequest struct {
	ID string `json:"id" binding:"required"`
}

type UpdateMetricRequest struct {
	MetricName  string `json:"metricName" binding:"required"`
	MetricValue string `json:"metricValue"`
}

// HoldingInput carries holding fields from the admin panel. Nil fields
// are left unchanged on update.
type HoldingInput struct {
	StockName     *string          `json:"stockName"`
	CompanyName   *string          `json:"companyName"`
	Ticker        *string          `json:"ticker"`
	Type          *string          `json:"type"`
	Shares        *decimal.Decimal `json:"shares"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	CurrentPrice  *string          `json:"currentPrice"`
}

type AddHoldingRequest struct {
	Holding      HoldingInput `json:"holding"`
	UseLiveQuote bool         `json:"useLiveQuote"`
}

// UpdateHoldingRequest changes a holding. A nil UseLiveQuote keeps the
// holding's current quote mode.
type UpdateHoldingRequest struct {
	ID           uint         `json:"id" binding:"required"`
	Holding      HoldingInput `json:"holding"`
	UseLiveQuote *bool        `json:"useLiveQuote"`
}

// DeleteHoldingRequest addresses a holding by id or, failing that, by
// stock name.
type DeleteHoldingRequest struct {
	ID        uint   `json:"id"`
	StockName string `json:"stockName"`
}

type AddContributionRequest struct {
	UserEmail string          `json:"userEmail" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Notes     string          `json:"notes"`
	IsMonthly bool            `json:"isMonthly"`
}

type HistoryPointInput struct {
	Date  string          `json:"date" binding:"required"`
	Value decimal.Decimal `json:"value"`
}

type UpdateHistoryRequest struct {
	ID    uint              `json:"id" binding:"required"`
	Point HistoryPointInput `json:"point"`
}

type HistoryIDRequest struct {
	ID uint `json:"id" binding:"required"`
}

type UploadFileRequest struct {
	FileName   string `json:"fileName" binding:"required"`
	FileType   string `json:"fileType"`
	MimeType   string `json:"mimeType"`
	Data       string `json:"data" binding:"required"` // base64
	UploadedBy string `json:"uploadedBy" binding:"required"`
}

// MessageResponse is the data payload of most write actions.
type MessageResponse struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}
