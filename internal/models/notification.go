package models

import (
	"time"
)

// NotificationTargetAll addresses a notification to every member.
const NotificationTargetAll = "ALL"

type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Message     string    `json:"message" gorm:"not null"`
	TargetEmail string    `json:"targetEmail" gorm:"not null;index"`
	IsActive    bool      `json:"isActive" gorm:"index"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Proof is an uploaded document (payment receipt, statement) kept as
// evidence for a contribution or trade.
type Proof struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FileName   string    `json:"fileName" gorm:"not null"`
	FileType   string    `json:"fileType"`
	MimeType   string    `json:"mimeType"`
	StoredName string    `json:"-" gorm:"not null;uniqueIndex"`
	UploadedBy string    `json:"uploadedBy" gorm:"index"`
	UploadDate time.Time `json:"uploadDate"`
	FileURL    string    `json:"fileUrl" gorm:"-"`
}
