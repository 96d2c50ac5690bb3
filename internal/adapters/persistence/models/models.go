package models

import (
	"time"
)

// ============================================================
// Entity Store documents
// ID is the internal storage key (gorm only). The *ID string fields are the
// stable external identifiers shared with the relationship store.
// ============================================================

// User represents users collection/table
type User struct {
	ID         uint      `gorm:"primaryKey" bson:"-" json:"-"`
	UserID     string    `gorm:"uniqueIndex;size:36;not null" bson:"userId" json:"userId"`
	Name       string    `gorm:"size:100;not null" bson:"name" json:"name"`
	Password   string    `gorm:"size:255;not null" bson:"password" json:"-"`
	Email      string    `gorm:"uniqueIndex;size:100;not null" bson:"email" json:"email"`
	Role       string    `gorm:"size:20;not null;index" bson:"role" json:"role"`
	Department string    `gorm:"size:100;not null;index" bson:"department" json:"department"`
	CreatedAt  time.Time `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}

// Equipment represents equipment collection/table
type Equipment struct {
	ID           uint       `gorm:"primaryKey" bson:"-" json:"-"`
	EquipmentID  string     `gorm:"uniqueIndex;size:36;not null" bson:"equipmentId" json:"equipmentId"`
	Name         string     `gorm:"size:150;not null" bson:"name" json:"name"`
	Description  string     `gorm:"type:text" bson:"description" json:"description"`
	Category     string     `gorm:"size:100;not null" bson:"category" json:"category"`
	Department   string     `gorm:"size:100;not null;index" bson:"department" json:"department"`
	Status       string     `gorm:"size:20;not null;default:'AVAILABLE';index" bson:"status" json:"status"`
	PurchaseDate *time.Time `bson:"purchaseDate,omitempty" json:"purchaseDate,omitempty"`
	Value        *float64   `bson:"value,omitempty" json:"value,omitempty"`
	Location     string     `gorm:"size:150" bson:"location" json:"location"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Request represents an equipment loan request
type Request struct {
	ID            uint       `gorm:"primaryKey" bson:"-" json:"-"`
	RequestID     string     `gorm:"uniqueIndex;size:36;not null" bson:"requestId" json:"requestId"`
	StudentID     string     `gorm:"size:36;not null;index" bson:"studentId" json:"studentId"`
	EquipmentID   string     `gorm:"size:36;not null;index" bson:"equipmentId" json:"equipmentId"`
	Status        string     `gorm:"size:20;not null;default:'PENDING';index" bson:"status" json:"status"`
	RequestDate   time.Time  `gorm:"not null" bson:"requestDate" json:"requestDate"`
	RequiredFrom  time.Time  `gorm:"not null" bson:"requiredFrom" json:"requiredFrom"`
	RequiredUntil time.Time  `gorm:"not null" bson:"requiredUntil" json:"requiredUntil"`
	Purpose       string     `gorm:"type:text;not null" bson:"purpose" json:"purpose"`
	ApprovedBy    string     `gorm:"size:36" bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovalDate  *time.Time `bson:"approvalDate,omitempty" json:"approvalDate,omitempty"`
	ReturnDate    *time.Time `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	Comments      string     `gorm:"type:text" bson:"comments" json:"comments"`
}

func (Request) TableName() string {
	return "requests"
}

// RequestResponse is a request with its related entities resolved
type RequestResponse struct {
	RequestID     string        `json:"requestId"`
	Status        string        `json:"status"`
	RequestDate   time.Time     `json:"requestDate"`
	RequiredFrom  time.Time     `json:"requiredFrom"`
	RequiredUntil time.Time     `json:"requiredUntil"`
	Purpose       string        `json:"purpose"`
	ApprovalDate  *time.Time    `json:"approvalDate,omitempty"`
	ReturnDate    *time.Time    `json:"returnDate,omitempty"`
	Comments      string        `json:"comments"`
	Student       *UserResponse `json:"student"`
	Equipment     *Equipment    `json:"equipment"`
	ApprovedBy    *UserResponse `json:"approvedBy,omitempty"`
}

// Event represents a proposed campus event
type Event struct {
	ID          uint      `gorm:"primaryKey" bson:"-" json:"-"`
	EventID     string    `gorm:"uniqueIndex;size:36;not null" bson:"eventId" json:"eventId"`
	EventName   string    `gorm:"size:200;not null" bson:"eventName" json:"eventName"`
	Description string    `gorm:"type:text" bson:"description" json:"description"`
	Date        time.Time `bson:"date" json:"date"`
	Location    string    `gorm:"size:150" bson:"location" json:"location"`
	Status      string    `gorm:"size:20;not null;default:'Pending';index" bson:"status" json:"status"`
	CreatedBy   string    `gorm:"size:36;not null;index" bson:"createdBy" json:"createdBy"`
	ApprovedBy  string    `gorm:"size:36" bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	CreatedDate time.Time `gorm:"autoCreateTime" bson:"createdDate" json:"createdDate"`
	Comments    string    `gorm:"type:text" bson:"comments" json:"comments"`
}

func (Event) TableName() string {
	return "events"
}

// EventResponse is an event with creator and approver resolved
type EventResponse struct {
	EventID     string        `json:"eventId"`
	EventName   string        `json:"eventName"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Location    string        `json:"location"`
	Status      string        `json:"status"`
	CreatedDate time.Time     `json:"createdDate"`
	Comments    string        `json:"comments"`
	CreatedBy   *UserResponse `json:"createdBy"`
	ApprovedBy  *UserResponse `json:"approvedBy,omitempty"`
}

// EventRequest represents a student's request to take part in an event
type EventRequest struct {
	ID          uint      `gorm:"primaryKey" bson:"-" json:"-"`
	RequestID   string    `gorm:"uniqueIndex;size:36;not null" bson:"requestId" json:"requestId"`
	EventID     string    `gorm:"size:36;not null;index" bson:"eventId" json:"eventId"`
	StudentID   string    `gorm:"size:36;not null;index" bson:"studentId" json:"studentId"`
	Status      string    `gorm:"size:20;not null;default:'Pending';index" bson:"status" json:"status"`
	RequestDate time.Time `bson:"requestDate" json:"requestDate"`
	Comments    string    `gorm:"type:text" bson:"comments" json:"comments"`
}

func (EventRequest) TableName() string {
	return "event_requests"
}

// EventRequestResponse is an event request with student and event resolved
type EventRequestResponse struct {
	RequestID   string        `json:"requestId"`
	Status      string        `json:"status"`
	RequestDate time.Time     `json:"requestDate"`
	Comments    string        `json:"comments"`
	Student     *UserResponse `json:"student"`
	Event       *Event        `json:"event"`
}

// DepartmentResponse is the read-time department view. It is not stored.
type DepartmentResponse struct {
	Name      string        `json:"name"`
	Location  string        `json:"location,omitempty"`
	HOD       *UserResponse `json:"hod"`
	Equipment []*Equipment  `json:"equipment"`
}
