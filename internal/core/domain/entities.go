package domain

// Role represents user role in the system
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleHOD     Role = "HOD"
	RoleStaff   Role = "STAFF"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleHOD, RoleStaff:
		return true
	}
	return false
}

// EquipmentStatus represents the state of a piece of equipment
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentInUse       EquipmentStatus = "IN_USE"
	EquipmentMaintenance EquipmentStatus = "MAINTENANCE"
	EquipmentDisposed    EquipmentStatus = "DISPOSED"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentInUse, EquipmentMaintenance, EquipmentDisposed:
		return true
	}
	return false
}

// RequestStatus represents the lifecycle state of an equipment loan request
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestApproved  RequestStatus = "APPROVED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCompleted RequestStatus = "COMPLETED"
	RequestCancelled RequestStatus = "CANCELLED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestCompleted || s == RequestCancelled
}

// EventStatus represents the state of a proposed event
type EventStatus string

const (
	EventPending   EventStatus = "Pending"
	EventApproved  EventStatus = "Approved"
	EventRejected  EventStatus = "Rejected"
	EventCompleted EventStatus = "Completed"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventPending, EventApproved, EventRejected, EventCompleted:
		return true
	}
	return false
}

// EventRequestStatus represents the state of a student's request to join an event
type EventRequestStatus string

const (
	EventRequestPending  EventRequestStatus = "Pending"
	EventRequestApproved EventRequestStatus = "Approved"
	EventRequestRejected EventRequestStatus = "Rejected"
)

func (s EventRequestStatus) Valid() bool {
	switch s {
	case EventRequestPending, EventRequestApproved, EventRequestRejected:
		return true
	}
	return false
}

// Principal is the authenticated caller as resolved by the auth gate
type Principal struct {
	UserID string
	Role   Role
}
