package api

import "time"

// DTOs exchanged with the Garage backend. All timestamps travel as
// ISO-8601 (RFC 3339) via the standard time.Time JSON encoding.

type SignUpRequest struct {
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	Role            []string `json:"role"`
	PhoneNumber     string   `json:"phoneNumber"`
	WorkshopAddress *string  `json:"workshopAddress"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignInResponse struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
}

type AvailabilityWindow struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type AvailabilityRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type Service struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

type Appointment struct {
	ID         int64     `json:"id"`
	MechanicID int64     `json:"mechanicId"`
	UserID     int64     `json:"userId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	ServiceIDs []int64   `json:"serviceIds"`
	Confirmed  bool      `json:"confirmed"`
}

type BookAppointmentRequest struct {
	MechanicID int64     `json:"mechanicId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	ServiceIDs []int64   `json:"serviceIds"`
}

type Mechanic struct {
	ID              int64                `json:"id"`
	Username        string               `json:"username"`
	Email           string               `json:"email"`
	PhoneNumber     string               `json:"phoneNumber"`
	WorkshopAddress string               `json:"workshopAddress"`
	Availabilities  []AvailabilityWindow `json:"availabilities"`
}

type Car struct {
	ID                 int64  `json:"id"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	Vin                string `json:"vin"`
	RegistrationNumber string `json:"registrationNumber"`
}

type CarRequest struct {
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	Vin                string `json:"vin"`
	RegistrationNumber string `json:"registrationNumber"`
}

type Repair struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointmentId"`
	CarID         int64     `json:"carId"`
	Description   string    `json:"description"`
	Cost          float64   `json:"cost"`
	PaymentStatus string    `json:"paymentStatus"`
	RepairDate    time.Time `json:"repairDate"`
}

type AddRepairRequest struct {
	AppointmentID int64      `json:"appointmentId"`
	CarID         int64      `json:"carId"`
	Description   string     `json:"description"`
	Cost          float64    `json:"cost"`
	UsedParts     []UsedPart `json:"usedParts"`
}

type UsedPart struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
