package handler

import "github.com/allerview/portal-gateway/internal/core/domain"

type simpleLoginRequest struct {
	Name      string `json:"name"       validate:"required,max=100"`
	Phone     string `json:"phone"      validate:"omitempty,min=9,max=20"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	AccessPin string `json:"access_pin" validate:"required,len=6,numeric"`
}

type simpleRegisterRequest struct {
	Name         string `json:"name"          validate:"required,max=100"`
	Phone        string `json:"phone"         validate:"omitempty,min=9,max=20"`
	BirthDate    string `json:"birth_date"    validate:"omitempty,datetime=2006-01-02"`
	SerialNumber string `json:"serial_number" validate:"required,max=40"`
	Pin          string `json:"pin"           validate:"required,min=4,max=10"`
}

// sessionResponse is the state snapshot the front-end shell polls to decide
// which application to mount.
type sessionResponse struct {
	Authenticated    bool             `json:"authenticated"`
	User             *domain.Identity `json:"user,omitempty"`
	LandingArea      string           `json:"landing_area"`
	PendingAccessPin string           `json:"pending_access_pin,omitempty"`
}

// authSuccessResponse is returned by the explicit login and registration
// endpoints.
type authSuccessResponse struct {
	User        *domain.Identity `json:"user"`
	LandingArea string           `json:"landing_area"`
	// AccessPin is the one-time access PIN; present only right after
	// registration and gone once acknowledged.
	AccessPin string `json:"access_pin,omitempty"`
}
