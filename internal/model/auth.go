package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for the admin area
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// RespondentClaims are survey-scoped claims issued once the access gate is passed
type RespondentClaims struct {
	SurveyID string `json:"surveyId"`
	Email    string `json:"email,omitempty"`
	ClientID string `json:"clientId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}
