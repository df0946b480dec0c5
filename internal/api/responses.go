package api

import (
	"time"

	"kyc_arena/internal/domain"
)

// Response shapes. Secrets never leave the server; money is rendered with
// two decimal places.

type userResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	IsApproved bool      `json:"isApproved"`
	IsEnabled  bool      `json:"isEnabled"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		IsEnabled:  u.IsEnabled,
		CreatedAt:  u.CreatedAt,
	}
}

type submissionResponse struct {
	ID        uint          `json:"id"`
	UserID    uint          `json:"userId"`
	Username  string        `json:"username,omitempty"`
	Email     string        `json:"email"`
	Exchange  string        `json:"exchange"`
	Status    domain.Status `json:"status"`
	Notes     *string       `json:"notes"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func toSubmissionResponse(s *domain.Submission) submissionResponse {
	return submissionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Email:     s.Email,
		Exchange:  s.Exchange,
		Status:    s.Status,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSubmissionWithUserResponses(rows []domain.SubmissionWithUser) []submissionResponse {
	out := make([]submissionResponse, 0, len(rows))
	for i := range rows {
		r := toSubmissionResponse(&rows[i].Submission)
		r.Username = rows[i].Username
		out = append(out, r)
	}
	return out
}

type exchangeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	PriceUsdt string    `json:"priceUsdt"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toExchangeResponse(e *domain.Exchange) exchangeResponse {
	return exchangeResponse{
		ID:        e.ID,
		Name:      e.Name,
		PriceUsdt: e.PriceUsdt.StringFixed(2),
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
	}
}

type statsResponse struct {
	TotalSubmissions      int    `json:"totalSubmissions"`
	TotalGood             int    `json:"totalGood"`
	TotalBad              int    `json:"totalBad"`
	TotalWrongPassword    int    `json:"totalWrongPassword"`
	TotalEarnings         string `json:"totalEarnings"`
	LifetimeSubmissions   int    `json:"lifetimeSubmissions"`
	LifetimeGood          int    `json:"lifetimeGood"`
	LifetimeBad           int    `json:"lifetimeBad"`
	LifetimeWrongPassword int    `json:"lifetimeWrongPassword"`
	LifetimeEarnings      string `json:"lifetimeEarnings"`
}

func toStatsResponse(s *domain.UserStats) statsResponse {
	return statsResponse{
		TotalSubmissions:      s.TotalSubmissions,
		TotalGood:             s.TotalGood,
		TotalBad:              s.TotalBad,
		TotalWrongPassword:    s.TotalWrongPassword,
		TotalEarnings:         s.TotalEarnings.StringFixed(2),
		LifetimeSubmissions:   s.LifetimeSubmissions,
		LifetimeGood:          s.LifetimeGood,
		LifetimeBad:           s.LifetimeBad,
		LifetimeWrongPassword: s.LifetimeWrongPassword,
		LifetimeEarnings:      s.LifetimeEarnings.StringFixed(2),
	}
}
