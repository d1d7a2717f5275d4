package authapi

import (
	"errors"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

var errMissingUserID = errors.New("me: response has no user_id")

// userRecord is the identity-shaped record of the auth service. GET /auth/me/
// returns it flat with "user_id"; the {user: ...} envelopes of login and
// register may carry "id" instead.
type userRecord struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	AccountRole string `json:"account_role"`
	AgencyID    *int64 `json:"agency_id"`
}

func (u userRecord) identity() *domain.Identity {
	id := u.UserID
	if id == 0 {
		id = u.ID
	}
	return &domain.Identity{
		ID:          id,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Role:        domain.Role(u.AccountRole),
		AgencyID:    u.AgencyID,
	}
}

type userEnvelope struct {
	User *userRecord `json:"user"`
}

func (e userEnvelope) identity() *domain.Identity {
	if e.User == nil {
		return nil
	}
	return e.User.identity()
}
