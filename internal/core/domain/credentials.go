package domain

// LoginCredentials is the transient login payload.
type LoginCredentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterCredentials is the transient registration payload. Password rules
// and the confirmation match are checked at struct level so every failing
// rule is reported, not just the first.
type RegisterCredentials struct {
	Username        string `json:"username"               form:"username"         validate:"min=3"`
	Password        string `json:"password"               form:"password"`
	ConfirmPassword string `json:"confirm_password"       form:"confirm_password"`
	FullName        string `json:"full_name"              form:"full_name"        validate:"required"`
	Email           string `json:"email"                  form:"email"            validate:"email"`
	PhoneNumber     string `json:"phone_number,omitempty" form:"phone_number"`
	Address         string `json:"address,omitempty"      form:"address"`
	Role            Role   `json:"account_role"           form:"account_role"     validate:"oneof=admin staff agent"`
}

// ApplyDefaults fills optional fields that carry a default.
func (c *RegisterCredentials) ApplyDefaults() {
	if c.Role == "" {
		c.Role = RoleAgent
	}
}
