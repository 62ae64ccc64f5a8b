package domain

// User is a dashboard account.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"uname"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

// Credentials is the login payload. The backend spells the password field "passwor".
type Credentials struct {
	Username string `json:"uname"`
	Password string `json:"passwor"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username    string `json:"uname"`
	Password    string `json:"passwor"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// LoginResult is the data returned by a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// PasswordChange is the payload for updating the current user's password.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
