package model

// TokenTypeBearer is the only token kind this service issues.
const TokenTypeBearer = "Bearer"

type Account struct {
	ID           int64
	Name         string
	Email        string
	Location     string
	About        *string
	PasswordHash string
}

type RefreshTokenRecord struct {
	ID        int64
	Token     string
	TokenType string
	AccountID int64
}

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,notblank"`
	Email    string  `json:"email" binding:"required,email"`
	Location string  `json:"location" binding:"required,notblank"`
	About    *string `json:"about"`
	Password string  `json:"password" binding:"required,notblank,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	Token     string `json:"token" binding:"required"`
	TokenType string `json:"tokenType"`
}

type UserToken struct {
	Token        string `json:"token"`
	TokenType    string `json:"tokenType"`
	RefreshToken string `json:"refreshToken"`
}

type AccountProfile struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Location string  `json:"location"`
	About    *string `json:"about"`
}

type AuthenticatedAccount struct {
	AccountProfile
	UserToken UserToken `json:"user_token"`
}

func ProfileOf(a *Account) AccountProfile {
	return AccountProfile{
		Name:     a.Name,
		Email:    a.Email,
		Location: a.Location,
		About:    a.About,
	}
}
