package response

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

// LockedResponse reports a temporarily locked account. It carries only the
// remaining wait, never whether the supplied password was correct.
type LockedResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int64  `json:"retry_after_seconds"`
}

type UserRegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ShortLinkResponse struct {
	ID          string    `json:"id"`
	ShortCode   string    `json:"short_code"`
	Title       string    `json:"title"`
	TargetURL   string    `json:"target_url"`
	QRCodeData  string    `json:"qr_code_data"`
	RedirectURL string    `json:"redirect_url"`
	Clicks      int64     `json:"clicks"`
	IsActive    bool      `json:"is_active"`
	HasLogo     bool      `json:"has_logo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ShortLinkListResponse struct {
	ShortLinks []ShortLinkResponse `json:"short_links"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// PortalResponse is the owner view and includes the network password.
type PortalResponse struct {
	PortalID     string    `json:"portal_id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	SSID         string    `json:"ssid"`
	Password     string    `json:"password,omitempty"`
	Security     string    `json:"security"`
	Instructions string    `json:"instructions"`
	QRCodeData   string    `json:"qr_code_data"`
	PortalURL    string    `json:"portal_url"`
	Visits       int64     `json:"visits"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PortalListResponse struct {
	Portals []PortalResponse `json:"portals"`
}

// PublicPortalResponse is the visitor view: join credentials, no ownership
// or analytics fields.
type PublicPortalResponse struct {
	Title        string `json:"title"`
	SSID         string `json:"ssid"`
	Password     string `json:"password"`
	Security     string `json:"security"`
	Instructions string `json:"instructions"`
	Slug         string `json:"slug"`
}
