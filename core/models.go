package core

import "time"

// AuthProvider tags how a user proves who they are.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User represents an identity record in the system
//
// This is the "identity" - who someone is, and how they sign in
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash *string      `json:"-"` // local accounts only, never exposed
	GoogleID     *string      `json:"-"` // federated accounts only, never exposed
	Name         string       `json:"name"`
	Picture      *string      `json:"picture,omitempty"`
	AuthProvider AuthProvider `json:"authProvider"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Profile returns the public projection of the user returned to clients.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}
}

// UserProfile is the model returned to clients
type UserProfile struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Picture *string `json:"picture,omitempty"`
}

// Student is a record owned by exactly one user.
type Student struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"` // owner, set from the caller and never from input
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Course           string     `json:"course"`
	AdmissionDate    *time.Time `json:"admissionDate"`
	GPA              *float64   `json:"gpa"`
	Gender           string     `json:"gender"`
	EmergencyContact string     `json:"emergencyContact"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// StudentPatch carries client-supplied student fields. A nil field was absent
// from the request and is left untouched. There is no owner field: ownership
// always comes from the authenticated caller.
type StudentPatch struct {
	FirstName        *string    `json:"firstName"`
	LastName         *string    `json:"lastName"`
	Email            *string    `json:"email"`
	Phone            *string    `json:"phone"`
	Address          *string    `json:"address"`
	Course           *string    `json:"course"`
	AdmissionDate    *FlexDate  `json:"admissionDate"`
	GPA              *FlexFloat `json:"gpa"`
	Gender           *string    `json:"gender"`
	EmergencyContact *string    `json:"emergencyContact"`
}

// Apply copies every present field of p onto s.
func (p StudentPatch) Apply(s *Student) {
	setString(&s.FirstName, p.FirstName)
	setString(&s.LastName, p.LastName)
	setString(&s.Email, p.Email)
	setString(&s.Phone, p.Phone)
	setString(&s.Address, p.Address)
	setString(&s.Course, p.Course)
	setString(&s.Gender, p.Gender)
	setString(&s.EmergencyContact, p.EmergencyContact)

	if p.AdmissionDate != nil {
		s.AdmissionDate = p.AdmissionDate.Ptr()
	}
	if p.GPA != nil {
		s.GPA = p.GPA.Ptr()
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Identity is the authenticated caller recovered from a session token.
type Identity struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FederatedClaims are the profile claims extracted from a verified
// third-party identity token.
type FederatedClaims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// AuthResult is returned by every successful sign-in flow
type AuthResult struct {
	Token     string      `json:"token"`
	User      UserProfile `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// SessionData combines the caller's profile with the session expiry
type SessionData struct {
	User      UserProfile `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// RegisterInput contains the data needed to register a new local user
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginInput contains the credentials for password authentication
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginInput carries the ID token obtained by the client-side Google flow
type GoogleLoginInput struct {
	Token string `json:"token"`
}
