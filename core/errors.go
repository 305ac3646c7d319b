package core

import "errors"

// Identity errors
var (
	ErrDuplicateIdentity = errors.New("user already exists")            // 400
	ErrUserNotFound      = errors.New("user not found")                 // 400
	ErrWrongProvider     = errors.New("account uses a different login") // 400
	ErrBadCredential     = errors.New("invalid credentials")            // 400
)

// Federated identity errors
var (
	ErrInvalidFederatedToken = errors.New("google authentication failed") // 401
)

// Session errors
var (
	ErrMissingCredential = errors.New("token required") // 403
	ErrInvalidSession    = errors.New("invalid token")  // 401
)

// Record errors
var (
	ErrRecordNotFound = errors.New("student not found") // 404
)

// Validation errors (client input)
var (
	ErrInvalidBody      = errors.New("invalid request body") // 400
	ErrEmailRequired    = errors.New("email is required")    // 400
	ErrInvalidEmail     = errors.New("invalid email format") // 400
	ErrPasswordRequired = errors.New("password is required") // 400
	ErrPasswordTooLong  = errors.New("password is too long") // 400
	ErrTokenRequired    = errors.New("id token is required") // 401
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired = errors.New("storage adapter is required") // 500
	ErrSecretRequired  = errors.New("secret is required")          // 500
	ErrSecretTooShort  = errors.New("secret too short")            // 500
)

var (
	ErrNotImplemented = errors.New("not implemented") // 501
)
