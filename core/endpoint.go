package core

// EndpointProvider provides a list of endpoints to register dynamically
type EndpointProvider interface {
	GetEndpoints() []Endpoint
}

// Endpoint is a framework-agnostic route template. Adapters bind their own
// handler to each OperationID.
type Endpoint struct {
	Path      string
	Method    string
	Protected bool // mounted behind the authorization gate
	Metadata  EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of plain confirmations
type MessageResponse struct {
	Message string `json:"message"`
}
