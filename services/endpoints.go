package services

import (
	"fmt"

	"github.com/lborres/roster/core"
)

// Operation ids shared by the registry and the HTTP adapters.
const (
	OpRegister        = "register"
	OpLogin           = "login"
	OpLoginWithGoogle = "loginWithGoogle"
	OpGetSession      = "getSession"
	OpCreateStudent   = "createStudent"
	OpListStudents    = "listStudents"
	OpUpdateStudent   = "updateStudent"
	OpDeleteStudent   = "deleteStudent"
	OpHealth          = "health"
)

// BaseEndpoints returns framework-agnostic endpoint specifications for the
// whole API, relative to the base path.
//
// Each endpoint is a template: adapters look up their handler by
// Metadata.OperationID and wrap Protected endpoints in the authorization gate.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/auth/register",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpRegister,
				Description: "Register a local user with email and password",
			},
		},
		{
			Path:   "/auth/login",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpLogin,
				Description: "Sign in a local user with email and password",
			},
		},
		{
			Path:   "/auth/google",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpLoginWithGoogle,
				Description: "Sign in with a Google ID token",
			},
		},
		{
			Path:      "/auth/session",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetSession,
				Description: "Get the current user's session data",
			},
		},
		{
			Path:      "/students",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpCreateStudent,
				Description: "Create a student record owned by the caller",
			},
		},
		{
			Path:      "/students",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpListStudents,
				Description: "List the caller's student records",
			},
		},
		{
			Path:      "/students/:id",
			Method:    "PUT",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpUpdateStudent,
				Description: "Update one of the caller's student records",
			},
		},
		{
			Path:      "/students/:id",
			Method:    "DELETE",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpDeleteStudent,
				Description: "Delete one of the caller's student records",
			},
		},
		{
			Path:   "/health",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpHealth,
				Description: "Report whether the store is reachable",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
	order     []string
}

// NewEndpointRegistry creates a new registry with all base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	base := BaseEndpoints()
	for i := range base {
		// base paths are unique, see TestBaseEndpoints_RoutesAreUnique
		_ = reg.register(&base[i])
	}

	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// register adds a single endpoint to the registry with conflict detection.
// Returns error if an endpoint with the same METHOD:PATH already exists.
func (r *EndpointRegistry) register(ep *core.Endpoint) error {
	key := endpointKey(ep)

	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}

	r.endpoints[key] = ep
	r.order = append(r.order, key)
	return nil
}

// Endpoints returns all registered endpoints in registration order.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.endpoints[key])
	}
	return result
}
