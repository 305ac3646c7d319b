package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/services"
)

type Options struct {
	Logger *zap.Logger

	// AllowOrigins lists the browser origins allowed to call the API with
	// credentials. Empty disables CORS headers.
	AllowOrigins []string
}

type Adapter struct {
	app  *fiber.App
	opts Options
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, opts Options) *Adapter {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Adapter{app: app, opts: opts}
}

// NewApp returns a fiber app configured with the roster error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "roster",
		ErrorHandler: ErrorHandler,
	})
}

// RegisterRoutes mounts every endpoint of app under basePath. Each endpoint
// must have a handler for its operation id.
func (a *Adapter) RegisterRoutes(app core.App, basePath string) error {
	h := &handlers{auth: app.Auth, students: app.Students, storage: app.Storage}
	byOperation := map[string]fiber.Handler{
		services.OpRegister:        h.register,
		services.OpLogin:           h.login,
		services.OpLoginWithGoogle: h.loginWithGoogle,
		services.OpGetSession:      h.session,
		services.OpCreateStudent:   h.createStudent,
		services.OpListStudents:    h.listStudents,
		services.OpUpdateStudent:   h.updateStudent,
		services.OpDeleteStudent:   h.deleteStudent,
		services.OpHealth:          h.health,
	}

	api := a.app.Group(basePath)
	api.Use(requestid.New())
	api.Use(requestLogger(a.opts.Logger))
	api.Use(recoverer.New())
	if len(a.opts.AllowOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     a.opts.AllowOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{fiber.HeaderContentType, fiber.HeaderAuthorization},
		}))
	}

	gate := requireAuth(app.Authorizer)
	for _, ep := range app.Endpoints {
		handler, ok := byOperation[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler for operation %q (%s %s)", ep.Metadata.OperationID, ep.Method, ep.Path)
		}

		if ep.Protected {
			api.Add([]string{ep.Method}, ep.Path, gate, handler)
		} else {
			api.Add([]string{ep.Method}, ep.Path, handler)
		}
	}

	return nil
}
