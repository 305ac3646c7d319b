package fiber

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/logging"
)

type handlers struct {
	auth     core.AuthHandler
	students core.StudentHandler
	storage  core.StorageAdapter
}

// bindJSON decodes the request body into out. An empty body leaves out
// untouched.
func bindJSON(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.Bind().JSON(out); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidBody, err)
	}
	return nil
}

func (h *handlers) register(c fiber.Ctx) error {
	var input core.RegisterInput
	if err := bindJSON(c, &input); err != nil {
		return writeError(c, err)
	}

	result, err := h.auth.Register(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

func (h *handlers) login(c fiber.Ctx) error {
	var input core.LoginInput
	if err := bindJSON(c, &input); err != nil {
		return writeError(c, err)
	}

	result, err := h.auth.Login(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

func (h *handlers) loginWithGoogle(c fiber.Ctx) error {
	var input core.GoogleLoginInput
	if err := bindJSON(c, &input); err != nil {
		return writeError(c, err)
	}

	result, err := h.auth.LoginWithGoogle(c.Context(), input.Token)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

func (h *handlers) session(c fiber.Ctx) error {
	caller, ok := identityFrom(c)
	if !ok {
		return writeError(c, core.ErrInvalidSession)
	}

	session, err := h.auth.Session(c.Context(), caller)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(session)
}

func (h *handlers) createStudent(c fiber.Ctx) error {
	caller, ok := identityFrom(c)
	if !ok {
		return writeError(c, core.ErrInvalidSession)
	}

	var patch core.StudentPatch
	if err := bindJSON(c, &patch); err != nil {
		return writeError(c, err)
	}

	student, err := h.students.Create(c.Context(), caller, patch)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(student)
}

func (h *handlers) listStudents(c fiber.Ctx) error {
	caller, ok := identityFrom(c)
	if !ok {
		return writeError(c, core.ErrInvalidSession)
	}

	students, err := h.students.List(c.Context(), caller)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(students)
}

func (h *handlers) updateStudent(c fiber.Ctx) error {
	caller, ok := identityFrom(c)
	if !ok {
		return writeError(c, core.ErrInvalidSession)
	}

	var patch core.StudentPatch
	if err := bindJSON(c, &patch); err != nil {
		return writeError(c, err)
	}

	student, err := h.students.Update(c.Context(), caller, c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(student)
}

func (h *handlers) deleteStudent(c fiber.Ctx) error {
	caller, ok := identityFrom(c)
	if !ok {
		return writeError(c, core.ErrInvalidSession)
	}

	if err := h.students.Delete(c.Context(), caller, c.Params("id")); err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Deleted successfully"})
}

func (h *handlers) health(c fiber.Ctx) error {
	if err := h.storage.Ping(c.Context()); err != nil {
		logging.FromContext(c.Context()).Warn("health check failed", zap.Error(err))
		return c.Status(http.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error:   "unavailable",
			Message: "store is not reachable",
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}
