package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
	"go.uber.org/zap"
)

const sessionCookie = "scoring_session"

type Handler struct {
	Sessions      *services.SessionService
	NeedsPassword bool
	logger        *zap.Logger
}

func NewHandler(sessions *services.SessionService, needsPassword bool, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, NeedsPassword: needsPassword, logger: logger}
}

// SetupRoutes registers every page and API route on app.
func SetupRoutes(app *fiber.App, h *Handler, ws *WebSocketHandler) {
	app.Get("/", h.LoginPage)
	app.Post("/login", h.Login)
	app.Get("/step", h.StepPage)
	app.Post("/step", h.Advance)
	app.Post("/back", h.Back)
	app.Post("/restart", h.Restart)
	app.Post("/submit", h.Submit)
	app.Post("/logout", h.Logout)
	app.Get("/catalog/:country", h.Catalog)
	app.Get("/ws", ws.WebSocketMiddleware, ws.Upgrade())
}

// session resolves the session cookie to a live session id.
func (h *Handler) session(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Cookies(sessionCookie))
	if err != nil {
		return uuid.Nil, false
	}
	if _, err := h.Sessions.GetSession(id); err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) LoginPage(c *fiber.Ctx) error {
	if id, ok := h.session(c); ok {
		if view, err := h.Sessions.View(id); err == nil && view.Step.ID != models.StepLogin {
			return c.Redirect("/step", fiber.StatusSeeOther)
		}
	}
	return c.Render("login", fiber.Map{"NeedsPassword": h.NeedsPassword})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	id, ok := h.session(c)
	if !ok {
		id = h.Sessions.CreateSession().ID
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    id.String(),
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	creds := services.Credentials{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}
	_, err := h.Sessions.Login(c.UserContext(), id, creds)

	data := fiber.Map{
		"Name":          creds.Name,
		"Email":         creds.Email,
		"NeedsPassword": h.NeedsPassword,
	}
	var verr *models.ValidationError
	var aerr *models.AuthenticationError
	switch {
	case err == nil:
		return c.Redirect("/step", fiber.StatusSeeOther)
	case errors.As(err, &verr):
		data["Missing"] = verr.Missing
		return c.Status(fiber.StatusUnprocessableEntity).Render("login", data)
	case errors.As(err, &aerr):
		data["Error"] = "Login failed: check your email address and password."
		return c.Status(fiber.StatusUnauthorized).Render("login", data)
	default:
		return err
	}
}

func (h *Handler) StepPage(c *fiber.Ctx) error {
	id, ok := h.session(c)
	if !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.renderStep(c, id, fiber.StatusOK, nil)
}

func (h *Handler) Advance(c *fiber.Ctx) error {
	id, ok := h.session(c)
	if !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	from := models.StepID(c.FormValue("step"))
	_, err := h.Sessions.Advance(id, from, formFields(c))
	return h.afterAction(c, id, err)
}

func (h *Handler) Back(c *fiber.Ctx) error {
	id, ok := h.session(c)
	if !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	from := models.StepID(c.FormValue("step"))
	_, err := h.Sessions.Back(id, from, formFields(c))
	return h.afterAction(c, id, err)
}

func (h *Handler) Restart(c *fiber.Ctx) error {
	id, ok := h.session(c)
	if !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	_, err := h.Sessions.Restart(id)
	return h.afterAction(c, id, err)
}

func (h *Handler) Submit(c *fiber.Ctx) error {
	id, ok := h.session(c)
	if !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	then := services.ThenNextSample
	if c.FormValue("then") == "finish" {
		then = services.ThenFinish
	}
	_, err := h.Sessions.Submit(c.UserContext(), id, then)
	return h.afterAction(c, id, err)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if id, ok := h.session(c); ok {
		h.Sessions.End(id)
	}
	c.ClearCookie(sessionCookie)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) Catalog(c *fiber.Ctx) error {
	titles, err := services.CatalogFor(models.Country(c.Params("country")))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(titles)
}

// afterAction redirects to the active step on success and re-renders it
// with the problem otherwise.
func (h *Handler) afterAction(c *fiber.Ctx, id uuid.UUID, err error) error {
	var (
		verr *models.ValidationError
		ferr *models.FieldError
		serr *models.SubmissionError
	)
	switch {
	case err == nil, errors.Is(err, services.ErrNotAtSummary), errors.Is(err, services.ErrStepMismatch):
		return c.Redirect("/step", fiber.StatusSeeOther)
	case errors.Is(err, services.ErrNotLoggedIn):
		return c.Redirect("/", fiber.StatusSeeOther)
	case errors.As(err, &verr):
		return h.renderStep(c, id, fiber.StatusUnprocessableEntity, fiber.Map{"Missing": verr.Missing})
	case errors.As(err, &ferr):
		return h.renderStep(c, id, fiber.StatusUnprocessableEntity, fiber.Map{"Error": ferr.Error()})
	case errors.As(err, &serr):
		h.logger.Warn("submission failed", zap.Stringer("session", id), zap.Error(err))
		return h.renderStep(c, id, fiber.StatusBadGateway, fiber.Map{
			"Error": "Submission failed, your answers are kept. Please try again. (" + serr.Error() + ")",
		})
	default:
		return err
	}
}

func (h *Handler) renderStep(c *fiber.Ctx, id uuid.UUID, status int, extra fiber.Map) error {
	view, err := h.Sessions.View(id)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	if view.Step.ID == models.StepLogin {
		return c.Status(status).Render("login", fiber.Map{"NeedsPassword": h.NeedsPassword})
	}

	data := pageData(view, h.Sessions.Rubric())
	for k, v := range extra {
		data[k] = v
	}
	if missing, ok := extra["Missing"].([]string); ok {
		markMissing(data, missing)
	}
	return c.Status(status).Render(templateFor(view.Step.ID), data)
}

// formFields collects posted form values except the step marker.
func formFields(c *fiber.Ctx) map[string]string {
	fields := make(map[string]string)
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if key == "step" || key == "then" {
			return
		}
		fields[key] = string(v)
	})
	return fields
}
