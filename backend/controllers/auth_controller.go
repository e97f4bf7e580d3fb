package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/errs"
	"github.com/priyotosh-27/CodeMaster/backend/session"
	"github.com/priyotosh-27/CodeMaster/backend/utils"
)

type AuthController struct {
	Session *session.Controller
	Cfg     *config.Config
}

func NewAuthController(sc *session.Controller, cfg *config.Config) *AuthController {
	return &AuthController{Session: sc, Cfg: cfg}
}

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates an identity plus its zeroed profile document and returns
// a token with the new profile.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	doc, err := ac.Session.Register(c.UserContext(), input.Email, input.Password, input.Name)
	if err != nil {
		var authErr *errs.AuthError
		if errors.As(err, &authErr) {
			return utils.Conflict(c, authErr.Message)
		}
		return utils.RespondError(c, err)
	}

	token, err := utils.GenerateJWTToken(doc.UID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  doc,
	})
}

// Login authenticates and returns a token with the stored profile document.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	doc, err := ac.Session.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return utils.RespondError(c, err)
	}

	token, err := utils.GenerateJWTToken(doc.UID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  doc,
	})
}

// Logout ends the session. Always succeeds, even with no session active.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ac.Session.Logout()
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "You have been logged out"})
}
