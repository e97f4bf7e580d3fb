package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/models"
	"github.com/priyotosh-27/CodeMaster/backend/store"
	"github.com/priyotosh-27/CodeMaster/backend/utils"
)

type UserController struct {
	Profiles *store.ProfileStore
	Cfg      *config.Config
}

func NewUserController(profiles *store.ProfileStore, cfg *config.Config) *UserController {
	return &UserController{Profiles: profiles, Cfg: cfg}
}

// GetProfile returns the authenticated user's normalized profile document.
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	doc, err := uc.Profiles.Get(c.UserContext(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, doc)
}

type updateProfileInput struct {
	Name  *string `json:"name"`
	Theme *string `json:"theme"`
	Bio   *string `json:"bio"`
}

// UpdateProfile patches display name and preferences. Absent fields are
// left untouched.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var input updateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	doc, err := uc.Profiles.Patch(c.UserContext(), userID, func(d *models.ProfileDocument) error {
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if len([]rune(name)) >= 2 {
				d.Name = name
			}
		}
		if input.Theme != nil && *input.Theme != "" {
			d.Profile.Theme = *input.Theme
		}
		if input.Bio != nil {
			d.Profile.Bio = *input.Bio
		}
		d.Touch(time.Now().UTC())
		return nil
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, doc)
}
