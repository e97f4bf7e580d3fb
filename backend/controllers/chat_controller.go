package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/priyotosh-27/CodeMaster/backend/chat"
	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/errs"
)

type ChatController struct {
	Proxy *chat.Proxy
	Cfg   *config.Config
}

func NewChatController(proxy *chat.Proxy, cfg *config.Config) *ChatController {
	return &ChatController{Proxy: proxy, Cfg: cfg}
}

type chatInput struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
}

// SendMessage forwards one chat message to the configured model provider.
// The response bodies here are the exact shapes the front end expects, so
// they bypass the usual success/error envelope.
func (cc *ChatController) SendMessage(c *fiber.Ctx) error {
	var input chatInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required.",
		})
	}

	reply, err := cc.Proxy.Send(c.UserContext(), input.Message, input.Provider)
	if err != nil {
		var upstream *errs.UpstreamError
		if errors.As(err, &upstream) && upstream.Message != "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": upstream.Message,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{
		"reply": reply,
	})
}

// GetConfig serves the public client-initialization parameters. It reads
// process-wide configuration only, so repeated calls return the same payload.
func (cc *ChatController) GetConfig(c *fiber.Ctx) error {
	return c.JSON(cc.Cfg.Client)
}
