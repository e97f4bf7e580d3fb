package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/errs"
	"github.com/priyotosh-27/CodeMaster/backend/models"
	"github.com/priyotosh-27/CodeMaster/backend/progress"
	"github.com/priyotosh-27/CodeMaster/backend/store"
	"github.com/priyotosh-27/CodeMaster/backend/utils"
)

type ProgressController struct {
	DB       *gorm.DB
	Progress *progress.Service
	Profiles *store.ProfileStore
	Cfg      *config.Config
}

func NewProgressController(db *gorm.DB, prog *progress.Service, profiles *store.ProfileStore, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Progress: prog, Profiles: profiles, Cfg: cfg}
}

type testResultInput struct {
	Category string          `json:"category"`
	Score    json.RawMessage `json:"score"`
}

// RecordTestResult counts a test attempt and appends its score.
func (pc *ProgressController) RecordTestResult(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var input testResultInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	score, err := coerceScore(input.Score)
	if err != nil {
		return utils.RespondError(c, err)
	}

	doc, err := pc.Progress.RecordTestResult(c.UserContext(), userID, input.Category, score)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"testProgress": doc.TestProgress[input.Category],
		"updatedAt":    doc.UpdatedAt,
	})
}

type solvedChallengeInput struct {
	Category    string `json:"category"`
	ChallengeID string `json:"challengeId"`
}

// RecordSolvedChallenge marks a challenge solved; re-solving is a no-op.
func (pc *ProgressController) RecordSolvedChallenge(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var input solvedChallengeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	doc, err := pc.Progress.RecordSolvedChallenge(c.UserContext(), userID, input.Category, input.ChallengeID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"challengeProgress": doc.ChallengeProgress[input.Category],
		"updatedAt":         doc.UpdatedAt,
	})
}

type noteAccessInput struct {
	NoteID string `json:"noteId"`
}

// RecordNoteAccess saves a note id; idempotent.
func (pc *ProgressController) RecordNoteAccess(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var input noteAccessInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	doc, err := pc.Progress.RecordNoteAccess(c.UserContext(), userID, input.NoteID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"savedNotes": doc.SavedNotes,
		"updatedAt":  doc.UpdatedAt,
	})
}

// IncrementStreak bumps the streak counter by one.
func (pc *ProgressController) IncrementStreak(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	doc, err := pc.Progress.IncrementStreak(c.UserContext(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"streak":    doc.Streak,
		"updatedAt": doc.UpdatedAt,
	})
}

// GetOverview summarizes the profile document plus login activity.
func (pc *ProgressController) GetOverview(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	doc, err := pc.Profiles.Get(c.UserContext(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	var loginCount int64
	pc.DB.WithContext(c.UserContext()).
		Model(&models.LoginHistory{}).
		Where("user_id = ?", userID).
		Count(&loginCount)

	totalAttempts := 0
	totalSolved := 0
	for _, cat := range models.TestCategories {
		totalAttempts += doc.TestProgress[cat].Attempts
	}
	for _, cat := range models.ChallengeCategories {
		totalSolved += doc.ChallengeProgress[cat].SolvedCount
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"streak":            doc.Streak,
		"totalTestAttempts": totalAttempts,
		"totalSolved":       totalSolved,
		"savedNotes":        len(doc.SavedNotes),
		"logins":            loginCount,
		"lastLogin":         doc.LastLogin,
	})
}

// coerceScore accepts JSON numbers and numeric strings; anything else is a
// validation failure.
func coerceScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, &errs.ValidationError{Field: "score", Message: "score is required"}
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if num, err := strconv.ParseFloat(str, 64); err == nil {
			return num, nil
		}
	}

	return 0, &errs.ValidationError{Field: "score", Message: "score must be a number"}
}
