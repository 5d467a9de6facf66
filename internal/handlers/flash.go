package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"

	flashLevelKey = "flash_level"
	flashTextKey  = "flash_text"
)

// Message is a notification shown once at the top of a page.
type Message struct {
	Level string
	Text  string
}

// flash stores a message for the next rendered page of this session.
func (h *ProductHandler) flash(c *fiber.Ctx, level, text string) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(flashLevelKey, level)
	sess.Set(flashTextKey, text)
	return sess.Save()
}

// popFlash returns and clears the pending flash message, if any.
func (h *ProductHandler) popFlash(c *fiber.Ctx) []Message {
	sess, err := h.sessions.Get(c)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load session")
		return nil
	}
	level, ok := sess.Get(flashLevelKey).(string)
	if !ok {
		return nil
	}
	text, _ := sess.Get(flashTextKey).(string)
	sess.Delete(flashLevelKey)
	sess.Delete(flashTextKey)
	if err := sess.Save(); err != nil {
		logrus.WithError(err).Warn("Failed to clear flash message")
	}
	return []Message{{Level: level, Text: text}}
}
