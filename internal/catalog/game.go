package catalog

import (
	"errors"
	"fmt"
)

// Layout tells the client which header/instructions chrome to render.
type Layout string

const (
	// Title, level and a start button.
	LayoutSimple Layout = "simple"
	// Title, instruction list and scoring rules.
	LayoutRich Layout = "rich"
)

type Category string

const (
	CategoryVocabulary Category = "vocabulary"
	CategoryReading    Category = "reading"
	CategoryWriting    Category = "writing"
	CategoryListening  Category = "listening"
	CategoryCritical   Category = "critical_analysis"
	CategoryTechnical  Category = "technical"
)

// Game is the one configuration a session is built from, whichever layout
// the page renders.
type Game struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Category       Category `json:"category"`
	Layout         Layout   `json:"layout"`
	Level          int      `json:"level,omitempty"`
	Icon           string   `json:"icon,omitempty"`
	Instructions   []string `json:"instructions"`
	Scoring        []string `json:"scoring,omitempty"`
	TotalQuestions int      `json:"total_questions"`
	TimeLimitSec   int      `json:"time_limit_sec"`
	// UnlockIndex is the gameProgress value a user holds when this game is
	// the next one to unlock.
	UnlockIndex int `json:"unlock_index"`
}

var defaultInstructions = []string{
	"Keep your face visible to the camera for the whole game.",
	"Do not switch tabs or windows. Leaving the page ends the game immediately.",
	"Right-clicking and developer tools are not allowed.",
}

// Simple builds the title/level form.
func Simple(id, title string, category Category, level, totalQuestions, timeLimitSec, unlockIndex int) Game {
	return Game{
		ID:             id,
		Title:          title,
		Category:       category,
		Layout:         LayoutSimple,
		Level:          level,
		Instructions:   defaultInstructions,
		TotalQuestions: totalQuestions,
		TimeLimitSec:   timeLimitSec,
		UnlockIndex:    unlockIndex,
	}
}

// Rich builds the form with its own instructions and scoring rules.
func Rich(id, title string, category Category, icon string, instructions, scoring []string, totalQuestions, timeLimitSec, unlockIndex int) Game {
	return Game{
		ID:             id,
		Title:          title,
		Category:       category,
		Layout:         LayoutRich,
		Icon:           icon,
		Instructions:   append(append([]string{}, instructions...), defaultInstructions...),
		Scoring:        scoring,
		TotalQuestions: totalQuestions,
		TimeLimitSec:   timeLimitSec,
		UnlockIndex:    unlockIndex,
	}
}

func (g Game) Validate() error {
	if g.ID == "" {
		return errors.New("game id is required")
	}
	if g.Title == "" {
		return fmt.Errorf("game %s: title is required", g.ID)
	}
	switch g.Layout {
	case LayoutSimple:
		if g.Level < 1 {
			return fmt.Errorf("game %s: simple layout needs a level", g.ID)
		}
	case LayoutRich:
		if len(g.Scoring) == 0 {
			return fmt.Errorf("game %s: rich layout needs scoring rules", g.ID)
		}
	default:
		return fmt.Errorf("game %s: unknown layout %q", g.ID, g.Layout)
	}
	if g.TotalQuestions < 1 {
		return fmt.Errorf("game %s: total questions must be positive", g.ID)
	}
	if g.TimeLimitSec < 1 {
		return fmt.Errorf("game %s: time limit must be positive", g.ID)
	}
	if g.UnlockIndex < 0 {
		return fmt.Errorf("game %s: unlock index must not be negative", g.ID)
	}
	return nil
}

// Unlocked reports whether a user with this gameProgress may play the game.
func (g Game) Unlocked(gameProgress int) bool {
	return g.UnlockIndex <= gameProgress
}
