package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"invitecraft/internal/models"
)

// Presets are the theme presets installed into an empty database.
func Presets() map[string]models.Theme {
	return map[string]models.Theme{
		"Blush": models.DefaultTheme(),
		"Midnight": {
			Primary: "#c9a227", Secondary: "#1f2a44", Background: "#0f1626",
			Text: "#f5f5f5", Accent: "#c9a227", Headings: "#ffffff",
			Fonts: models.FontRoles{Heading: "Cormorant Garamond", Body: "Montserrat"},
		},
		"Sage": {
			Primary: "#7d8f69", Secondary: "#e3e8d8", Background: "#fbfbf7",
			Text: "#2f3a2f", Accent: "#b5a886",
			Fonts: models.FontRoles{Heading: "Libre Baskerville", Body: "Source Sans 3"},
		},
		"Classic": {
			Primary: "#1a1a1a", Secondary: "#e8e8e8", Background: "#ffffff",
			Text: "#1a1a1a",
			Fonts: models.FontRoles{Heading: "Great Vibes", Body: "EB Garamond", Accent: "Great Vibes"},
		},
	}
}

// Seed installs the built-in theme presets when the preset table is empty.
// It is safe to call on every start.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM theme_presets").Scan(&count); err != nil {
		return fmt.Errorf("seed check presets: %w", err)
	}

	if count > 0 {
		slog.Info("theme presets already seeded, skipping")
		return nil
	}

	for name, theme := range Presets() {
		data, err := json.Marshal(theme)
		if err != nil {
			return fmt.Errorf("seed encode preset %s: %w", name, err)
		}
		_, err = db.Exec(`
			INSERT INTO theme_presets (name, theme)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, name, data)
		if err != nil {
			return fmt.Errorf("seed insert preset %s: %w", name, err)
		}
	}

	slog.Info("database seeded with theme presets", "count", len(Presets()))
	return nil
}
