// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"folio/internal/logger"
)

//go:embed seed/projects.json
var seedProjects []byte

type seedProject struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Time        string   `json:"time"`
	Tags        []string `json:"tags"`
	Highlights  []string `json:"highlights"`
	Challenges  []string `json:"challenges"`
	Link        string   `json:"link"`
}

// Seed populates the database with sample projects for development.
// It does nothing when the projects table already has rows.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return fmt.Errorf("seed check projects: %w", err)
	}

	if count > 0 {
		logger.Log.Info("database already seeded, skipping")
		return nil
	}

	var projects []seedProject
	if err := json.Unmarshal(seedProjects, &projects); err != nil {
		return fmt.Errorf("seed decode projects: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for i, p := range projects {
		features, _ := json.Marshal(p.Features)
		tags, _ := json.Marshal(p.Tags)
		highlights, _ := json.Marshal(p.Highlights)
		challenges, _ := json.Marshal(p.Challenges)

		_, err := tx.Exec(`
			INSERT INTO projects (title, description, features, time, tags,
			                      highlights, challenges, link, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.Title, p.Description, features, p.Time, tags, highlights, challenges, p.Link, i)
		if err != nil {
			return fmt.Errorf("seed insert project %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	logger.Log.Info("database seeded with sample projects", zap.Int("count", len(projects)))
	return nil
}
