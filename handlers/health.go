package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notes-api/app"
)

const appVersion = "0.1.0"

// Root returns basic API information
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.Map{
			"name":        "Notes API",
			"version":     appVersion,
			"api_version": "v1",
			"description": "A simple note-taking API",
			"health_url":  "/health",
			"notes_url":   "/v1/notes",
		})
	}
}

// Health is a basic liveness check
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.Map{
			"status":  "healthy",
			"message": "API is running",
		})
	}
}

// DetailedHealth verifies database connectivity on top of liveness
func DetailedHealth(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Repo.Ping(c.UserContext()); err != nil {
			a.Logger.Error("database health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "unhealthy",
				"message": "API is running but database connection failed",
			})
		}

		return success(c, fiber.Map{
			"status":   "healthy",
			"message":  "API and database are running",
			"database": "connected",
		})
	}
}
