package handlers

import "github.com/gofiber/fiber/v2"

// detail builds the wire envelope shared by every success response. Extra
// fields ride alongside message and status_code inside the detail object.
func detail(message string, status int, extra fiber.Map) fiber.Map {
	body := fiber.Map{
		"message":     message,
		"status_code": status,
	}
	for key, value := range extra {
		body[key] = value
	}
	return fiber.Map{"detail": body}
}
