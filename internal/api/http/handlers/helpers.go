package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/souqna/marketplace/pkg/util"
)

// pathID returns the named route parameter. Anything that is not a uuid cannot
// identify a stored row, so it is reported as not found.
func pathID(c *fiber.Ctx, param, resource string) (string, error) {
	id := strings.TrimSpace(c.Params(param))
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, nil)
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func parseFloat(val string) *float64 {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func page(c *fiber.Ctx) (limit, offset int) {
	return parseInt(c.Query("limit"), 20), parseInt(c.Query("offset"), 0)
}
