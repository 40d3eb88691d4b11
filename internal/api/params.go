package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/service"
)

// optionalInt reads an integer query parameter; nil when absent.
func optionalInt(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, service.NewValidationError(name, "must be an integer")
	}
	return &v, nil
}

// intList reads a repeated and/or comma separated integer query parameter.
func intList(c *gin.Context, name string) ([]int, error) {
	var out []int
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, service.NewValidationError(name, "must be a list of integers")
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func optionalBool(c *gin.Context, name string) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, service.NewValidationError(name, "must be a boolean")
	}
	return v, nil
}

func paging(c *gin.Context) (skip, take *int, err error) {
	if skip, err = optionalInt(c, "skip"); err != nil {
		return nil, nil, err
	}
	if take, err = optionalInt(c, "take"); err != nil {
		return nil, nil, err
	}
	return skip, take, nil
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id", "must be an integer")
		return 0, false
	}
	return id, true
}

func cuisineID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "id", "must be an integer")
		return 0, false
	}
	return id, true
}
