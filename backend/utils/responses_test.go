package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuralnexus/backend/apperr"
)

func TestHandleErrorMapsKinds(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"validation":   {apperr.Validation("op", "bad input"), fiber.StatusBadRequest},
		"not found":    {apperr.NotFound("op", "goal"), fiber.StatusNotFound},
		"forbidden":    {apperr.Forbidden("op", "not yours"), fiber.StatusForbidden},
		"unauth":       {apperr.Unauthenticated("op", "who are you"), fiber.StatusUnauthorized},
		"conflict":     {apperr.New(apperr.ErrConflict, "op", "taken"), fiber.StatusConflict},
		"upstream":     {apperr.Upstream("op", errors.New("timeout")), fiber.StatusBadGateway},
		"persistence":  {apperr.Persistence("op", errors.New("db down")), fiber.StatusInternalServerError},
		"plain":        {errors.New("boom"), fiber.StatusInternalServerError},
		"fiber status": {fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return HandleError(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestPaginateHasMore(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return Paginate(c, []int{1, 2}, 5, 2, 2) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	var body struct {
		Data []int    `json:"data"`
		Meta PageMeta `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []int{1, 2}, body.Data)
	assert.True(t, body.Meta.HasMore)
	assert.Equal(t, int64(5), body.Meta.Total)
}
