package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Every endpoint answers with the same envelope: successes carry
// success=true plus optional message/data, failures success=false with a
// message and optionally a list of field-level errors.

type okResp struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type listResp struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

type errResp struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func ok(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, okResp{Success: true, Message: msg, Data: data})
}

func okList(c echo.Context, count int, data interface{}) error {
	return c.JSON(http.StatusOK, listResp{Success: true, Count: count, Data: data})
}

func fail(c echo.Context, code int, msg string, errs ...string) error {
	return c.JSON(code, errResp{Success: false, Message: msg, Errors: errs})
}
