package handler

import (
	"net/http"

	"github.com/courtside/booking-service/internal/dto"
	"github.com/courtside/booking-service/internal/service"
	"github.com/labstack/echo/v4"
)

const codeInternal = "INTERNAL_ERROR"

var statusByKind = map[service.Kind]int{
	service.KindNotFound:             http.StatusNotFound,
	service.KindCoachNotFound:        http.StatusNotFound,
	service.KindCourtUnavailable:     http.StatusConflict,
	service.KindEquipmentUnavailable: http.StatusConflict,
	service.KindCoachUnavailable:     http.StatusConflict,
	service.KindInvalidRange:         http.StatusBadRequest,
	service.KindInvalidSlot:          http.StatusBadRequest,
	service.KindInvalidInput:         http.StatusBadRequest,
}

func newAPIError(status int, kind service.Kind, msg string) *echo.HTTPError {
	return echo.NewHTTPError(status, dto.ErrorResponse{Code: string(kind), Message: msg})
}

func badRequest(kind service.Kind, msg string) *echo.HTTPError {
	return newAPIError(http.StatusBadRequest, kind, msg)
}

// toHTTPError maps a service error onto a response. Anything that is not a
// business rejection becomes an opaque 500; the cause is kept as Internal for
// the error handler to log.
func toHTTPError(err error) *echo.HTTPError {
	kind := service.KindOf(err)
	if status, ok := statusByKind[kind]; ok {
		return newAPIError(status, kind, err.Error())
	}
	he := echo.NewHTTPError(http.StatusInternalServerError, dto.ErrorResponse{
		Code:    codeInternal,
		Message: "internal server error",
	})
	return he.SetInternal(err)
}
