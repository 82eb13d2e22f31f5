package handler

import (
	"errors"
	"strconv"

	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/service"
	"inventory-service/pkg/database"

	"github.com/labstack/echo/v4"
)

// notifier is the alert transport shared by the stock and report handlers.
// Set once from main via Init.
var notifier service.Notifier

// Init wires the notification transport into the handler package.
func Init(n service.Notifier) {
	notifier = n
}

var errAuthRequired = errors.New("authentication required")

// currentUser loads the account behind the request's principal.
func currentUser(c echo.Context) (*model.User, error) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return nil, errAuthRequired
	}
	var user model.User
	if err := database.GetDB().First(&user, principal.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// pagination reads page/page_size query parameters with the defaults the list
// screens use.
func pagination(c echo.Context) (page, pageSize, offset int) {
	page = 1
	pageSize = 10

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize, (page - 1) * pageSize
}
