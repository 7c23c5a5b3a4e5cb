package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/utils"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondFailure(c *gin.Context, status int, message string, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, models.Response{
		Success: false,
		Message: message,
		Error:   &message,
		Data:    data,
	})
}

// respondError maps AppErrors to their status. Anything else is logged and
// reported as a bare 500 so driver details never reach the client.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if appErr, ok := utils.AsAppError(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
			respondFailure(c, appErr.Status, "Internal server error", nil)
			return
		}
		respondFailure(c, appErr.Status, appErr.Message, nil)
		return
	}

	logger.Error("unexpected error", "path", c.FullPath(), "error", err)
	respondFailure(c, http.StatusInternalServerError, "Internal server error", nil)
}

func respondBindError(c *gin.Context, err error) {
	if tree, ok := utils.ValidationErrors(err); ok {
		respondFailure(c, http.StatusBadRequest, "Validation failed", gin.H{"errors": tree})
		return
	}
	respondFailure(c, http.StatusBadRequest, "Invalid request body", nil)
}

func currentUserID(c *gin.Context) (int64, bool) {
	userID := c.GetInt64(middleware.ContextUserID)
	if userID == 0 {
		respondFailure(c, http.StatusUnauthorized, "Unauthorized", nil)
		return 0, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func paginationParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	return page, limit
}

func paginationLinks(c *gin.Context, meta models.PaginationMeta) *models.PaginationLinks {
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	queryParams := c.Request.URL.Query()

	makeURL := func(pageNum int) string {
		params := url.Values{}
		for key, values := range queryParams {
			if key == "page" {
				continue
			}
			for _, value := range values {
				params.Add(key, value)
			}
		}
		params.Set("page", strconv.Itoa(pageNum))
		params.Set("limit", strconv.Itoa(meta.Limit))
		return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, params.Encode())
	}

	links := &models.PaginationLinks{Self: makeURL(meta.Page)}
	if meta.Page > 1 {
		links.Prev = makeURL(meta.Page - 1)
	}
	if meta.Page < meta.TotalPages {
		links.Next = makeURL(meta.Page + 1)
	}
	return links
}
