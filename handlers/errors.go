package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"options-pricer/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindError maps a gin binding failure to a status code. A body that cannot
// be decoded, or that lacks a field, is schema-invalid (422). A well-formed
// body whose values break a range bound is domain-invalid (400).
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	status := http.StatusBadRequest
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			status = http.StatusUnprocessableEntity
		}
		msgs = append(msgs, describeFieldError(fe))
	}

	msg := "Invalid input"
	if status == http.StatusUnprocessableEntity {
		msg = "Invalid request body"
	}
	c.JSON(status, gin.H{"error": msg, "details": strings.Join(msgs, "; ")})
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// internalError logs err with the request's logger and answers 500.
func internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	logger.FromContext(c.Request.Context()).Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
