package http

import (
	"fmt"
	"reflect"
	"strings"

	"charforge/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their json names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// requestFor picks the payload type of a write endpoint from its path
func requestFor(method, path string) any {
	path = strings.TrimSuffix(path, "/")
	switch {
	case method == fiber.MethodPost && strings.HasSuffix(path, "/characters"):
		return &core.BuildRequest{}
	case method == fiber.MethodPut && strings.Contains(path, "/trackers/"):
		return &core.TrackerSetRequest{}
	case method == fiber.MethodPost && strings.HasSuffix(path, "/click"):
		return &core.TrackerClickRequest{}
	case method == fiber.MethodPost && strings.HasSuffix(path, "/rolls/duality"):
		return &core.DualityRollRequest{}
	case method == fiber.MethodPost && strings.HasSuffix(path, "/rolls/standard"):
		return &core.StandardRollRequest{}
	default:
		return nil
	}
}

// validationMiddleware parses and validates write payloads, leaving the result in
// Locals("validatedBody")
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	requestType := requestFor(method, c.Path())
	if requestType == nil {
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if err := validate.Struct(requestType); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			})
		}
		fields := make([]core.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, core.FieldError{Field: fieldPath(fe), Message: describe(fe)})
		}
		vErr := core.Validation(fields...)
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrValidationFailed,
			Details: vErr.FieldSummary(),
			Fields:  fields,
		})
	}

	c.Locals("validatedBody", requestType)
	return c.Next()
}

// fieldPath drops the root struct name: "BuildRequest.basics.name" -> "basics.name"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validatedBody returns the payload stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, bool) {
	body, ok := c.Locals("validatedBody").(*T)
	return body, ok
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
