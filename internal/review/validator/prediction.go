package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReviewValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReviewValidator(log *logger.Logger) *ReviewValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("resource_name", validateResourceName); err != nil {
		log.Fatal("Failed to register 'resource_name' validator", "error", err)
	}

	return &ReviewValidator{
		validate: v,
		logger:   log,
	}
}

// validateResourceName accepts a single path element: image names are joined
// onto storage locations.
func validateResourceName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) != name || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

func (v *ReviewValidator) ValidatePrediction(p *model.AIPrediction) error {
	if err := v.validateStruct(p); err != nil {
		return err
	}

	if p.OutlierScore < 0 {
		return ValidationErrors{{Field: "outlier_score", Message: "outlier_score must not be negative"}}
	}
	return nil
}

func (v *ReviewValidator) ValidateApprove(req *model.ApproveRequest) error {
	return v.validateStruct(req)
}

func (v *ReviewValidator) ValidateReject(req *model.RejectRequest) error {
	return v.validateStruct(req)
}

func (v *ReviewValidator) ValidateSkip(req *model.SkipRequest) error {
	return v.validateStruct(req)
}

func (v *ReviewValidator) ValidateBulkApprove(req *model.BulkApproveRequest, maxItems int) error {
	if err := v.validateStruct(req); err != nil {
		return err
	}

	if maxItems > 0 && len(req.ResourceIDs) > maxItems {
		return ValidationErrors{{
			Field:   "resource_ids",
			Message: fmt.Sprintf("resource_ids must contain at most %d items", maxItems),
		}}
	}
	return nil
}

func (v *ReviewValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReviewValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must contain at least %s item(s)", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte", "lte":
			message = fmt.Sprintf("%s must be between 0 and 1", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "resource_name":
			message = fmt.Sprintf("%s must be a plain file name without path separators", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
