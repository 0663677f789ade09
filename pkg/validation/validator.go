package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report yaml/json field names so messages match what the user typed.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// Struct validates v against its `validate` struct tags and returns the
// first failure in a user-friendly form.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// AllocateRequest asks for the children of a node to be apportioned.
type AllocateRequest struct {
	NodeID   int    `json:"nodeId" validate:"required,min=1"`
	Method   int    `json:"method" validate:"omitempty,min=1,max=4"`
	Chaining string `json:"chaining" validate:"omitempty,oneof=chain independent"`
}

// GoalRequest asks for the goal metrics of a node to be derived.
type GoalRequest struct {
	NodeID      int     `json:"nodeId" validate:"required,min=1"`
	Measure     int     `json:"measure" validate:"omitempty,min=1,max=3"`
	Value       float64 `json:"value" validate:"gte=0"`
	MissionTime float64 `json:"missionTime" validate:"gte=0"`
}

// SimilarItemRequest asks for a similar-item analysis of a node.
type SimilarItemRequest struct {
	NodeID    int      `json:"nodeId" validate:"required,min=1"`
	Functions []string `json:"functions" validate:"omitempty,max=5,dive,max=1024"`
}

// ValidateAllocateRequest validates an allocation request
func ValidateAllocateRequest(req *AllocateRequest) error {
	if req == nil {
		return errors.New("allocate request cannot be nil")
	}
	return Struct(req)
}

// ValidateGoalRequest validates a goal request. A reliability goal must
// also lie in [0, 1].
func ValidateGoalRequest(req *GoalRequest) error {
	if req == nil {
		return errors.New("goal request cannot be nil")
	}
	if err := Struct(req); err != nil {
		return err
	}
	if req.Measure == 1 && req.Value > 1 {
		return fmt.Errorf("value: reliability goal must not exceed 1, got %g", req.Value)
	}
	return nil
}

// ValidateSimilarItemRequest validates a similar-item request
func ValidateSimilarItemRequest(req *SimilarItemRequest) error {
	if req == nil {
		return errors.New("similar item request cannot be nil")
	}
	return Struct(req)
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "required_with":
			return fmt.Errorf("%s: field is required when %s is set", field, param)
		case "dive":
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
