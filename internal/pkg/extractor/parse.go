package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/go-playground/validator/v10"
)

// itemSchema uses pointers so that a missing field and an empty string can
// be told apart.
type itemSchema struct {
	Name         *string `json:"name" validate:"required"`
	Type         *string `json:"type" validate:"required"`
	SerialNumber *string `json:"serial_number" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseItemRecord parses backend text strictly. Invalid JSON yields
// ErrMalformedResponse; anything that is JSON but not an object carrying
// string name, type and serial_number yields ErrSchemaValidation. Keys match
// case-sensitively and unknown fields are ignored.
func ParseItemRecord(text string) (*entity.ItemRecord, error) {
	data := []byte(strings.TrimSpace(text))

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", entity.ErrSchemaValidation, jsonKind(raw))
	}

	schema, err := schemaFromObject(obj)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(schema); err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrSchemaValidation, describe(err))
	}

	return &entity.ItemRecord{
		Name:         *schema.Name,
		Type:         *schema.Type,
		SerialNumber: *schema.SerialNumber,
	}, nil
}

// schemaFromObject looks fields up by their exact key. A null value counts as
// missing and is reported by the validator.
func schemaFromObject(obj map[string]any) (*itemSchema, error) {
	var schema itemSchema
	fields := []struct {
		key string
		dst **string
	}{
		{"name", &schema.Name},
		{"type", &schema.Type},
		{"serial_number", &schema.SerialNumber},
	}

	for _, f := range fields {
		v, ok := obj[f.key]
		if !ok || v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected string, got %s", entity.ErrSchemaValidation, f.key, jsonKind(v))
		}
		*f.dst = &str
	}
	return &schema, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": field required")
	}
	return strings.Join(msgs, "; ")
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
