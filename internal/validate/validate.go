// Package validate checks raw JSON payloads against a set of known keys.
//
// Each key has a normalizer and a rule written as go-playground/validator tags.
// Unknown keys are stripped, the first failure is reported as *apperrors.Error.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
)

const LocationCode = "MODEL:VALIDATOR:FINAL_SCHEMA"

// Error types reported in ValidationError.Type
const (
	TypeObjectBase     = "object.base"
	TypeObjectMin      = "object.min"
	TypeObjectXor      = "object.xor"
	TypeStringBase     = "string.base"
	TypeStringEmpty    = "string.empty"
	TypeStringAlphanum = "string.alphanum"
	TypeStringEmail    = "string.email"
	TypeStringMin      = "string.min"
	TypeStringMax      = "string.max"
)

// Key used in errors that concern whole payload
const objectKey = "object"

type Rule struct {
	Normalize func(string) string

	// go-playground/validator tags, checked in order
	Tags string
}

var rules = map[string]Rule{
	"username": {
		Normalize: strings.TrimSpace,
		Tags:      "alphanum,min=3,max=30",
	},
	"email": {
		Normalize: func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
		Tags:      "email,min=7,max=254",
	},
}

// Schema lists keys accepted in payload
type Schema struct {
	Keys []string

	// Payload must contain exactly one of the keys
	OneOf bool
}

var engine = validator.New()

// Validate decodes body and returns normalized values of known keys present in it
func (s Schema) Validate(body []byte) (map[string]string, error) {
	var raw map[string]any

	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(&raw); err != nil || raw == nil || decoder.More() {
		return nil, apperrors.NewValidationError(
			`"body" enviado deve ser do tipo Object.`, objectKey, TypeObjectBase, LocationCode,
		)
	}

	// Strip unknown keys
	present := make([]string, 0, len(s.Keys))
	for _, key := range s.Keys {
		if _, ok := raw[key]; ok {
			present = append(present, key)
		}
	}

	if len(present) == 0 {
		return nil, apperrors.NewValidationError(
			"Objeto enviado deve ter no mínimo uma chave.", objectKey, TypeObjectMin, LocationCode,
		)
	}

	if s.OneOf && len(present) > 1 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Objeto enviado deve conter apenas uma das chaves: %s.", quoteKeys(s.Keys)),
			objectKey, TypeObjectXor, LocationCode,
		)
	}

	values := make(map[string]string, len(present))
	for _, key := range present {
		value, err := Field(key, raw[key])
		if err != nil {
			return nil, err
		}
		values[key] = value
	}

	return values, nil
}

// Field validates single value against the rule registered for key
func Field(key string, value any) (string, error) {
	rule, ok := rules[key]
	if !ok {
		return "", fmt.Errorf("no validation rule for key %q", key)
	}

	str, ok := value.(string)
	if !ok {
		return "", apperrors.NewValidationError(
			fmt.Sprintf(`"%s" deve ser do tipo String.`, key), key, TypeStringBase, LocationCode,
		)
	}

	if rule.Normalize != nil {
		str = rule.Normalize(str)
	}

	if str == "" {
		return "", apperrors.NewValidationError(
			fmt.Sprintf(`"%s" não pode estar em branco.`, key), key, TypeStringEmpty, LocationCode,
		)
	}

	err := engine.Var(str, rule.Tags)

	var errs validator.ValidationErrors
	switch {
	case err == nil:
		return str, nil
	case errors.As(err, &errs) && len(errs) > 0:
		return "", fieldError(key, errs[0])
	default:
		return "", fmt.Errorf("validator error: %w", err)
	}
}

func fieldError(key string, fe validator.FieldError) *apperrors.Error {
	var message, errType string

	switch fe.Tag() {
	case "alphanum":
		message = fmt.Sprintf(`"%s" deve conter apenas caracteres alfanuméricos.`, key)
		errType = TypeStringAlphanum
	case "email":
		message = fmt.Sprintf(`"%s" deve conter um email válido.`, key)
		errType = TypeStringEmail
	case "min":
		message = fmt.Sprintf(`"%s" deve conter no mínimo %s caracteres.`, key, fe.Param())
		errType = TypeStringMin
	case "max":
		message = fmt.Sprintf(`"%s" deve conter no máximo %s caracteres.`, key, fe.Param())
		errType = TypeStringMax
	default:
		message = fmt.Sprintf(`"%s" possui um valor inválido.`, key)
		errType = "string." + fe.Tag()
	}

	return apperrors.NewValidationError(message, key, errType, LocationCode)
}

func quoteKeys(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = `"` + k + `"`
	}
	return strings.Join(quoted, ", ")
}
