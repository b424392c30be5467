package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mobile-forms/internal/common/validation"
)

const maxBodyBytes = 1 << 20

var (
	profileSchema = validation.MustSchema(`{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"fullName":        {"type": "string", "maxLength": 200},
			"email":           {"type": "string", "maxLength": 254},
			"phone":           {"type": ["string", "null"], "maxLength": 32},
			"passportNumber":  {"type": "string", "maxLength": 32},
			"password":        {"type": "string", "maxLength": 128},
			"confirmPassword": {"type": "string", "maxLength": 128},
			"avatarUri":       {"type": ["string", "null"], "maxLength": 2048},
			"acceptTerms":     {"type": "boolean"}
		}
	}`)

	formatSchema = validation.MustSchema(`{
		"type": "object",
		"required": ["value"],
		"additionalProperties": false,
		"properties": {"value": {"type": "string", "maxLength": 256}}
	}`)

	fieldValueSchema = validation.MustSchema(`{
		"type": "object",
		"required": ["value"],
		"additionalProperties": false,
		"properties": {"value": {"type": ["string", "boolean"]}}
	}`)

	newPostSchema = validation.MustSchema(`{
		"type": "object",
		"required": ["title", "body"],
		"properties": {
			"title": {"type": "string", "maxLength": 500},
			"body":  {"type": "string", "maxLength": 10000}
		}
	}`)

	newTaskSchema = validation.MustSchema(`{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title":       {"type": "string", "maxLength": 500},
			"description": {"type": "string", "maxLength": 10000}
		}
	}`)
)

// decodeBody reads at most maxBodyBytes, checks them against schema and
// unmarshals into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *validation.Schema, dst interface{}) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	res, err := schema.ValidateJSON(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if !res.Valid {
		return &schemaError{result: res}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}
