package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"pnregistry-dbinit/internal/bootstrap/domain/model"
	"pnregistry-dbinit/internal/bootstrap/domain/repository"
	apperrors "pnregistry-dbinit/internal/shared/errors"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const maxTextLength = 50

var patientIDPattern = regexp.MustCompile(`^\d{1,10}$`)

// DefaultSource serves the built-in sample record
type DefaultSource struct{}

// Load implements repository.SeedSource
func (DefaultSource) Load() (model.Record, error) {
	record := model.DefaultSeedRecord()
	return record, Validate(record)
}

// FileSource reads a single record from a YAML or JSON file
type FileSource struct {
	path string
}

// Load implements repository.SeedSource
func (f FileSource) Load() (model.Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return model.Record{}, apperrors.NewConfigurationError("failed to read seed file").WithCause(err).WithDetail("path", f.path)
	}

	record, err := Decode(filepath.Ext(f.path), data)
	if err != nil {
		return model.Record{}, err
	}
	return record, Validate(record)
}

// NewSource returns the file source for path, or the built-in source when
// path is empty.
func NewSource(path string) repository.SeedSource {
	if strings.TrimSpace(path) == "" {
		return DefaultSource{}
	}
	return FileSource{path: path}
}

// Decode parses a record encoded according to the file extension ext.
// Unknown fields are rejected in both formats.
func Decode(ext string, data []byte) (model.Record, error) {
	var record model.Record

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&record); err != nil {
			return model.Record{}, apperrors.NewValidationError("failed to decode YAML seed record").WithCause(err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&record); err != nil {
			return model.Record{}, apperrors.NewValidationError("failed to decode JSON seed record").WithCause(err)
		}
	default:
		return model.Record{}, apperrors.NewValidationError(fmt.Sprintf("seed file extension %q", ext)).WithCause(apperrors.ErrUnsupportedSeed)
	}

	return record, nil
}

// Validate checks a record against the rules the registry service enforces
// on its API.
func Validate(r model.Record) error {
	ve := apperrors.NewValidationErrors()

	if _, err := uuid.Parse(r.Id); err != nil {
		ve.Add("id", "must be a UUID", r.Id)
	}
	if !patientIDPattern.MatchString(r.PatientId) {
		ve.Add("patientId", "must be 1 to 10 digits", r.PatientId)
	}
	if utf8.RuneCountInString(r.FullName) > maxTextLength {
		ve.Add("fullName", fmt.Sprintf("must be at most %d characters", maxTextLength), r.FullName)
	}
	if utf8.RuneCountInString(r.Employer) > maxTextLength {
		ve.Add("employer", fmt.Sprintf("must be at most %d characters", maxTextLength), r.Employer)
	}
	if strings.TrimSpace(r.Reason) == "" {
		ve.Add("reason", "is required", r.Reason)
	}

	var zero model.DateType
	for field, d := range map[string]model.DateType{
		"issued":     r.Issued,
		"validFrom":  r.ValidFrom,
		"validUntil": r.ValidUntil,
	} {
		if d == zero {
			ve.Add(field, "is required", nil)
		}
	}
	if r.ValidFrom != zero && r.ValidUntil != zero && r.ValidFrom.After(r.ValidUntil) {
		ve.Add("validUntil", "must not be before validFrom", r.ValidUntil.String())
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}
