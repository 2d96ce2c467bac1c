package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pnregistry-dbinit/internal/bootstrap/domain/model"
	apperrors "pnregistry-dbinit/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRecord = `id: 3f2c1a52-9b0e-4d4e-8f53-2b9a1c0d7e61
fullName: Jana Nováková
patientId: "8801011234"
employer: Slovnaft
reason: úraz
issued: 2024-02-10
validFrom: 2024-02-10
validUntil: 2024-02-24
checkUpDone: true
`

const jsonRecord = `{
  "id": "3f2c1a52-9b0e-4d4e-8f53-2b9a1c0d7e61",
  "fullName": "Jana Nováková",
  "patientId": "8801011234",
  "employer": "Slovnaft",
  "reason": "úraz",
  "issued": "2024-02-10",
  "validFrom": "2024-02-10",
  "validUntil": "2024-02-24",
  "checkUp": "2024-02-20",
  "checkUpDone": true
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewSource_EmptyPathUsesBuiltInRecord(t *testing.T) {
	for _, path := range []string{"", "   "} {
		src := NewSource(path)
		assert.IsType(t, DefaultSource{}, src)

		record, err := src.Load()
		require.NoError(t, err)
		assert.Equal(t, model.DefaultSeedRecord(), record)
	}
}

func TestFileSource_LoadYAML(t *testing.T) {
	for _, name := range []string{"seed.yaml", "seed.yml", "SEED.YAML"} {
		t.Run(name, func(t *testing.T) {
			record, err := NewSource(writeFile(t, name, yamlRecord)).Load()
			require.NoError(t, err)

			assert.Equal(t, "3f2c1a52-9b0e-4d4e-8f53-2b9a1c0d7e61", record.Id)
			assert.Equal(t, "Jana Nováková", record.FullName)
			assert.Equal(t, "8801011234", record.PatientId)
			assert.Equal(t, "2024-02-24", record.ValidUntil.String())
			assert.Nil(t, record.CheckUp)
			assert.True(t, record.CheckUpDone)
		})
	}
}

func TestFileSource_LoadJSON(t *testing.T) {
	record, err := NewSource(writeFile(t, "seed.json", jsonRecord)).Load()
	require.NoError(t, err)

	assert.Equal(t, "Slovnaft", record.Employer)
	require.NotNil(t, record.CheckUp)
	assert.Equal(t, "2024-02-20", record.CheckUp.String())
}

func TestFileSource_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewSource(filepath.Join(t.TempDir(), "nope.yaml")).Load()
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConfiguration, apperrors.TypeOf(err))
		assert.Equal(t, apperrors.ExitConfig, apperrors.ExitCode(err))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := NewSource(writeFile(t, "seed.toml", "id = 1")).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnsupportedSeed))
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown yaml field", func(t *testing.T) {
		_, err := NewSource(writeFile(t, "seed.yaml", yamlRecord+"diagnosis: flu\n")).Load()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown json field", func(t *testing.T) {
		body := strings.Replace(jsonRecord, `"checkUpDone": true`, `"checkUpDone": true, "ward": "B"`, 1)
		_, err := NewSource(writeFile(t, "seed.json", body)).Load()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("malformed date", func(t *testing.T) {
		body := strings.Replace(yamlRecord, "issued: 2024-02-10", "issued: 10.02.2024", 1)
		_, err := NewSource(writeFile(t, "seed.yaml", body)).Load()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.Record)
		field  string
	}{
		{"id not a uuid", func(r *model.Record) { r.Id = "record-1" }, "id"},
		{"empty id", func(r *model.Record) { r.Id = "" }, "id"},
		{"patient id with letters", func(r *model.Record) { r.PatientId = "12ab" }, "patientId"},
		{"patient id too long", func(r *model.Record) { r.PatientId = "12345678901" }, "patientId"},
		{"empty patient id", func(r *model.Record) { r.PatientId = "" }, "patientId"},
		{"full name too long", func(r *model.Record) { r.FullName = strings.Repeat("á", 51) }, "fullName"},
		{"employer too long", func(r *model.Record) { r.Employer = strings.Repeat("x", 51) }, "employer"},
		{"blank reason", func(r *model.Record) { r.Reason = "  " }, "reason"},
		{"missing issued", func(r *model.Record) { r.Issued = model.DateType{} }, "issued"},
		{"validity reversed", func(r *model.Record) {
			r.ValidFrom = model.MustParseDate("2024-02-01")
			r.ValidUntil = model.MustParseDate("2024-01-31")
		}, "validUntil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := model.DefaultSeedRecord()
			tt.mutate(&record)

			err := Validate(record)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidSeed))

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			fields := appErr.Details["validation_errors"].([]apperrors.ValidationError)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestValidate_AcceptsBoundaryValues(t *testing.T) {
	record := model.DefaultSeedRecord()
	record.FullName = strings.Repeat("ž", 50)
	record.Employer = ""
	record.PatientId = "7"

	assert.NoError(t, Validate(record))
}
