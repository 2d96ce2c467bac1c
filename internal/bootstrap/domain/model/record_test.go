package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-01-31 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())

	_, err = ParseDate("")
	assert.EqualError(t, err, "date string is empty")

	_, err = ParseDate("31.01.2024")
	assert.Error(t, err)

	_, err = ParseDate("0001-01-01")
	assert.Contains(t, err.Error(), "out of range")
}

func TestDateType_After(t *testing.T) {
	assert.True(t, MustParseDate("2024-02-01").After(MustParseDate("2024-01-31")))
	assert.False(t, MustParseDate("2024-01-31").After(MustParseDate("2024-01-31")))
}

func TestDateType_JSON(t *testing.T) {
	b, err := json.Marshal(MustParseDate("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-31"`, string(b))

	var d DateType
	assert.Error(t, json.Unmarshal([]byte(`20240131`), &d))
	require.NoError(t, json.Unmarshal([]byte(`"2023-12-24"`), &d))
	assert.Equal(t, "2023-12-24", d.String())
}

func TestDateType_YAML(t *testing.T) {
	var holder struct {
		Bare   DateType `yaml:"bare"`
		Quoted DateType `yaml:"quoted"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("bare: 2024-01-31\nquoted: \"2024-02-01\"\n"), &holder))
	assert.Equal(t, "2024-01-31", holder.Bare.String())
	assert.Equal(t, "2024-02-01", holder.Quoted.String())

	err := yaml.Unmarshal([]byte("bare: [1, 2]\n"), &holder)
	assert.Error(t, err)
}

func TestRecord_BSONLayout(t *testing.T) {
	raw, err := bson.Marshal(DefaultSeedRecord())
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	assert.Equal(t, "e0ec1244-4ae4-419c-87aa-a1ae856f5cd6", doc["id"])
	assert.Equal(t, "Matúš Bojko", doc["fullName"])
	assert.Equal(t, "1123134223", doc["patientId"])
	assert.Equal(t, "FIIT STU", doc["employer"])
	assert.Equal(t, "choroba", doc["reason"])
	assert.Equal(t, "2024-01-31", doc["issued"])
	assert.Equal(t, "2024-01-31", doc["validFrom"])
	assert.Equal(t, "2024-01-31", doc["validUntil"])
	assert.Equal(t, "2024-01-31", doc["checkUp"])
	assert.Equal(t, false, doc["checkUpDone"])
	assert.Len(t, doc, 10)
}

func TestRecord_BSONDecodeAcceptsDatetime(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"id":         "x",
		"issued":     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		"validFrom":  "2024-01-31",
		"validUntil": "2024-02-10",
	})
	require.NoError(t, err)

	var rec Record
	require.NoError(t, bson.Unmarshal(raw, &rec))
	assert.Equal(t, "2024-01-31", rec.Issued.String())
	assert.Equal(t, "2024-02-10", rec.ValidUntil.String())
	assert.Nil(t, rec.CheckUp)
}

func TestReport_Wrote(t *testing.T) {
	assert.False(t, Report{Outcome: OutcomeAlreadyInitialized}.Wrote())
	assert.False(t, Report{Outcome: OutcomeDryRun}.Wrote())
	assert.True(t, Report{Outcome: OutcomeInitialized}.Wrote())
	assert.True(t, Report{Outcome: OutcomePartiallyInitialized}.Wrote())
}
