package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// DateFormat is the wire format of every date field of a Record
const DateFormat = "2006-01-02"

var (
	minDate = time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// DateType is a calendar date persisted and exchanged as a YYYY-MM-DD string
type DateType time.Time

// ParseDate parses and range-checks a YYYY-MM-DD date
func ParseDate(s string) (DateType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateType{}, errors.New("date string is empty")
	}

	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return DateType{}, fmt.Errorf("invalid date format, must be YYYY-MM-DD: %w", err)
	}
	if t.Before(minDate) || t.After(maxDate) {
		return DateType{}, errors.New("date is out of range, must be between 0001-01-02 and 9999-12-31")
	}
	return DateType(t), nil
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(s string) DateType {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String implements the Stringer interface.
func (d DateType) String() string {
	return time.Time(d).Format(DateFormat)
}

// After reports whether d is later than u
func (d DateType) After(u DateType) bool {
	return time.Time(d).After(time.Time(u))
}

// MarshalJSON implements the json.Marshaler interface.
func (d DateType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *DateType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("invalid date format, must be a string in YYYY-MM-DD format")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (d DateType) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. Both quoted and
// bare YYYY-MM-DD scalars are accepted.
func (d *DateType) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar in YYYY-MM-DD format", value.Line)
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface. Dates are
// stored as strings, the layout the registry service reads.
func (d DateType) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.String())
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface. It
// accepts string dates and BSON datetimes.
func (d *DateType) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.String {
		var s string
		if err := bson.UnmarshalValue(t, data, &s); err != nil {
			return err
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var tm time.Time
	if err := bson.UnmarshalValue(t, data, &tm); err != nil {
		return err
	}
	*d = DateType(tm.UTC())
	return nil
}

// Record is a sick-leave (PN) record as stored by the registry service
type Record struct {
	Id          string    `json:"id" bson:"id" yaml:"id"`
	FullName    string    `json:"fullName,omitempty" bson:"fullName,omitempty" yaml:"fullName,omitempty"`
	PatientId   string    `json:"patientId" bson:"patientId" yaml:"patientId"`
	Employer    string    `json:"employer" bson:"employer" yaml:"employer"`
	Reason      string    `json:"reason" bson:"reason" yaml:"reason"`
	Issued      DateType  `json:"issued" bson:"issued" yaml:"issued"`
	ValidFrom   DateType  `json:"validFrom" bson:"validFrom" yaml:"validFrom"`
	ValidUntil  DateType  `json:"validUntil" bson:"validUntil" yaml:"validUntil"`
	CheckUp     *DateType `json:"checkUp,omitempty" bson:"checkUp,omitempty" yaml:"checkUp,omitempty"`
	CheckUpDone bool      `json:"checkUpDone" bson:"checkUpDone" yaml:"checkUpDone"`
}

// IndexField is the record field the target collection is indexed on
const IndexField = "id"

// DefaultSeedRecord returns the sample record inserted into a fresh collection
func DefaultSeedRecord() Record {
	checkUp := MustParseDate("2024-01-31")
	return Record{
		Id:          "e0ec1244-4ae4-419c-87aa-a1ae856f5cd6",
		FullName:    "Matúš Bojko",
		PatientId:   "1123134223",
		Employer:    "FIIT STU",
		Reason:      "choroba",
		Issued:      MustParseDate("2024-01-31"),
		ValidFrom:   MustParseDate("2024-01-31"),
		ValidUntil:  MustParseDate("2024-01-31"),
		CheckUp:     &checkUp,
		CheckUpDone: false,
	}
}
