// Package validation checks raw company request fields and turns them into a
// typed update, reporting every violation under the offending field name.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/coronavstech/companies/internal/company/errors"
	"github.com/coronavstech/companies/internal/company/models"
	"github.com/go-playground/validator/v10"
)

// Messages reported to clients.
const (
	MsgRequired       = "This field is required."
	MsgBlank          = "This field may not be blank."
	MsgNull           = "This field may not be null."
	MsgNotString      = "Not a valid string."
	MsgNullCharacters = "Null characters are not allowed."
	MsgDuplicateName  = "company with this name already exists."
	MsgDatetimeFormat = "Datetime has wrong format. Use one of these formats instead: " +
		"YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

const statusTag = "company_status"

// Mode selects which presence rules apply.
type Mode int

const (
	// ModeCreate requires name; absent optional fields get defaults later.
	ModeCreate Mode = iota
	// ModeReplace is a full update: name is required, other absent fields are kept.
	ModeReplace
	// ModePartial is a partial update: nothing is required.
	ModePartial
)

var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

type rule struct {
	field    string
	tag      string
	required bool
	text     bool // trimmed, NUL rejected
	value    func(in *models.CompanyInput) *string
}

var rules = []rule{
	{
		field:    models.FieldName,
		tag:      fmt.Sprintf("required,max=%d", models.MaxNameLength),
		required: true,
		text:     true,
		value:    func(in *models.CompanyInput) *string { return in.Name },
	},
	{
		field: models.FieldStatus,
		tag:   statusTag,
		value: func(in *models.CompanyInput) *string { return in.Status },
	},
	{
		field: models.FieldLastUpdate,
		value: func(in *models.CompanyInput) *string { return in.LastUpdate },
	},
	{
		field: models.FieldApplicationLink,
		tag:   fmt.Sprintf("max=%d", models.MaxApplicationLinkLength),
		text:  true,
		value: func(in *models.CompanyInput) *string { return in.ApplicationLink },
	},
	{
		field: models.FieldNotes,
		tag:   fmt.Sprintf("max=%d", models.MaxNotesLength),
		text:  true,
		value: func(in *models.CompanyInput) *string { return in.Notes },
	},
}

// Validator applies the company field rules.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the company_status rule registered.
func New() *Validator {
	v := validator.New()
	if err := v.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		return models.CompanyStatus(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// Validate checks every field of in independently. On success it returns the
// typed update holding the present fields; otherwise it returns the collected
// field errors. Uniqueness is not checked here.
func (v *Validator) Validate(in *models.CompanyInput, mode Mode) (*models.CompanyUpdate, e.FieldErrors) {
	update := &models.CompanyUpdate{}
	errs := e.FieldErrors{}

	for _, r := range rules {
		if msg, ok := in.Rejected[r.field]; ok {
			errs.Add(r.field, msg)
			continue
		}
		val := r.value(in)
		if val == nil {
			if r.required && mode != ModePartial {
				errs.Add(r.field, MsgRequired)
			}
			continue
		}
		text := *val
		if r.text {
			text = strings.TrimSpace(text)
		}
		var msgs []string
		if r.tag != "" {
			msgs = v.check(text, r.tag)
		}
		if r.text && strings.ContainsRune(text, 0) {
			msgs = append(msgs, MsgNullCharacters)
		}
		if len(msgs) > 0 {
			for _, msg := range msgs {
				errs.Add(r.field, msg)
			}
			continue
		}
		if err := assign(update, r.field, text); err != nil {
			errs.Add(r.field, err.Error())
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return update, nil
}

func (v *Validator) check(val, tag string) []string {
	err := v.validate.Var(val, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgBlank
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case statusTag:
		return InvalidChoice(fe.Value())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// InvalidChoice is the message for a status outside the accepted set.
func InvalidChoice(v any) string {
	return fmt.Sprintf("\"%v\" is not a valid choice.", v)
}

func assign(u *models.CompanyUpdate, field, val string) error {
	switch field {
	case models.FieldName:
		u.Name = &val
	case models.FieldStatus:
		st, _ := models.ParseCompanyStatus(val)
		u.Status = &st
	case models.FieldLastUpdate:
		ts, err := ParseDatetime(val)
		if err != nil {
			return err
		}
		u.LastUpdate = &ts
	case models.FieldApplicationLink:
		u.ApplicationLink = &val
	case models.FieldNotes:
		u.Notes = &val
	}
	return nil
}

// ParseDatetime accepts ISO-8601 timestamps with or without seconds, fraction
// and offset. Timestamps without an offset are taken as UTC.
func ParseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.New(MsgDatetimeFormat)
}
