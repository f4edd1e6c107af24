package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	e "github.com/coronavstech/companies/internal/company/errors"
	"github.com/coronavstech/companies/internal/company/models"
	"github.com/coronavstech/companies/internal/company/validation"
	"github.com/coronavstech/companies/internal/pkg/utils"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// inputFields lists the writable company fields. Anything else in a request
// body, id included, is ignored.
var inputFields = []string{
	models.FieldName,
	models.FieldStatus,
	models.FieldLastUpdate,
	models.FieldApplicationLink,
	models.FieldNotes,
}

// inputFromMap converts a decoded request body into a CompanyInput. Numbers
// are accepted as text; null and structured values are rejected per field.
func inputFromMap(data map[string]interface{}) *models.CompanyInput {
	in := &models.CompanyInput{}
	for _, field := range inputFields {
		raw, ok := data[field]
		if !ok {
			continue
		}
		text, msg := textValue(field, raw)
		if msg != "" {
			in.Reject(field, msg)
			continue
		}
		setInputField(in, field, text)
	}
	return in
}

func textValue(field string, raw interface{}) (string, string) {
	switch v := raw.(type) {
	case nil:
		return "", validation.MsgNull
	case string:
		return v, ""
	case json.Number:
		return v.String(), ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), ""
	}
	switch field {
	case models.FieldStatus:
		return "", validation.InvalidChoice(raw)
	case models.FieldLastUpdate:
		return "", validation.MsgDatetimeFormat
	default:
		return "", validation.MsgNotString
	}
}

func setInputField(in *models.CompanyInput, field, value string) {
	switch field {
	case models.FieldName:
		in.Name = utils.Ptr(value)
	case models.FieldStatus:
		in.Status = utils.Ptr(value)
	case models.FieldLastUpdate:
		in.LastUpdate = utils.Ptr(value)
	case models.FieldApplicationLink:
		in.ApplicationLink = utils.Ptr(value)
	case models.FieldNotes:
		in.Notes = utils.Ptr(value)
	}
}

// companyToMap is the wire representation shared by gRPC responses.
func companyToMap(company *models.Company) map[string]interface{} {
	return map[string]interface{}{
		"id":                        company.ID.String(),
		models.FieldName:            company.Name,
		models.FieldStatus:          string(company.Status),
		models.FieldLastUpdate:      company.LastUpdate.UTC().Format(time.RFC3339Nano),
		models.FieldApplicationLink: company.ApplicationLink,
		models.FieldNotes:           company.Notes,
	}
}

// companyToStruct converts a Company into a protobuf Struct.
func companyToStruct(company *models.Company) (*structpb.Struct, error) {
	return structpb.NewStruct(companyToMap(company))
}

// companiesToStruct wraps a list as {"companies": [...]}.
func companiesToStruct(companies []models.Company) (*structpb.Struct, error) {
	items := make([]interface{}, 0, len(companies))
	for i := range companies {
		items = append(items, companyToMap(&companies[i]))
	}
	return structpb.NewStruct(map[string]interface{}{"companies": items})
}

// mapServiceError maps domain or repository errors to appropriate gRPC status codes.
// Field violations travel as google.rpc.BadRequest details.
func (h *CompanyHandler) mapServiceError(err error) error {
	var verr *e.ValidationError
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, "Not found.")
	case errors.As(err, &verr):
		code := codes.InvalidArgument
		if errors.Is(err, e.ErrDuplicateName) {
			code = codes.AlreadyExists
		}
		return withFieldViolations(status.New(code, err.Error()), verr.Fields)
	case errors.Is(err, e.ErrDuplicateName):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "A server error occurred.")
	}
}

func withFieldViolations(st *status.Status, fields e.FieldErrors) error {
	br := &errdetails.BadRequest{}
	for _, field := range fields.Fields() {
		for _, msg := range fields[field] {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       field,
				Description: msg,
			})
		}
	}
	detailed, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func requireString(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return str.StringValue, nil
}
