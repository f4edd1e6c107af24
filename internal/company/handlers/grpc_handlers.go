package handlers

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// CompanyHandler provides gRPC methods for Company operations,
// mapping requests to a CompanyController interface.
type CompanyHandler struct {
	service CompanyController
	logger  *zap.Logger
}

var _ CompanyServiceServer = (*CompanyHandler)(nil)

// NewCompanyHandler constructs a new CompanyHandler with the given service and logger.
func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

// ListCompanies returns every company as {"companies": [...]}.
func (h *CompanyHandler) ListCompanies(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	companies, err := h.service.ListCompanies(ctx)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(companiesToStruct(companies))
}

// CreateCompany creates a company from the request fields.
func (h *CompanyHandler) CreateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "company data required")
	}

	created, err := h.service.CreateCompany(ctx, inputFromMap(req.AsMap()))
	if err != nil {
		h.logger.Debug("Create company failed", zap.Error(err))
		return nil, h.mapServiceError(err)
	}
	return h.respond(companyToStruct(created))
}

// UpdateCompany processes updates to an existing Company based on the provided ID and update data.
func (h *CompanyHandler) UpdateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := h.companyID(req)
	if err != nil {
		return nil, err
	}

	fields := req.GetFields()
	data := fields["company"].GetStructValue()
	if data == nil {
		return nil, status.Error(codes.InvalidArgument, "company data required")
	}
	partial := fields["partial"].GetBoolValue()

	updated, err := h.service.UpdateCompany(ctx, id, inputFromMap(data.AsMap()), partial)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(companyToStruct(updated))
}

// DeleteCompany removes a Company given its ID.
func (h *CompanyHandler) DeleteCompany(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := h.companyID(req)
	if err != nil {
		return nil, err
	}

	if err := h.service.DeleteCompany(ctx, id); err != nil {
		return nil, h.mapServiceError(err)
	}

	return &emptypb.Empty{}, nil
}

// GetCompany fetches a Company by ID, returning an error if not found.
func (h *CompanyHandler) GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := h.companyID(req)
	if err != nil {
		return nil, err
	}

	company, err := h.service.GetCompany(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(companyToStruct(company))
}

func (h *CompanyHandler) companyID(req *structpb.Struct) (uuid.UUID, error) {
	raw, err := requireString(req, "id")
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, err.Error())
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid company ID")
	}
	return id, nil
}

func (h *CompanyHandler) respond(out *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "A server error occurred.")
	}
	return out, nil
}
