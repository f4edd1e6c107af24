package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "company.v1.CompanyService"

// Full method names, as seen by interceptors.
const (
	ListCompaniesMethod = "/" + ServiceName + "/ListCompanies"
	GetCompanyMethod    = "/" + ServiceName + "/GetCompany"
	CreateCompanyMethod = "/" + ServiceName + "/CreateCompany"
	UpdateCompanyMethod = "/" + ServiceName + "/UpdateCompany"
	DeleteCompanyMethod = "/" + ServiceName + "/DeleteCompany"
)

// CompanyServiceServer is the server API for the company service. Requests
// and responses are google.protobuf.Struct values:
//
//	GetCompany, DeleteCompany: {"id": "<uuid>"}
//	CreateCompany:             {"name": ..., "status": ..., ...}
//	UpdateCompany:             {"id": "<uuid>", "company": {...}, "partial": true}
//	ListCompanies response:    {"companies": [...]}
type CompanyServiceServer interface {
	ListCompanies(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCompany(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// RegisterCompanyServiceServer registers srv on s.
func RegisterCompanyServiceServer(s grpc.ServiceRegistrar, srv CompanyServiceServer) {
	s.RegisterService(&CompanyServiceDesc, srv)
}

func listCompaniesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompanyServiceServer).ListCompanies(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListCompaniesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CompanyServiceServer).ListCompanies(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// structHandler builds the method handler for every Struct-in method.
func structHandler(fullMethod string, call func(CompanyServiceServer, context.Context, *structpb.Struct) (interface{}, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CompanyServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CompanyServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CompanyServiceDesc describes the company service for grpc.Server.
var CompanyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompanyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListCompanies",
			Handler:    listCompaniesHandler,
		},
		{
			MethodName: "GetCompany",
			Handler: structHandler(GetCompanyMethod, func(s CompanyServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.GetCompany(ctx, in)
			}),
		},
		{
			MethodName: "CreateCompany",
			Handler: structHandler(CreateCompanyMethod, func(s CompanyServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.CreateCompany(ctx, in)
			}),
		},
		{
			MethodName: "UpdateCompany",
			Handler: structHandler(UpdateCompanyMethod, func(s CompanyServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.UpdateCompany(ctx, in)
			}),
		},
		{
			MethodName: "DeleteCompany",
			Handler: structHandler(DeleteCompanyMethod, func(s CompanyServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.DeleteCompany(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "company/v1/company.proto",
}

// CompanyServiceClient is the client API for the company service.
type CompanyServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCompanyServiceClient(cc grpc.ClientConnInterface) *CompanyServiceClient {
	return &CompanyServiceClient{cc: cc}
}

func (c *CompanyServiceClient) ListCompanies(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListCompaniesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompanyServiceClient) GetCompany(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetCompanyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompanyServiceClient) CreateCompany(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreateCompanyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompanyServiceClient) UpdateCompany(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UpdateCompanyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompanyServiceClient) DeleteCompany(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DeleteCompanyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
