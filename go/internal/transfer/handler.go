package transfer

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
)

// TransferServiceName is the fully-qualified name of the TransferService
const TransferServiceName = "rugby.transfer.v1.TransferService"

// Procedure paths served by the TransferService
const (
	TransferServiceCreatePlayerTransferProcedure = "/rugby.transfer.v1.TransferService/CreatePlayerTransfer"
	TransferServiceListPlayerTransfersProcedure  = "/rugby.transfer.v1.TransferService/ListPlayerTransfers"
	TransferServiceGetPlayerTransferProcedure    = "/rugby.transfer.v1.TransferService/GetPlayerTransfer"
)

// TransferServiceHandler is implemented by the transfer service
type TransferServiceHandler interface {
	CreatePlayerTransfer(context.Context, *connect.Request[CreatePlayerTransferRequest]) (*connect.Response[CreatePlayerTransferResponse], error)
	ListPlayerTransfers(context.Context, *connect.Request[ListPlayerTransfersRequest]) (*connect.Response[ListPlayerTransfersResponse], error)
	GetPlayerTransfer(context.Context, *connect.Request[GetPlayerTransferRequest]) (*connect.Response[GetPlayerTransferResponse], error)
}

// NewTransferServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewTransferServiceHandler(svc TransferServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(connectjson.HandlerOptions(), opts...)

	createHandler := connect.NewUnaryHandler(TransferServiceCreatePlayerTransferProcedure, svc.CreatePlayerTransfer, opts...)
	listHandler := connect.NewUnaryHandler(TransferServiceListPlayerTransfersProcedure, svc.ListPlayerTransfers, opts...)
	getHandler := connect.NewUnaryHandler(TransferServiceGetPlayerTransferProcedure, svc.GetPlayerTransfer, opts...)

	return "/" + TransferServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TransferServiceCreatePlayerTransferProcedure:
			createHandler.ServeHTTP(w, r)
		case TransferServiceListPlayerTransfersProcedure:
			listHandler.ServeHTTP(w, r)
		case TransferServiceGetPlayerTransferProcedure:
			getHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// TransferServiceClient calls the TransferService
type TransferServiceClient interface {
	CreatePlayerTransfer(context.Context, *connect.Request[CreatePlayerTransferRequest]) (*connect.Response[CreatePlayerTransferResponse], error)
	ListPlayerTransfers(context.Context, *connect.Request[ListPlayerTransfersRequest]) (*connect.Response[ListPlayerTransfersResponse], error)
	GetPlayerTransfer(context.Context, *connect.Request[GetPlayerTransferRequest]) (*connect.Response[GetPlayerTransferResponse], error)
}

// NewTransferServiceClient constructs a client for the TransferService at baseURL
func NewTransferServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TransferServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(connectjson.ClientOptions(), opts...)
	return &transferServiceClient{
		create: connect.NewClient[CreatePlayerTransferRequest, CreatePlayerTransferResponse](httpClient, baseURL+TransferServiceCreatePlayerTransferProcedure, opts...),
		list:   connect.NewClient[ListPlayerTransfersRequest, ListPlayerTransfersResponse](httpClient, baseURL+TransferServiceListPlayerTransfersProcedure, opts...),
		get:    connect.NewClient[GetPlayerTransferRequest, GetPlayerTransferResponse](httpClient, baseURL+TransferServiceGetPlayerTransferProcedure, opts...),
	}
}

type transferServiceClient struct {
	create *connect.Client[CreatePlayerTransferRequest, CreatePlayerTransferResponse]
	list   *connect.Client[ListPlayerTransfersRequest, ListPlayerTransfersResponse]
	get    *connect.Client[GetPlayerTransferRequest, GetPlayerTransferResponse]
}

func (c *transferServiceClient) CreatePlayerTransfer(ctx context.Context, req *connect.Request[CreatePlayerTransferRequest]) (*connect.Response[CreatePlayerTransferResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *transferServiceClient) ListPlayerTransfers(ctx context.Context, req *connect.Request[ListPlayerTransfersRequest]) (*connect.Response[ListPlayerTransfersResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *transferServiceClient) GetPlayerTransfer(ctx context.Context, req *connect.Request[GetPlayerTransferRequest]) (*connect.Response[GetPlayerTransferResponse], error) {
	return c.get.CallUnary(ctx, req)
}
