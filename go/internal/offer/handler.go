package offer

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
)

// OfferServiceName is the fully-qualified name of the OfferService
const OfferServiceName = "rugby.offer.v1.OfferService"

// Procedure paths served by the OfferService
const (
	OfferServiceCreateTransferOfferProcedure = "/rugby.offer.v1.OfferService/CreateTransferOffer"
	OfferServiceListTransferOffersProcedure  = "/rugby.offer.v1.OfferService/ListTransferOffers"
	OfferServiceGetTransferOfferProcedure    = "/rugby.offer.v1.OfferService/GetTransferOffer"
	OfferServiceAcceptTransferOfferProcedure = "/rugby.offer.v1.OfferService/AcceptTransferOffer"
	OfferServiceRejectTransferOfferProcedure = "/rugby.offer.v1.OfferService/RejectTransferOffer"
)

// OfferServiceHandler is implemented by the offer service
type OfferServiceHandler interface {
	CreateTransferOffer(context.Context, *connect.Request[CreateTransferOfferRequest]) (*connect.Response[CreateTransferOfferResponse], error)
	ListTransferOffers(context.Context, *connect.Request[ListTransferOffersRequest]) (*connect.Response[ListTransferOffersResponse], error)
	GetTransferOffer(context.Context, *connect.Request[GetTransferOfferRequest]) (*connect.Response[GetTransferOfferResponse], error)
	AcceptTransferOffer(context.Context, *connect.Request[AcceptTransferOfferRequest]) (*connect.Response[AcceptTransferOfferResponse], error)
	RejectTransferOffer(context.Context, *connect.Request[RejectTransferOfferRequest]) (*connect.Response[RejectTransferOfferResponse], error)
}

// NewOfferServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewOfferServiceHandler(svc OfferServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(connectjson.HandlerOptions(), opts...)

	createHandler := connect.NewUnaryHandler(OfferServiceCreateTransferOfferProcedure, svc.CreateTransferOffer, opts...)
	listHandler := connect.NewUnaryHandler(OfferServiceListTransferOffersProcedure, svc.ListTransferOffers, opts...)
	getHandler := connect.NewUnaryHandler(OfferServiceGetTransferOfferProcedure, svc.GetTransferOffer, opts...)
	acceptHandler := connect.NewUnaryHandler(OfferServiceAcceptTransferOfferProcedure, svc.AcceptTransferOffer, opts...)
	rejectHandler := connect.NewUnaryHandler(OfferServiceRejectTransferOfferProcedure, svc.RejectTransferOffer, opts...)

	return "/" + OfferServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case OfferServiceCreateTransferOfferProcedure:
			createHandler.ServeHTTP(w, r)
		case OfferServiceListTransferOffersProcedure:
			listHandler.ServeHTTP(w, r)
		case OfferServiceGetTransferOfferProcedure:
			getHandler.ServeHTTP(w, r)
		case OfferServiceAcceptTransferOfferProcedure:
			acceptHandler.ServeHTTP(w, r)
		case OfferServiceRejectTransferOfferProcedure:
			rejectHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// OfferServiceClient calls the OfferService
type OfferServiceClient interface {
	CreateTransferOffer(context.Context, *connect.Request[CreateTransferOfferRequest]) (*connect.Response[CreateTransferOfferResponse], error)
	ListTransferOffers(context.Context, *connect.Request[ListTransferOffersRequest]) (*connect.Response[ListTransferOffersResponse], error)
	GetTransferOffer(context.Context, *connect.Request[GetTransferOfferRequest]) (*connect.Response[GetTransferOfferResponse], error)
	AcceptTransferOffer(context.Context, *connect.Request[AcceptTransferOfferRequest]) (*connect.Response[AcceptTransferOfferResponse], error)
	RejectTransferOffer(context.Context, *connect.Request[RejectTransferOfferRequest]) (*connect.Response[RejectTransferOfferResponse], error)
}

// NewOfferServiceClient constructs a client for the OfferService at baseURL
func NewOfferServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) OfferServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(connectjson.ClientOptions(), opts...)
	return &offerServiceClient{
		create: connect.NewClient[CreateTransferOfferRequest, CreateTransferOfferResponse](httpClient, baseURL+OfferServiceCreateTransferOfferProcedure, opts...),
		list:   connect.NewClient[ListTransferOffersRequest, ListTransferOffersResponse](httpClient, baseURL+OfferServiceListTransferOffersProcedure, opts...),
		get:    connect.NewClient[GetTransferOfferRequest, GetTransferOfferResponse](httpClient, baseURL+OfferServiceGetTransferOfferProcedure, opts...),
		accept: connect.NewClient[AcceptTransferOfferRequest, AcceptTransferOfferResponse](httpClient, baseURL+OfferServiceAcceptTransferOfferProcedure, opts...),
		reject: connect.NewClient[RejectTransferOfferRequest, RejectTransferOfferResponse](httpClient, baseURL+OfferServiceRejectTransferOfferProcedure, opts...),
	}
}

type offerServiceClient struct {
	create *connect.Client[CreateTransferOfferRequest, CreateTransferOfferResponse]
	list   *connect.Client[ListTransferOffersRequest, ListTransferOffersResponse]
	get    *connect.Client[GetTransferOfferRequest, GetTransferOfferResponse]
	accept *connect.Client[AcceptTransferOfferRequest, AcceptTransferOfferResponse]
	reject *connect.Client[RejectTransferOfferRequest, RejectTransferOfferResponse]
}

func (c *offerServiceClient) CreateTransferOffer(ctx context.Context, req *connect.Request[CreateTransferOfferRequest]) (*connect.Response[CreateTransferOfferResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *offerServiceClient) ListTransferOffers(ctx context.Context, req *connect.Request[ListTransferOffersRequest]) (*connect.Response[ListTransferOffersResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *offerServiceClient) GetTransferOffer(ctx context.Context, req *connect.Request[GetTransferOfferRequest]) (*connect.Response[GetTransferOfferResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *offerServiceClient) AcceptTransferOffer(ctx context.Context, req *connect.Request[AcceptTransferOfferRequest]) (*connect.Response[AcceptTransferOfferResponse], error) {
	return c.accept.CallUnary(ctx, req)
}

func (c *offerServiceClient) RejectTransferOffer(ctx context.Context, req *connect.Request[RejectTransferOfferRequest]) (*connect.Response[RejectTransferOfferResponse], error) {
	return c.reject.CallUnary(ctx, req)
}
