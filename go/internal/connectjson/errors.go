package connectjson

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/rs/zerolog/log"
)

// CorrelationHeader carries the caller's request ID into emitted events
const CorrelationHeader = "X-Correlation-Id"

// violationsHeader lists rejected fields as "field: description" entries
const violationsHeader = "X-Field-Violations"

// Error converts an engine failure into a connect error with the matching code
func Error(err error) *connect.Error {
	var lerr *lifecycle.Error
	if !errors.As(err, &lerr) {
		log.Error().Err(err).Msg("internal error")
		return connect.NewError(connect.CodeInternal, err)
	}

	var code connect.Code
	switch lerr.Kind {
	case lifecycle.KindInvalidPayload:
		code = connect.CodeInvalidArgument
	case lifecycle.KindNotFound:
		code = connect.CodeNotFound
	case lifecycle.KindConflict:
		code = connect.CodeFailedPrecondition
	default:
		code = connect.CodeInternal
	}

	cerr := connect.NewError(code, lerr)
	for _, v := range lerr.Violations {
		cerr.Meta().Add(violationsHeader, v.Field+": "+v.Description)
	}
	return cerr
}

// Violations returns the rejected fields carried by a connect error
func Violations(err error) map[string]string {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	out := map[string]string{}
	for _, entry := range cerr.Meta().Values(violationsHeader) {
		field, desc, _ := strings.Cut(entry, ": ")
		out[field] = desc
	}
	return out
}

// NewCorrelationInterceptor copies the correlation header into the request context
func NewCorrelationInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(CorrelationHeader); id != "" && !req.Spec().IsClient {
				ctx = events.WithCorrelationID(ctx, id)
			}
			return next(ctx, req)
		}
	}
}
