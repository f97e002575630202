// Package serve exposes a fitted surrogate over gRPC.
//
// The service born.surrogate.v1.Predictor has one unary method, Predict. Requests
// and responses are google.protobuf.Struct messages with two number lists:
//
//	{"shape": [samples, p], "values": [...row-major parameters...]}
//
// and the response carries the solutions the same way. No generated code is
// needed on either side.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/born-ml/surrogate/internal/surrogate"
	"github.com/born-ml/surrogate/internal/tensor"
)

// Service and method names on the wire.
const (
	ServiceName   = "born.surrogate.v1.Predictor"
	PredictMethod = "/" + ServiceName + "/Predict"
)

// Predictor maps a batch of parameters (samples, p) to solutions (samples, d).
// *surrogate.CAEFFNN implements it.
type Predictor interface {
	PredictBatch(x *tensor.Array[float64]) (*tensor.Array[float64], error)
}

// Server answers Predict calls with a Predictor. Calls are serialized because
// the networks behind a Predictor are not safe for concurrent use.
type Server struct {
	mu     sync.Mutex
	model  Predictor
	logger *log.Logger
}

// NewServer wraps model. A nil logger discards.
func NewServer(model Predictor, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{model: model, logger: logger}
}

// Predict implements the Predict RPC.
func (s *Server) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	x, err := DecodeArray(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if x.Rank() == 1 {
		if x, err = tensor.AddEmptyDimensions(x, true, false); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	start := time.Now()
	s.mu.Lock()
	y, err := s.model.PredictBatch(x)
	s.mu.Unlock()
	if err != nil {
		return nil, status.Error(code(err), err.Error())
	}
	s.logger.Printf("predict %v -> %v in %s", x.Shape(), y.Shape(), time.Since(start).Round(time.Microsecond))

	resp, err := EncodeArray(y)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func code(err error) codes.Code {
	switch {
	case errors.Is(err, surrogate.ErrNotTrained):
		return codes.FailedPrecondition
	case errors.Is(err, tensor.ErrArgument):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// Register adds the Predictor service backed by s to gs.
func Register(gs *grpc.Server, s *Server) {
	gs.RegisterService(&serviceDesc, s)
}

// Serve runs a gRPC server for s on lis until ctx is done, then stops gracefully.
func Serve(ctx context.Context, lis net.Listener, s *Server, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	Register(gs, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		gs.GracefulStop()
	}()

	s.logger.Printf("serving %s on %s", ServiceName, lis.Addr())
	err := gs.Serve(lis)
	if ctx.Err() != nil {
		<-stopped
		return nil
	}
	gs.Stop()
	return err
}

type predictorServer interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*predictorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "born/surrogate/v1/predictor.proto",
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(predictorServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PredictMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(predictorServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls a remote Predictor.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to addr without transport security. opts are appended and
// may override the credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Predict sends parameters (samples, p), or a single parameter vector, and returns
// the predicted solutions.
func (c *Client) Predict(ctx context.Context, x *tensor.Array[float64]) (*tensor.Array[float64], error) {
	req, err := EncodeArray(x)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, PredictMethod, req, resp); err != nil {
		return nil, err
	}
	return DecodeArray(resp)
}

// EncodeArray converts a into a {"shape", "values"} struct.
func EncodeArray(a *tensor.Array[float64]) (*structpb.Struct, error) {
	shape := make([]any, a.Rank())
	for i, d := range a.Shape() {
		shape[i] = float64(d)
	}
	values := make([]any, a.NumElements())
	for i, v := range a.Data() {
		values[i] = v
	}
	return structpb.NewStruct(map[string]any{"shape": shape, "values": values})
}

// DecodeArray converts a {"shape", "values"} struct into an array.
func DecodeArray(s *structpb.Struct) (*tensor.Array[float64], error) {
	shapeList := s.GetFields()["shape"].GetListValue()
	valueList := s.GetFields()["values"].GetListValue()
	if shapeList == nil || valueList == nil {
		return nil, fmt.Errorf("%w: message needs \"shape\" and \"values\" lists", tensor.ErrArgument)
	}

	shape := make(tensor.Shape, len(shapeList.GetValues()))
	for i, v := range shapeList.GetValues() {
		d, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || d.NumberValue != math.Trunc(d.NumberValue) || d.NumberValue < 0 || d.NumberValue > math.MaxInt32 {
			return nil, fmt.Errorf("%w: shape[%d] is not a dimension length", tensor.ErrArgument, i)
		}
		shape[i] = int(d.NumberValue)
	}
	values := make([]float64, len(valueList.GetValues()))
	for i, v := range valueList.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: values[%d] is not a number", tensor.ErrArgument, i)
		}
		values[i] = n.NumberValue
	}
	return tensor.FromSlice(values, shape)
}
