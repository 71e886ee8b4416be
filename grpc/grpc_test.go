package satvmgrpc_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/satvm/satvm"
	satvmgrpc "github.com/satvm/satvm/grpc"
	"github.com/satvm/satvm/invoice"
	"github.com/satvm/satvm/sandbox"
	satvmtest "github.com/satvm/satvm/testing"
	"github.com/satvm/satvm/types"
)

// startServer starts a gRPC server on a random port and returns the
// listener address and a cleanup function.
func startServer(t *testing.T, gs *satvmgrpc.GRPCServer) (string, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer()
	gs.Register(s)

	go func() {
		_ = s.Serve(lis)
	}()

	return lis.Addr().String(), func() {
		s.GracefulStop()
	}
}

func dial(t *testing.T, addr string) *satvmgrpc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := satvmgrpc.Dial(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func TestGRPCConnectionCompliance(t *testing.T) {
	satvmtest.RunComplianceSuite(t, func(dec invoice.Decoder) satvm.Connection {
		engine := sandbox.New(sandbox.WithDecoder(dec))
		addr, stop := startServer(t, satvmgrpc.NewGRPCServer(engine, dec))
		t.Cleanup(stop)
		return dial(t, addr)
	})
}

func TestGRPCExecuteRoundTrip(t *testing.T) {
	engine := &satvmtest.MockEngine{
		ExecuteFn: func(_ context.Context, req types.CallRequest) (types.ExecutionResult, error) {
			return types.ExecutionResult{
				StateAfter:    req.PriorState,
				ReturnedValue: types.JSON(`"done"`),
				PaymentsDone: []types.PaymentRecord{
					{Invoice: "inv1", AmountMilliSats: 1500},
				},
				TotalPaidMilliSats: 1500,
			}, nil
		},
	}
	addr, stop := startServer(t, satvmgrpc.NewGRPCServer(engine, &satvmtest.MockDecoder{}))
	defer stop()

	client := dial(t, addr)
	defer client.Close()

	res, err := client.Execute(context.Background(), types.CallRequest{
		Script:     `function noop () end`,
		PriorState: types.JSON(`{"k": 1}`),
		Method:     "noop",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.StateAfter.Equal(types.JSON(`{"k": 1}`)) {
		t.Errorf("state did not survive the round trip: %s", res.StateAfter)
	}
	if !res.ReturnedValue.Equal(types.JSON(`"done"`)) {
		t.Errorf("unexpected returned value: %s", res.ReturnedValue)
	}
	if len(res.PaymentsDone) != 1 || res.PaymentsDone[0].AmountMilliSats != 1500 {
		t.Errorf("ledger did not survive the round trip: %+v", res.PaymentsDone)
	}
	if got := engine.ExecuteCalls.Load(); got != 1 {
		t.Errorf("expected 1 Execute call, got %d", got)
	}
}

func TestGRPCFaultCrossesTheWire(t *testing.T) {
	engine := &satvmtest.MockEngine{
		ExecuteFn: func(context.Context, types.CallRequest) (types.ExecutionResult, error) {
			return types.ExecutionResult{
				Fault: types.FaultQuota,
				Error: "quota exceeded",
			}, nil
		},
	}
	addr, stop := startServer(t, satvmgrpc.NewGRPCServer(engine, &satvmtest.MockDecoder{}))
	defer stop()

	client := dial(t, addr)
	defer client.Close()

	res, err := client.Execute(context.Background(), types.CallRequest{
		Script: `function spin () end`,
		Method: "spin",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Fault != types.FaultQuota || res.Error != "quota exceeded" {
		t.Errorf("fault did not survive the round trip: %+v", res)
	}
}

func TestGRPCEngineErrorPropagates(t *testing.T) {
	engine := &satvmtest.MockEngine{
		ExecuteFn: func(context.Context, types.CallRequest) (types.ExecutionResult, error) {
			return types.ExecutionResult{}, errors.New("engine exploded")
		},
	}
	addr, stop := startServer(t, satvmgrpc.NewGRPCServer(engine, &satvmtest.MockDecoder{}))
	defer stop()

	client := dial(t, addr)
	defer client.Close()

	_, err := client.Execute(context.Background(), types.CallRequest{
		Script: `function f () end`,
		Method: "f",
	})
	if err == nil {
		t.Fatal("expected transported error")
	}
	if !strings.Contains(err.Error(), "engine exploded") {
		t.Errorf("error lost its message: %v", err)
	}
}

func TestGRPCDecodeInvoice(t *testing.T) {
	addr, stop := startServer(t,
		satvmgrpc.NewGRPCServer(&satvmtest.MockEngine{}, &satvmtest.MockDecoder{}))
	defer stop()

	client := dial(t, addr)
	defer client.Close()

	inv, err := client.DecodeInvoice(context.Background(), satvmtest.Invoice(777, "hh", "pp"))
	if err != nil {
		t.Fatalf("DecodeInvoice: %v", err)
	}
	if inv.AmountMilliSats != 777 || inv.PaymentHash != "hh" || inv.PayeeNodeID != "pp" {
		t.Errorf("unexpected decode: %+v", inv)
	}

	if _, err := client.DecodeInvoice(context.Background(), "garbage"); err == nil {
		t.Error("expected decode error for garbage input")
	}
}

func TestCramberryCodecRoundTrip(t *testing.T) {
	codec := satvmgrpc.CramberryCodec{}

	in := &types.CallRequest{
		Script:             "function f () end",
		PriorState:         types.JSON(`{"a": 1}`),
		Method:             "f",
		Payload:            types.JSON(`{"b": 2}`),
		AttachedAmountSats: 10,
		FundsMilliSats:     5000,
	}
	data, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out := new(types.CallRequest)
	if err := codec.Unmarshal(data, out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Script != in.Script || out.Method != in.Method ||
		out.AttachedAmountSats != in.AttachedAmountSats ||
		out.FundsMilliSats != in.FundsMilliSats {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if !out.PriorState.Equal(in.PriorState) || !out.Payload.Equal(in.Payload) {
		t.Errorf("documents lost in round trip: %+v", out)
	}
}
