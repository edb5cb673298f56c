package grpcapi

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/lemonberrylabs/calc/pkg/store"
	"github.com/lemonberrylabs/calc/pkg/types"
)

func startTestServer(t *testing.T) (string, *store.Store, func()) {
	t.Helper()
	s := store.New(0)
	srv := New(s, 64, zerolog.Nop())

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go srv.grpc.Serve(lis)

	return lis.Addr().String(), s, func() {
		srv.grpc.Stop()
	}
}

func dial(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	return conn
}

func TestEvaluate(t *testing.T) {
	addr, s, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()
	client := NewClient(conn)
	ctx := context.Background()

	tests := []struct {
		input string
		want  int64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"100 / 10 / 2", 5},
		{"7 / 2", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := client.Evaluate(ctx, tt.input)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if s.Len() != len(tests) {
		t.Errorf("expected %d recorded evaluations, got %d", len(tests), s.Len())
	}
}

func TestEvaluateErrors(t *testing.T) {
	addr, s, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()
	client := NewClient(conn)
	ctx := context.Background()

	tests := []struct {
		input  string
		code   codes.Code
		reason string
	}{
		{"5 / 0", codes.OutOfRange, types.TagDivisionByZero},
		{"(1 + 2", codes.InvalidArgument, types.TagSyntaxError},
		{"3 & 4", codes.InvalidArgument, types.TagLexError},
		{"", codes.InvalidArgument, ""},
		{"1\n2", codes.InvalidArgument, ""},
		{strings.Repeat("1", 65), codes.InvalidArgument, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := client.Evaluate(ctx, tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if status.Code(err) != tt.code {
				t.Errorf("code %s, want %s (%v)", status.Code(err), tt.code, err)
			}
			if got := ErrorReason(err); got != tt.reason {
				t.Errorf("reason %q, want %q", got, tt.reason)
			}
		})
	}

	// only runtime failures are recorded
	if s.Len() != 1 {
		t.Errorf("expected 1 recorded evaluation, got %d", s.Len())
	}
}
