package grpc

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type faultRule struct {
	code      codes.Code
	remaining int // <0 means forever
}

// Faults injects failures into calls by full method name and counts the
// calls that reach the server.
type Faults struct {
	mu    sync.Mutex
	rules map[string]*faultRule
	calls map[string]int
}

func NewFaults() *Faults {
	return &Faults{rules: make(map[string]*faultRule), calls: make(map[string]int)}
}

// FailNext makes the next n calls of method fail with code.
func (f *Faults) FailNext(method string, n int, code codes.Code) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[method] = &faultRule{code: code, remaining: n}
}

// FailAlways makes every call of method fail with code until Clear.
func (f *Faults) FailAlways(method string, code codes.Code) {
	f.FailNext(method, -1, code)
}

func (f *Faults) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = make(map[string]*faultRule)
}

// Calls returns how many calls of method were received.
func (f *Faults) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Faults) take(method string) (codes.Code, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[method]++

	rule, ok := f.rules[method]
	if !ok || rule.remaining == 0 {
		return codes.OK, false
	}
	if rule.remaining > 0 {
		rule.remaining--
	}
	return rule.code, true
}

func (s *GRPCServer) faultInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if code, ok := s.faults.take(info.FullMethod); ok {
		return nil, status.Error(code, "injected fault")
	}
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		s.logger.Warn(ctx, "call failed", "method", info.FullMethod, "code", status.Code(err).String(), "elapsed", time.Since(start))
	} else {
		s.logger.Debug(ctx, "call", "method", info.FullMethod, "elapsed", time.Since(start))
	}
	return resp, err
}
