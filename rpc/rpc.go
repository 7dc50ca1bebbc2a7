// Package rpc exposes a read-only introspection service over a loaded
// symbol table: "definitions" lists every declared name, "describe"
// unparses one name's expression. There is no live-editing surface in
// this engine (no open documents, no breakpoints), so this is a small
// fraction of the teacher's langserver/dapserver -- trimmed to the one
// thing a config engine's symbol table can usefully expose over RPC.
package rpc

import (
	"context"
	"fmt"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/config"
)

// Service is a jrpc2 server bound to one loaded symbol table.
type Service struct {
	server *jrpc2.Server
	table  *config.SymbolTable
}

// NewService builds a Service over table, registering its handlers.
func NewService(table *config.SymbolTable) *Service {
	s := &Service{table: table}
	s.server = jrpc2.NewServer(handler.Map{
		"definitions": handler.New(s.definitions),
		"describe":    handler.New(s.describe),
	}, nil)
	return s
}

// Listen serves requests read from r, writing responses to w, until the
// connection closes or the context is cancelled.
func (s *Service) Listen(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	srv := s.server.Start(channel.Header("")(r, w))
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-done:
		}
	}()
	return srv.Wait()
}

func (s *Service) definitions(ctx context.Context) ([]string, error) {
	return s.table.Names(), nil
}

// DescribeParams names the symbol to describe.
type DescribeParams struct {
	Name string `json:"name"`
}

// DescribeResult is the unparsed source text of the named symbol's
// expression.
type DescribeResult struct {
	Expr string `json:"expr"`
}

func (s *Service) describe(ctx context.Context, p DescribeParams) (*DescribeResult, error) {
	n, ok := s.table.Get(p.Name)
	if !ok {
		return nil, fmt.Errorf("undefined symbol %q", p.Name)
	}
	return &DescribeResult{Expr: ast.Unparse(n)}, nil
}
