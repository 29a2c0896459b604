// Package rpctest runs an in-process JSON-RPC node for tests.
package rpctest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pilacorp/go-ssi-sdk/config"
)

// Handler answers one method call. Returning an *Error sends a JSON-RPC
// error object; any other error is sent with code -32000.
type Handler func(params []json.RawMessage) (any, error)

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Server is a scripted node.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string][][]json.RawMessage
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		handlers: map[string]Handler{},
		calls:    map[string][][]json.RawMessage{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle sets the handler of method.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// HandleResult answers method with a fixed result.
func (s *Server) HandleResult(method string, result any) {
	s.Handle(method, func([]json.RawMessage) (any, error) { return result, nil })
}

// Calls returns the params of every call of method so far.
func (s *Server) Calls(method string) [][]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]json.RawMessage(nil), s.calls[method]...)
}

// Config returns an isolated-network configuration pointing at the server
// with fast confirmation polling.
func (s *Server) Config() *config.Config {
	return &config.Config{
		Network:         config.Isolated,
		RPC:             s.URL,
		ChainID:         222,
		InitAddress:     "0x0000000000000000000000000000000000000abc",
		ConfirmAttempts: 3,
		ConfirmInterval: config.Duration(time.Millisecond),
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	h := s.handlers[req.Method]
	s.calls[req.Method] = append(s.calls[req.Method], req.Params)
	s.mu.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID}
	if h == nil {
		resp.Error = &Error{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, err := h(req.Params); err != nil {
		if rpcErr, ok := err.(*Error); ok {
			resp.Error = rpcErr
		} else {
			resp.Error = &Error{Code: -32000, Message: err.Error()}
		}
	} else if resp.Result, err = json.Marshal(result); err != nil {
		resp.Result = nil
		resp.Error = &Error{Code: -32603, Message: err.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Ledger scripts the calls made while submitting a transaction: a known
// account nonce, a fixed gas price, and transactions that confirm with the
// given receipt status on the first poll.
type Ledger struct {
	Nonce    uint64
	GasPrice string
	Success  bool

	mu       sync.Mutex
	payloads []map[string]any
}

// Install registers the ledger's handlers on s.
func (l *Ledger) Install(s *Server) {
	gasPrice := l.GasPrice
	if gasPrice == "" {
		gasPrice = "2000000000"
	}
	s.HandleResult("GetMinimumGasPrice", gasPrice)
	s.Handle("GetBalance", func([]json.RawMessage) (any, error) {
		return map[string]any{"balance": "1000000000000000", "nonce": l.Nonce}, nil
	})
	s.Handle("CreateTransaction", func(params []json.RawMessage) (any, error) {
		var p map[string]any
		if len(params) != 1 {
			return nil, fmt.Errorf("expected one param, got %d", len(params))
		}
		if err := json.Unmarshal(params[0], &p); err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.payloads = append(l.payloads, p)
		id := fmt.Sprintf("%064x", len(l.payloads))
		l.mu.Unlock()
		return map[string]any{"Info": "Non-contract txn, sent to shard", "TranID": id}, nil
	})
	s.Handle("GetTransaction", func(params []json.RawMessage) (any, error) {
		var id string
		if len(params) > 0 {
			_ = json.Unmarshal(params[0], &id)
		}
		return map[string]any{
			"ID": id,
			"receipt": map[string]any{
				"success":        l.Success,
				"cumulative_gas": "1000",
				"epoch_num":      "42",
			},
		}, nil
	})
}

// Payloads returns the CreateTransaction payloads received so far.
func (l *Ledger) Payloads() []map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]map[string]any(nil), l.payloads...)
}

// CallData decodes the data field of the i-th payload.
func (l *Ledger) CallData(i int) (map[string]any, error) {
	payloads := l.Payloads()
	if i >= len(payloads) {
		return nil, fmt.Errorf("only %d payloads", len(payloads))
	}
	data, _ := payloads[i]["data"].(string)
	var out map[string]any
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, err
	}
	return out, nil
}
