// Package mcp provides an MCP (Model Context Protocol) server so LLM
// agents can validate, read, and batch-edit bundles through a
// standardized protocol.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bindery-dev/bindery/internal/session"
)

// Server is a line-delimited JSON-RPC 2.0 server bound to one bundle
// session.
type Server struct {
	session *session.Session
	in      io.Reader
	out     io.Writer
	errLog  io.Writer
}

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      interface{}      `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  *json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Tool describes one MCP tool.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON schema of a tool's arguments.
type InputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// ToolResult wraps a tool call's output.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolContent is one content block of a tool result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewServer creates an MCP server for a session, speaking on
// stdin/stdout. Protocol output goes to stdout only; logs to stderr.
func NewServer(sess *session.Session) *Server {
	return &Server{
		session: sess,
		in:      os.Stdin,
		out:     os.Stdout,
		errLog:  os.Stderr,
	}
}

// Run reads requests until EOF.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	fmt.Fprintln(s.errLog, "[bindery-mcp] serving bundle:", s.session.Dir())

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, -32700, "Parse error", err.Error())
			continue
		}
		s.handleRequest(&req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mcp: read requests: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(req *Request) {
	isNotification := req.ID == nil

	switch req.Method {
	case "initialize":
		s.sendResult(req.ID, map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools":     map[string]interface{}{},
				"resources": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "bindery-mcp",
				"version": "0.1.0",
			},
		})
	case "initialized", "notifications/initialized", "notifications/cancelled":
		return
	case "tools/list":
		s.sendResult(req.ID, map[string]interface{}{"tools": toolSchemas()})
	case "tools/call":
		s.handleToolsCall(req)
	case "resources/list":
		s.sendResult(req.ID, map[string]interface{}{"resources": s.resourceList()})
	case "resources/read":
		s.handleResourceRead(req)
	case "ping":
		s.sendResult(req.ID, map[string]interface{}{})
	default:
		if !isNotification {
			s.sendError(req.ID, -32601, "Method not found", req.Method)
		}
	}
}

func (s *Server) handleToolsCall(req *Request) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
	}

	result := s.callTool(params.Name, params.Arguments)
	s.sendResult(req.ID, result)
}

func (s *Server) sendResult(id, result interface{}) {
	s.send(Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id interface{}, code int, message, data string) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) send(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintln(s.errLog, "[bindery-mcp] marshal response:", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}
