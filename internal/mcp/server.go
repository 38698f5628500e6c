package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"chainsight/internal/bottleneck"
	"chainsight/internal/engine"
	"chainsight/internal/recommend"

	"github.com/rs/zerolog/log"
)

// JSONRPCRequest represents a standard MCP/JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard MCP/JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server exposes the analytics engine over a JSON-RPC Stdio loop.
type Server struct {
	engine *engine.Orchestrator
	in     io.Reader
	out    io.Writer
}

// NewServer creates a new MCP server around an orchestrator.
func NewServer(orch *engine.Orchestrator) *Server {
	return &Server{engine: orch, in: os.Stdin, out: os.Stdout}
}

// Serve starts the JSON-RPC loop over Stdio. It returns on EOF.
func (s *Server) Serve() error {
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req JSONRPCRequest) {
	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"serverInfo": map[string]interface{}{
				"name":    "chainsight",
				"version": "0.1.0",
			},
		}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(req.Params)
	default:
		errRes = map[string]interface{}{
			"code":    -32601,
			"message": fmt.Sprintf("Method %s not found", req.Method),
		}
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.out, "%s\n", out)
}

func (s *Server) callTool(params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}
	}

	var data interface{}
	var err error

	switch call.Name {
	case "analyze_dataset":
		var table engine.Table
		if err = json.Unmarshal(call.Arguments, &table); err == nil {
			data, err = s.engine.AnalyzeDataset(table)
		}
	case "analyze_events":
		var args struct {
			Events []bottleneck.RawEvent `json:"events"`
		}
		if err = json.Unmarshal(call.Arguments, &args); err == nil {
			data, err = s.engine.AnalyzeEvents(args.Events)
		}
	case "analyze_kpis":
		var input recommend.KPIInput
		if err = json.Unmarshal(call.Arguments, &input); err == nil {
			data = s.engine.AnalyzeKPIs(input)
		}
	case "analyze_text":
		var args struct {
			Text string `json:"text"`
		}
		if err = json.Unmarshal(call.Arguments, &args); err == nil {
			data, err = s.engine.AnalyzeText(context.Background(), args.Text)
		}
	default:
		return nil, map[string]interface{}{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		return nil, map[string]interface{}{"code": -32000, "message": err.Error()}
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}
