package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bindery-dev/bindery/internal/schema"
	"github.com/bindery-dev/bindery/internal/session"
	"github.com/bindery-dev/bindery/internal/txn"
)

// toolSchemas lists every tool the server exposes. Descriptions are
// written for an agent deciding which tool to call.
func toolSchemas() []Tool {
	return []Tool{
		{
			Name: "bundle_validate",
			Description: "Validate the whole bundle: parsing, schema conformance, " +
				"reference integrity, and lint rules. Returns a summary plus every diagnostic.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name: "bundle_apply",
			Description: "Apply a batch of create/update/delete changes transactionally. " +
				"Defaults to a dry run; pass dryRun=false to write. A batch either " +
				"applies completely or rejects completely.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"changes": map[string]interface{}{
						"type":        "array",
						"description": "Proposed changes, each with operation (create|update|delete), entityType, entityId, and data (create) or fieldPath+value (update).",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"operation":  map[string]interface{}{"type": "string", "enum": []string{"create", "update", "delete"}},
								"entityType": map[string]interface{}{"type": "string"},
								"entityId":   map[string]interface{}{"type": "string"},
								"fieldPath":  map[string]interface{}{"type": "string", "description": "Dotted field path for updates, e.g. metadata.owner"},
								"value":      map[string]interface{}{"description": "New value for updates"},
								"data":       map[string]interface{}{"type": "object", "description": "Full entity data for creates"},
							},
							"required": []string{"operation", "entityType", "entityId"},
						},
					},
					"dryRun": map[string]interface{}{
						"type":        "boolean",
						"description": "Validate without writing. Defaults to true.",
					},
					"validate": map[string]interface{}{
						"type": "string",
						"enum": []string{"strict", "warn", "none"},
					},
					"referencePolicy": map[string]interface{}{
						"type": "string",
						"enum": []string{"strict", "warn", "none"},
					},
					"deleteMode": map[string]interface{}{
						"type": "string",
						"enum": []string{"restrict", "orphan"},
					},
				},
				Required: []string{"changes"},
			},
		},
		{
			Name:        "bundle_get_entity",
			Description: "Fetch one entity's full data by type and id.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"entityType": map[string]interface{}{"type": "string"},
					"entityId":   map[string]interface{}{"type": "string"},
				},
				Required: []string{"entityType", "entityId"},
			},
		},
		{
			Name:        "bundle_list_entities",
			Description: "List entity ids of a type, sorted, with offset/limit paging.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"entityType": map[string]interface{}{"type": "string"},
					"offset":     map[string]interface{}{"type": "integer"},
					"limit":      map[string]interface{}{"type": "integer"},
				},
				Required: []string{"entityType"},
			},
		},
		{
			Name: "bundle_schema",
			Description: "Describe an entity type's schema: fields, types, required " +
				"flags, enum values, and reference targets. Omit entityType to list all types.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"entityType": map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}

// callTool dispatches one tool invocation against the live session.
func (s *Server) callTool(name string, args json.RawMessage) ToolResult {
	switch name {
	case "bundle_validate":
		return s.toolValidate()
	case "bundle_apply":
		return s.toolApply(args)
	case "bundle_get_entity":
		return s.toolGetEntity(args)
	case "bundle_list_entities":
		return s.toolListEntities(args)
	case "bundle_schema":
		return s.toolSchema(args)
	default:
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}
}

func (s *Server) toolValidate() ToolResult {
	summary, diags := s.session.Validate()
	return jsonResult(map[string]interface{}{
		"summary":     summary,
		"diagnostics": diags,
	})
}

func (s *Server) toolApply(args json.RawMessage) ToolResult {
	var req txn.Request
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
	}
	if len(req.Changes) == 0 {
		return errorResult("changes must not be empty")
	}

	resp, err := s.session.Apply(&req)
	if err != nil {
		if resp != nil {
			// Writes landed but the reload failed; surface both.
			return errorResult(fmt.Sprintf("%v", err))
		}
		return errorResult(fmt.Sprintf("apply failed: %v", err))
	}
	return jsonResult(resp)
}

func (s *Server) toolGetEntity(args json.RawMessage) ToolResult {
	var params struct {
		EntityType string `json:"entityType"`
		EntityID   string `json:"entityId"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err))
	}

	entity, err := s.session.GetEntity(params.EntityType, params.EntityID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return errorResult(fmt.Sprintf("entity not found: %s:%s", params.EntityType, params.EntityID))
		}
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{
		"entityType": entity.EntityType,
		"entityId":   entity.ID,
		"filePath":   entity.FilePath,
		"data":       entity.Data,
	})
}

func (s *Server) toolListEntities(args json.RawMessage) ToolResult {
	var params struct {
		EntityType string `json:"entityType"`
		Offset     int    `json:"offset"`
		Limit      int    `json:"limit"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err))
	}

	ids, total, err := s.session.ListEntities(params.EntityType, params.Offset, params.Limit)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{
		"entityType": params.EntityType,
		"ids":        ids,
		"total":      total,
		"offset":     params.Offset,
	})
}

func (s *Server) toolSchema(args json.RawMessage) ToolResult {
	var params struct {
		EntityType string `json:"entityType"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	snap := s.session.Snapshot()
	if params.EntityType == "" {
		return jsonResult(map[string]interface{}{
			"entityTypes": snap.Schemas.Types(),
		})
	}

	sch, ok := snap.Schemas.Schema(params.EntityType)
	if !ok {
		return errorResult(fmt.Sprintf("no schema for entity type: %s", params.EntityType))
	}
	return jsonResult(map[string]interface{}{
		"entityType": params.EntityType,
		"fields":     describeFields(sch.Fields),
	})
}

// describeFields flattens field definitions into plain JSON maps,
// sorted by name for stable output.
func describeFields(fields map[string]*schema.FieldDefinition) []map[string]interface{} {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		def := fields[name]
		if def == nil {
			continue
		}
		entry := map[string]interface{}{
			"name": name,
			"type": string(def.Type),
		}
		if def.Required {
			entry["required"] = true
		}
		if len(def.Values) > 0 {
			entry["values"] = def.Values
		}
		if len(def.Targets) > 0 {
			entry["targets"] = def.Targets
		}
		if def.Min != nil {
			entry["min"] = *def.Min
		}
		if def.Max != nil {
			entry["max"] = *def.Max
		}
		if def.Default != nil {
			entry["default"] = def.Default
		}
		if len(def.Fields) > 0 {
			entry["fields"] = describeFields(def.Fields)
		}
		out = append(out, entry)
	}
	return out
}

const guideURI = "bindery://guide"

// resourceList exposes the bundle's domain-knowledge guide when the
// manifest declares one.
func (s *Server) resourceList() []map[string]interface{} {
	snap := s.session.Snapshot()
	if snap.Bundle.Manifest.DomainKnowledge == "" {
		return []map[string]interface{}{}
	}
	return []map[string]interface{}{
		{
			"uri":         guideURI,
			"name":        "Domain knowledge guide",
			"description": "Markdown guide describing the bundle's domain and conventions.",
			"mimeType":    "text/markdown",
		},
	}
}

func (s *Server) handleResourceRead(req *Request) {
	var params struct {
		URI string `json:"uri"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
	}
	if params.URI != guideURI {
		s.sendError(req.ID, -32602, "Unknown resource", params.URI)
		return
	}

	snap := s.session.Snapshot()
	rel := snap.Bundle.Manifest.DomainKnowledge
	if rel == "" {
		s.sendError(req.ID, -32602, "Unknown resource", params.URI)
		return
	}
	data, err := os.ReadFile(filepath.Join(s.session.Dir(), rel))
	if err != nil {
		s.sendError(req.ID, -32603, "Internal error", err.Error())
		return
	}
	s.sendResult(req.ID, map[string]interface{}{
		"contents": []map[string]interface{}{
			{"uri": guideURI, "mimeType": "text/markdown", "text": string(data)},
		},
	})
}

func jsonResult(v interface{}) ToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal result: %v", err))
	}
	return ToolResult{Content: []ToolContent{{Type: "text", Text: string(data)}}}
}

func errorResult(msg string) ToolResult {
	return ToolResult{
		Content: []ToolContent{{Type: "text", Text: msg}},
		IsError: true,
	}
}
