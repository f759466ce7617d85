package logs

import "github.com/invopop/jsonschema"

// WireSchema builds the JSON Schema of the serialized conversation format,
// for consumers in other languages that need to match the discriminant
// contract. The schema is built by hand rather than reflected: the tagged
// unions serialize through custom marshalers, so their Go field layout says
// nothing about the wire shape.
//
// The metadata field is deliberately absent: it is an executor-specific
// details bag, present for debugging but excluded from the portable
// contract.
func WireSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Version: "https://json-schema.org/draft/2020-12/schema",
		Ref:     "#/$defs/NormalizedConversation",
		Definitions: jsonschema.Definitions{
			"NormalizedConversation": objectSchema(
				req("entries", arrayOf(ref("NormalizedEntry"))),
				req("session_id", nullableString()),
				req("executor_type", str()),
				req("prompt", nullableString()),
				req("summary", nullableString()),
			),
			"NormalizedEntry": objectSchema(
				req("timestamp", nullableString()),
				req("entry_type", ref("NormalizedEntryType")),
				req("content", str()),
			),
			"NormalizedEntryType": union(
				variant("type", string(EntryUserMessage)),
				variant("type", string(EntryAssistantMessage)),
				variant("type", string(EntrySystemMessage)),
				variant("type", string(EntryErrorMessage)),
				variant("type", string(EntryThinking)),
				variant("type", string(EntryToolUse),
					req("tool_name", str()),
					req("action_type", ref("ActionType")),
				),
			),
			"ActionType": union(
				variant("action", string(ActionFileRead),
					req("path", str()),
				),
				variant("action", string(ActionFileEdit),
					req("path", str()),
					req("changes", arrayOf(ref("FileChange"))),
				),
				variant("action", string(ActionCommandRun),
					req("command", str()),
					opt("result", nullable(ref("CommandRunResult"))),
				),
				variant("action", string(ActionSearch),
					req("query", str()),
				),
				variant("action", string(ActionWebFetch),
					req("url", str()),
				),
				variant("action", string(ActionTool),
					req("tool_name", str()),
					opt("arguments", anyValue()),
					opt("result", nullable(ref("ToolResult"))),
				),
				variant("action", string(ActionTaskCreate),
					req("description", str()),
				),
				variant("action", string(ActionPlanPresentation),
					req("plan", str()),
				),
				variant("action", string(ActionTodoManagement),
					req("todos", arrayOf(ref("TodoItem"))),
					req("operation", str()),
				),
				variant("action", string(ActionOther),
					req("description", str()),
				),
			),
			"FileChange": union(
				variant("action", string(ChangeWrite),
					req("content", str()),
				),
				variant("action", string(ChangeDelete)),
				variant("action", string(ChangeRename),
					req("new_path", str()),
				),
				variant("action", string(ChangeEdit),
					req("unified_diff", str()),
					req("has_line_numbers", boolean()),
				),
			),
			"CommandRunResult": objectSchema(
				req("exit_status", nullable(ref("CommandExitStatus"))),
				req("output", nullableString()),
			),
			"CommandExitStatus": union(
				variant("type", string(ExitStatusCode),
					req("code", integer()),
				),
				variant("type", string(ExitStatusSuccess),
					req("success", boolean()),
				),
			),
			"ToolResult": objectSchema(
				req("type", ref("ToolResultValueType")),
				req("value", anyValue()),
			),
			"ToolResultValueType": union(
				variant("type", string(ToolResultMarkdown)),
				variant("type", string(ToolResultJSON)),
			),
			"TodoItem": objectSchema(
				req("content", str()),
				req("status", str()),
				opt("priority", nullableString()),
			),
		},
	}
}

type schemaField struct {
	name     string
	schema   *jsonschema.Schema
	required bool
}

func req(name string, schema *jsonschema.Schema) schemaField {
	return schemaField{name: name, schema: schema, required: true}
}

func opt(name string, schema *jsonschema.Schema) schemaField {
	return schemaField{name: name, schema: schema}
}

func objectSchema(fields ...schemaField) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	var required []string
	for _, f := range fields {
		props.Set(f.name, f.schema)
		if f.required {
			required = append(required, f.name)
		}
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.TrueSchema,
	}
}

// variant builds one union arm: an object whose discriminant key is pinned
// to a single value.
func variant(tagKey, tagValue string, fields ...schemaField) *jsonschema.Schema {
	all := append([]schemaField{req(tagKey, &jsonschema.Schema{
		Type: "string",
		Enum: []any{tagValue},
	})}, fields...)
	return objectSchema(all...)
}

func union(variants ...*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{OneOf: variants}
}

func ref(name string) *jsonschema.Schema {
	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}

func arrayOf(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

func str() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }

func boolean() *jsonschema.Schema { return &jsonschema.Schema{Type: "boolean"} }

func integer() *jsonschema.Schema { return &jsonschema.Schema{Type: "integer"} }

func nullableString() *jsonschema.Schema { return nullable(str()) }

func nullable(schema *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{schema, {Type: "null"}}}
}

// anyValue accepts any JSON value, for the opaque payloads.
func anyValue() *jsonschema.Schema { return &jsonschema.Schema{} }
