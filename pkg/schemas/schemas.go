// Package schemas declares the JSON schema for each node type's config map
// and validates configs against them at workflow load time, so authoring
// mistakes surface before an event fires.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

var configSchemas = map[models.NodeType]map[string]any{
	models.NodeTypeHTTPRequest: {
		"type":     "object",
		"required": []string{"url"},
		"properties": map[string]any{
			"url":     map[string]any{"type": "string", "minLength": 1},
			"method":  map[string]any{"type": "string"},
			"headers": map[string]any{"type": "object"},
		},
	},
	models.NodeTypeEmail: {
		"type":     "object",
		"required": []string{"to", "subject"},
		"properties": map[string]any{
			"to":      map[string]any{"type": "string", "minLength": 1},
			"subject": map[string]any{"type": "string", "minLength": 1},
			"body":    map[string]any{"type": "string"},
		},
	},
	models.NodeTypeDelay: {
		"type": "object",
		"properties": map[string]any{
			"delayMs": map[string]any{"type": []string{"number", "string"}},
		},
	},
	models.NodeTypeCondition: {
		"type":     "object",
		"required": []string{"leftValue", "operator", "rightValue"},
		"properties": map[string]any{
			"leftValue": map[string]any{"type": "string"},
			"operator": map[string]any{
				"type": "string",
				"enum": []string{"==", "!=", ">", "<", ">=", "<=", "contains"},
			},
			"rightValue": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeSetVariable: {
		"type":     "object",
		"required": []string{"variableName", "variableValue"},
		"properties": map[string]any{
			"variableName": map[string]any{"type": "string", "minLength": 1},
		},
	},
	models.NodeTypeWebhook: {
		"type":     "object",
		"required": []string{"url"},
		"properties": map[string]any{
			"url":    map[string]any{"type": "string", "minLength": 1},
			"method": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeAICompletion: {
		"type":     "object",
		"required": []string{"prompt"},
		"properties": map[string]any{
			"prompt":      map[string]any{"type": "string", "minLength": 1},
			"model":       map[string]any{"type": "string"},
			"apiKey":      map[string]any{"type": "string"},
			"temperature": map[string]any{"type": "number"},
		},
	},
	models.NodeTypeWhatsApp: {
		"type":     "object",
		"required": []string{"to", "message"},
	},
	models.NodeTypeTelegram: {
		"type":     "object",
		"required": []string{"message"},
	},
	models.NodeTypeSlack: {
		"type":     "object",
		"required": []string{"message"},
	},
	models.NodeTypeSMS: {
		"type":     "object",
		"required": []string{"to", "message"},
	},
	models.NodeTypeLog: {
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
			"level":   map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error"}},
		},
	},
	models.NodeTypeTransform: {
		"type":     "object",
		"required": []string{"transformType"},
		"properties": map[string]any{
			"transformType": map[string]any{
				"type": "string",
				"enum": []string{"json", "stringify", "uppercase", "lowercase", "trim", "replace"},
			},
		},
	},
	models.NodeTypeFilter: {
		"type":     "object",
		"required": []string{"filterOperator"},
		"properties": map[string]any{
			"filterField": map[string]any{"type": "string"},
			"filterOperator": map[string]any{
				"type": "string",
				"enum": []string{"==", "!=", ">", "<", ">=", "<=", "contains"},
			},
			"filterValue": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeLoop: {
		"type":     "object",
		"required": []string{"loopType"},
		"properties": map[string]any{
			"loopType":      map[string]any{"type": "string", "enum": []string{"foreach", "while"}},
			"condition":     map[string]any{"type": "string"},
			"maxIterations": map[string]any{"type": "number"},
		},
	},
	models.NodeTypeSplit: {
		"type": "object",
		"properties": map[string]any{
			"splitField": map[string]any{"type": "string"},
		},
	},
}

// ValidateNodeConfig checks a node's config against the schema for its type.
// Types without a schema (trigger, merge) always pass.
func ValidateNodeConfig(node *models.Node) error {
	schema, exists := configSchemas[node.Type]
	if !exists {
		return nil
	}

	config := node.Config
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errors []string
		for _, resultError := range result.Errors() {
			errors = append(errors, resultError.String())
		}

		return fmt.Errorf("node %s config invalid: %s", node.ID, strings.Join(errors, "; "))
	}

	return nil
}
