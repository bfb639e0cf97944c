// Package config parses the pipeline configuration YAML spec.md §6
// names: top-level env/sources/transforms/sinks/active_sinks. This module
// never drives a connector — source and sink entries are decoded into
// ConnectorConfig and deliberately left unexecuted (spec §1's declared
// boundary); only the sql transform entries are wired to a real
// implementation, via BuildTransform.
package config

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/flowsql/flowsql/batch"
	"github.com/flowsql/flowsql/transform"
)

// ConnectorConfig is a source or sink entry. Options is freeform because
// the connector types themselves are out of this module's scope (spec
// §1); this config layer only needs to round-trip them, not interpret
// them.
type ConnectorConfig struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

// TransformConfig is one entry under the top-level transforms list. Both
// transform kinds spec.md §6 names (`query`, `task_aggregate`) carry the
// same four fields; the Type selects which transform BuildTransform
// constructs.
type TransformConfig struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	SQL     string   `json:"sql"`
}

// Pipeline is the decoded top-level YAML document.
type Pipeline struct {
	Env         map[string]string `json:"env,omitempty"`
	Sources     []ConnectorConfig `json:"sources,omitempty"`
	Transforms  []TransformConfig `json:"transforms"`
	Sinks       []ConnectorConfig `json:"sinks,omitempty"`
	ActiveSinks []string          `json:"active_sinks,omitempty"`
}

// Load parses a pipeline YAML document. sigs.k8s.io/yaml round-trips
// through encoding/json so TransformConfig/ConnectorConfig's `json` tags
// govern both YAML and JSON input, matching how SnellerInc-sneller loads
// its own plan/tenant configuration.
func Load(yamlText []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(yamlText, &p); err != nil {
		return nil, fmt.Errorf("config: parse pipeline yaml: %w", err)
	}
	for i, tc := range p.Transforms {
		if tc.Type != "query" && tc.Type != "task_aggregate" {
			return nil, fmt.Errorf("config: transform %q: unknown type %q", tc.Name, tc.Type)
		}
		if tc.SQL == "" {
			return nil, fmt.Errorf("config: transform %q: missing sql", p.Transforms[i].Name)
		}
	}
	return &p, nil
}

// QueryRunner is the minimal interface both transform.QueryTransform and
// transform.TaskAggregateTransform satisfy, letting BuildTransform's
// caller run either kind identically once wired.
type QueryRunner interface {
	Run(in batch.RowBatch) (batch.RowBatch, error)
	OutputSchema() batch.Schema
}

// BuildTransform wires a TransformConfig entry to a live transform,
// binding its sql against inputSchema (spec §6: "A transform of type:
// query carries inputs, outputs, sql; a transform of type:
// task_aggregate carries the same fields and interprets sql as a grouped
// query"). now supplies the per-invocation wall-clock reading every bound
// now()/current_timestamp() call in that sql observes.
func BuildTransform(tc TransformConfig, inputSchema batch.Schema, now func() int64) (QueryRunner, error) {
	switch tc.Type {
	case "query":
		t, err := transform.NewQueryTransform(tc.SQL, inputSchema, now)
		if err != nil {
			return nil, fmt.Errorf("config: build transform %q: %w", tc.Name, err)
		}
		return t, nil
	case "task_aggregate":
		t, err := transform.NewTaskAggregateTransform(tc.SQL, inputSchema, now)
		if err != nil {
			return nil, fmt.Errorf("config: build transform %q: %w", tc.Name, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("config: build transform %q: unknown type %q", tc.Name, tc.Type)
	}
}
