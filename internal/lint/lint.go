// Package lint runs pluggable semantic rules over an assembled bundle.
//
// The core only merges lint output into the overall diagnostics list;
// rules never block a load. The transaction engine treats lint findings
// according to the active validation mode like any other diagnostic.
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/refgraph"
	"github.com/bindery-dev/bindery/internal/schema"
)

// Context is everything a rule may inspect.
type Context struct {
	Bundle  *bundle.Bundle
	Schemas *schema.Set
	Graph   *refgraph.Graph
}

// Rule is one lint pass.
type Rule interface {
	// Name is the stable rule id used in lint config.
	Name() string

	Check(ctx *Context) []diag.Diagnostic
}

// RuleConfig controls one rule from the manifest-pointed lint config.
type RuleConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Severity overrides the rule's default severity ("error" or
	// "warning").
	Severity string `yaml:"severity,omitempty"`
}

// Config is the lint configuration file.
type Config struct {
	Rules map[string]RuleConfig `yaml:"rules,omitempty"`
}

// LoadConfig reads the lint config named by the manifest. A bundle
// without one gets every built-in rule at its default severity.
func LoadConfig(bundleDir, relPath string) (*Config, error) {
	if relPath == "" {
		return &Config{}, nil
	}
	path := filepath.Join(bundleDir, relPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lint config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse lint config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) enabled(name string) bool {
	if c == nil || c.Rules == nil {
		return true
	}
	rc, ok := c.Rules[name]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

func (c *Config) severityOverride(name string) (diag.Severity, bool) {
	if c == nil || c.Rules == nil {
		return "", false
	}
	switch c.Rules[name].Severity {
	case "error":
		return diag.SeverityError, true
	case "warning":
		return diag.SeverityWarning, true
	}
	return "", false
}

// Run executes every enabled rule and returns the merged diagnostics,
// all tagged with the lint source and the rule's name as code.
func Run(ctx *Context, cfg *Config, rules []Rule) []diag.Diagnostic {
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name() < rules[j].Name() })

	var diags []diag.Diagnostic
	for _, rule := range rules {
		if !cfg.enabled(rule.Name()) {
			continue
		}
		found := rule.Check(ctx)
		override, hasOverride := cfg.severityOverride(rule.Name())
		for _, d := range found {
			d.Source = diag.SourceLint
			if d.Code == "" {
				d.Code = rule.Name()
			}
			if hasOverride {
				d.Severity = override
			}
			diags = append(diags, d)
		}
	}
	return diags
}

// BuiltinRules returns the rules that ship with bindery.
func BuiltinRules() []Rule {
	return []Rule{
		&inlineRefsRule{},
		&relationTitleRule{},
		&orphanEntityRule{},
	}
}
