// Package registry loads policy and ego configurations from the
// .egokit/policy-registry directory and merges them across hierarchical
// scopes into one effective configuration.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"egokit/internal/policy"
)

// RegistryDirName is the well-known registry location relative to a
// project root.
const RegistryDirName = ".egokit/policy-registry"

// Registry loads, validates, and merges policy and ego configurations.
// A Registry is not safe for concurrent use; each compilation run should
// build its own or guard access externally.
type Registry struct {
	root string
	log  *zap.Logger
}

// New creates a registry rooted at the given policy-registry directory.
func New(root string) *Registry {
	return &Registry{root: root, log: zap.NewNop()}
}

// WithLogger returns the registry with skip-level diagnostics routed to log.
func (r *Registry) WithLogger(log *zap.Logger) *Registry {
	if log != nil {
		r.log = log
	}
	return r
}

// Root returns the registry root directory.
func (r *Registry) Root() string { return r.root }

// Discover walks upward from start looking for a policy registry.
// Returns the registry root, or an empty string if none is found.
func Discover(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, filepath.FromSlash(RegistryDirName))
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadCharter reads and validates charter.yaml from the registry root.
// A missing or unparsable file is a RegistryError; a structurally invalid
// charter is a ValidationError. Individual malformed rules inside a valid
// charter are tolerated until merge time.
func (r *Registry) LoadCharter() (*policy.PolicyCharter, error) {
	path := filepath.Join(r.root, "charter.yaml")
	doc, err := loadYAMLDocument(path)
	if err != nil {
		return nil, err
	}

	var charter policy.PolicyCharter
	if err := doc.Decode(&charter); err != nil {
		return nil, &policy.ValidationError{Msg: "charter structure invalid: " + err.Error(), Err: err}
	}
	if err := charter.Validate(); err != nil {
		return nil, err
	}
	return &charter, nil
}

// LoadEgoConfig reads the ego configuration for one scope. The scope name
// doubles as the file path fragment: "teams/backend" loads
// ego/teams/backend.yaml.
func (r *Registry) LoadEgoConfig(scope string) (*policy.EgoConfig, error) {
	path := filepath.Join(r.root, "ego", filepath.FromSlash(scope)+".yaml")
	doc, err := loadYAMLDocument(path)
	if err != nil {
		return nil, err
	}

	var charter policy.EgoCharter
	if err := doc.Decode(&charter); err != nil {
		return nil, &policy.ValidationError{Msg: "ego structure invalid: " + err.Error(), Err: err}
	}
	if err := charter.Validate(); err != nil {
		return nil, err
	}
	return &charter.Ego, nil
}

// DiscoverEgoScopes lists every scope with an ego file under the registry,
// as slash-separated scope paths, sorted.
func (r *Registry) DiscoverEgoScopes() []string {
	egoDir := filepath.Join(r.root, "ego")
	var scopes []string
	_ = filepath.WalkDir(egoDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		rel, relErr := filepath.Rel(egoDir, path)
		if relErr != nil {
			return nil
		}
		scopes = append(scopes, filepath.ToSlash(strings.TrimSuffix(rel, ".yaml")))
		return nil
	})
	sort.Strings(scopes)
	return scopes
}

// MergeScopeRules merges rules across scopes in precedence order (lowest
// first). A later scope's rule with the same ID overwrites the earlier
// value in place; first-insertion order is preserved. Categories iterate
// in their fixed sequence and rules in file declaration order, so repeated
// merges of the same charter produce the same rule order. A scope name
// absent from the charter is a ScopeError. Individual rules that fail to
// decode or validate are skipped.
func (r *Registry) MergeScopeRules(charter *policy.PolicyCharter, precedence []string) ([]policy.PolicyRule, error) {
	merged := make(map[string]int) // rule ID -> index in order
	var order []policy.PolicyRule

	for _, scope := range precedence {
		scopeRules, ok := charter.Scopes[scope]
		if !ok {
			return nil, &policy.ScopeError{Scope: scope, Msg: "not found in charter"}
		}

		for _, category := range scopeRules.Categories() {
			for i := range category.Nodes {
				var rule policy.PolicyRule
				if err := category.Nodes[i].Decode(&rule); err != nil {
					r.log.Debug("skipping malformed rule",
						zap.String("scope", scope),
						zap.String("category", category.Name),
						zap.Error(err))
					continue
				}
				if err := rule.Validate(); err != nil {
					r.log.Debug("skipping invalid rule",
						zap.String("scope", scope),
						zap.String("category", category.Name),
						zap.String("id", rule.ID),
						zap.Error(err))
					continue
				}

				if idx, seen := merged[rule.ID]; seen {
					order[idx] = rule
				} else {
					merged[rule.ID] = len(order)
					order = append(order, rule)
				}
			}
		}
	}

	return order, nil
}

// MergeEgoConfigs loads one ego config per scope and merges them in
// precedence order. Missing scope files are skipped; validation failures
// in files that do exist are fatal. If no scope resolves at all the
// result is a ScopeError.
func (r *Registry) MergeEgoConfigs(precedence []string) (*policy.EgoConfig, error) {
	var base *policy.EgoConfig

	for _, scope := range precedence {
		cfg, err := r.LoadEgoConfig(scope)
		if err != nil {
			var regErr *policy.RegistryError
			if errors.As(err, &regErr) {
				r.log.Debug("skipping missing ego scope", zap.String("scope", scope), zap.Error(err))
				continue
			}
			return nil, err
		}
		if base == nil {
			base = cfg
		} else {
			base = mergeEgoInstances(base, cfg)
		}
	}

	if base == nil {
		return nil, &policy.ScopeError{Msg: "no valid ego configurations found in scope precedence"}
	}
	return base, nil
}

// Resolve runs the full pipeline: charter load, rule merge, and ego merge
// over the same precedence list.
func (r *Registry) Resolve(precedence []string) (*policy.EffectiveConfig, error) {
	charter, err := r.LoadCharter()
	if err != nil {
		return nil, err
	}
	rules, err := r.MergeScopeRules(charter, precedence)
	if err != nil {
		return nil, err
	}
	ego, err := r.MergeEgoConfigs(precedence)
	if err != nil {
		return nil, err
	}
	return &policy.EffectiveConfig{
		Version:           charter.Version,
		Rules:             rules,
		Ego:               *ego,
		SessionContinuity: charter.SessionContinuity,
	}, nil
}

// mergeEgoInstances merges override onto base. Scalar fields overwrite when
// set; map fields shallow-merge key by key; list fields overwrite only when
// non-empty, so an unset field in a higher-precedence scope never erases a
// lower-precedence value.
func mergeEgoInstances(base, override *policy.EgoConfig) *policy.EgoConfig {
	out := *base

	if override.Role != "" {
		out.Role = override.Role
	}
	if override.Tone.Voice != "" {
		out.Tone.Voice = override.Tone.Voice
	}
	if override.Tone.Verbosity != "" {
		out.Tone.Verbosity = override.Tone.Verbosity
	}
	if len(override.Tone.Formatting) > 0 {
		out.Tone.Formatting = override.Tone.Formatting
	}
	if len(override.Defaults) > 0 {
		merged := make(map[string]string, len(base.Defaults)+len(override.Defaults))
		for k, v := range base.Defaults {
			merged[k] = v
		}
		for k, v := range override.Defaults {
			merged[k] = v
		}
		out.Defaults = merged
	}
	if len(override.ReviewerChecklist) > 0 {
		out.ReviewerChecklist = override.ReviewerChecklist
	}
	if len(override.AskWhenUnsure) > 0 {
		out.AskWhenUnsure = override.AskWhenUnsure
	}
	if len(override.Modes) > 0 {
		merged := make(map[string]policy.ModeConfig, len(base.Modes)+len(override.Modes))
		for k, v := range base.Modes {
			merged[k] = v
		}
		for k, v := range override.Modes {
			merged[k] = v
		}
		out.Modes = merged
	}

	return &out
}

// loadYAMLDocument reads a file and parses it as a single YAML document.
// Read and syntax failures are RegistryErrors.
func loadYAMLDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &policy.RegistryError{Path: path, Err: err}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &policy.RegistryError{Path: path, Err: fmt.Errorf("parse yaml: %w", err)}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &policy.RegistryError{Path: path, Err: fmt.Errorf("empty document")}
	}
	return doc.Content[0], nil
}
