// Package policy defines the core data model for the EgoKit policy engine:
// policy rules, scoped rule sets, the versioned charter, and the behavioral
// ("ego") configuration merged alongside rules.
package policy

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Severity is the enforcement level of a policy rule.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

var (
	ruleIDPattern   = regexp.MustCompile(`^[A-Z]{2,6}-\d{3}$`)
	detectorPattern = regexp.MustCompile(`^[a-z_.]+\.v\d+$`)
)

// validate is the shared validator for policy types.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("ruleid", func(fl validator.FieldLevel) bool {
		return ruleIDPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("detectorname", func(fl validator.FieldLevel) bool {
		return detectorPattern.MatchString(fl.Field().String())
	})
}

// PolicyRule is a single enforceable rule with its metadata.
type PolicyRule struct {
	ID               string   `yaml:"id" validate:"required,ruleid"`
	Rule             string   `yaml:"rule" validate:"required"`
	Severity         Severity `yaml:"severity" validate:"required,oneof=critical warning info"`
	Detector         string   `yaml:"detector,omitempty" validate:"omitempty,detectorname"`
	AutoFix          bool     `yaml:"auto_fix,omitempty"`
	ExampleViolation string   `yaml:"example_violation,omitempty"`
	ExampleFix       string   `yaml:"example_fix,omitempty"`
	Tags             []string `yaml:"tags,omitempty"`
}

// Validate checks the rule against its field constraints.
func (r *PolicyRule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return wrapFieldError("rule", err)
	}
	return nil
}

// HasTag reports whether the rule carries the given free-form tag.
func (r *PolicyRule) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ScopeRules groups the rule entries declared at one scope level. Category
// names are organizational only; nothing downstream keys off them. Entries
// stay as raw YAML nodes so that one malformed rule inside an otherwise
// valid scope is skipped at merge time rather than failing the whole load.
type ScopeRules struct {
	Security        []yaml.Node `yaml:"security,omitempty"`
	CodeQuality     []yaml.Node `yaml:"code_quality,omitempty"`
	Docs            []yaml.Node `yaml:"docs,omitempty"`
	Licensing       []yaml.Node `yaml:"licensing,omitempty"`
	AdditionalRules []yaml.Node `yaml:"additional_rules,omitempty"`
}

// RuleCategory pairs a category name with its raw rule entries.
type RuleCategory struct {
	Name  string
	Nodes []yaml.Node
}

// Categories returns the scope's categories in a fixed sequence, so
// iterating rules across a scope is deterministic. Within each category
// the entries keep their file declaration order.
func (s *ScopeRules) Categories() []RuleCategory {
	return []RuleCategory{
		{Name: "security", Nodes: s.Security},
		{Name: "code_quality", Nodes: s.CodeQuality},
		{Name: "docs", Nodes: s.Docs},
		{Name: "licensing", Nodes: s.Licensing},
		{Name: "additional_rules", Nodes: s.AdditionalRules},
	}
}

// SessionContinuity lists files to re-read and commands to run at the
// start and end of an assistant session.
type SessionContinuity struct {
	StartupFiles     []string `yaml:"startup_files,omitempty"`
	StartupCommands  []string `yaml:"startup_commands,omitempty"`
	ShutdownFiles    []string `yaml:"shutdown_files,omitempty"`
	ShutdownCommands []string `yaml:"shutdown_commands,omitempty"`
}

// PolicyCharter is the versioned document declaring all scopes and their
// rules.
type PolicyCharter struct {
	Version           string                `yaml:"version" validate:"required,semver"`
	Scopes            map[string]ScopeRules `yaml:"scopes"`
	Metadata          map[string]any        `yaml:"metadata,omitempty"`
	SessionContinuity *SessionContinuity    `yaml:"session_continuity,omitempty"`
}

// Validate checks the charter's top-level structure.
func (c *PolicyCharter) Validate() error {
	if err := validate.Struct(c); err != nil {
		return wrapFieldError("charter", err)
	}
	return nil
}

// HasScope reports whether the charter declares the named scope.
func (c *PolicyCharter) HasScope(name string) bool {
	_, ok := c.Scopes[name]
	return ok
}

// ToneConfig captures the assistant's communication style.
type ToneConfig struct {
	Voice      string   `yaml:"voice" validate:"required"`
	Verbosity  string   `yaml:"verbosity" validate:"required"`
	Formatting []string `yaml:"formatting,omitempty"`
}

// ModeConfig is a named operating mode overriding the base calibration.
type ModeConfig struct {
	Verbosity string `yaml:"verbosity" validate:"required"`
	Focus     string `yaml:"focus,omitempty"`
}

// EgoConfig is the persona and behavioral configuration merged alongside
// policy rules.
type EgoConfig struct {
	Role              string                `yaml:"role" validate:"required"`
	Tone              ToneConfig            `yaml:"tone" validate:"required"`
	Defaults          map[string]string     `yaml:"defaults,omitempty"`
	ReviewerChecklist []string              `yaml:"reviewer_checklist,omitempty"`
	AskWhenUnsure     []string              `yaml:"ask_when_unsure,omitempty"`
	Modes             map[string]ModeConfig `yaml:"modes,omitempty"`
}

// Validate checks the ego configuration's field constraints.
func (e *EgoConfig) Validate() error {
	if err := validate.Struct(e); err != nil {
		return wrapFieldError("ego", err)
	}
	return nil
}

// EgoCharter is the versioned on-disk wrapper around an EgoConfig.
type EgoCharter struct {
	Version string    `yaml:"version" validate:"required,semver"`
	Ego     EgoConfig `yaml:"ego" validate:"required"`
}

// Validate checks the ego charter, including the embedded config.
func (c *EgoCharter) Validate() error {
	if err := validate.Struct(c); err != nil {
		return wrapFieldError("ego charter", err)
	}
	return nil
}

// EffectiveConfig is the output of scope resolution: one merged rule list
// and one merged behavioral config. It is recomputed per compilation run,
// never persisted.
type EffectiveConfig struct {
	Version           string
	Rules             []PolicyRule
	Ego               EgoConfig
	SessionContinuity *SessionContinuity
}

// RulesBySeverity returns the subset of merged rules with the given severity,
// preserving merge order.
func (e *EffectiveConfig) RulesBySeverity(sev Severity) []PolicyRule {
	var out []PolicyRule
	for _, r := range e.Rules {
		if r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

// RulesByTag returns the subset of merged rules carrying the given tag.
func (e *EffectiveConfig) RulesByTag(tag string) []PolicyRule {
	var out []PolicyRule
	for _, r := range e.Rules {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out
}
