package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ValidationError is a hard problem that should prevent the config from
// being used. An empty Reason means the field is missing entirely.
type ValidationError struct {
	Path   string
	Field  string
	Reason string
}

func missingRequiredField(path, field string) ValidationError {
	return ValidationError{Path: path, Field: field}
}

func invalidValue(path, field, reason string) ValidationError {
	return ValidationError{Path: path, Field: field, Reason: reason}
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: missing required field '%s'", e.Path, e.Field)
	}
	return fmt.Sprintf("%s: invalid value for '%s': %s", e.Path, e.Field, e.Reason)
}

// WarningKind discriminates the soft lint findings.
type WarningKind string

const (
	WarnUnusedPlaceholder       WarningKind = "unused-placeholder"
	WarnDuplicateCommandName    WarningKind = "duplicate-command-name"
	WarnSuspiciousPort          WarningKind = "suspicious-port"
	WarnEmptyCommandGroup       WarningKind = "empty-command-group"
	WarnUnresolvedPlaceholder   WarningKind = "unresolved-placeholder"
	WarnDuplicateKeybinding     WarningKind = "duplicate-keybinding"
	WarnInvalidKeybindingSyntax WarningKind = "invalid-keybinding-syntax"
	WarnPortConflict            WarningKind = "port-conflict"
)

// ValidationWarning is a soft finding shown on startup but never fatal.
type ValidationWarning struct {
	Kind    WarningKind
	Message string
}

func warn(kind WarningKind, format string, args ...any) ValidationWarning {
	return ValidationWarning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (w ValidationWarning) String() string { return w.Message }

// Result collects the findings of a validation pass.
type Result struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// IsValid reports whether the config carries no hard errors.
func (r *Result) IsValid() bool { return len(r.Errors) == 0 }

// HasWarnings reports whether any soft findings were recorded.
func (r *Result) HasWarnings() bool { return len(r.Warnings) > 0 }

func (r *Result) addError(e ValidationError)     { r.Errors = append(r.Errors, e) }
func (r *Result) addWarning(w ValidationWarning) { r.Warnings = append(r.Warnings, w) }

// wellKnownPorts are services commonly running on developer machines.
var wellKnownPorts = map[int]string{
	22:    "SSH",
	53:    "DNS",
	3000:  "common dev server",
	3306:  "MySQL",
	5432:  "PostgreSQL",
	5672:  "RabbitMQ",
	6379:  "Redis",
	8080:  "common proxy/alt HTTP",
	9090:  "Prometheus",
	27017: "MongoDB",
}

// Validate lints cfg and returns every finding. Hard errors cover required
// fields and unparseable values; everything else is a warning.
func Validate(cfg *Config) *Result {
	v := &validator{cfg: cfg, result: &Result{}}
	v.checkInfrastructure()
	v.checkPortConflicts()
	v.checkDuplicateCommandNames()
	v.checkUnusedPlaceholders()
	v.checkUnresolvedPlaceholders()
	v.checkEmptyCommandGroups()
	v.checkSuspiciousPorts()
	v.checkKeybindings()
	return v.result
}

type validator struct {
	cfg    *Config
	result *Result
}

func (v *validator) checkInfrastructure() {
	infra := &v.cfg.Infrastructure

	if infra.ClusterName == "" {
		v.result.addError(missingRequiredField("infrastructure", "cluster_name"))
	}
	if infra.Domain == "" {
		v.result.addError(missingRequiredField("infrastructure", "domain"))
	}

	if infra.K3sVersion == "" {
		v.result.addError(missingRequiredField("infrastructure", "k3s_version"))
	} else if _, err := semver.NewVersion(infra.K3sVersion); err != nil {
		v.result.addError(invalidValue("infrastructure", "k3s_version",
			fmt.Sprintf("%q is not a valid version", infra.K3sVersion)))
	}

	for _, field := range []struct {
		name string
		port int
	}{
		{"api_port", infra.APIPort},
		{"http_port", infra.HTTPPort},
		{"https_port", infra.HTTPSPort},
	} {
		if field.port < 1 || field.port > 65535 {
			v.result.addError(invalidValue("infrastructure", field.name,
				fmt.Sprintf("port %d is out of range", field.port)))
		}
	}

	for _, spec := range infra.AdditionalPorts {
		host, containerPort, ok := strings.Cut(spec, ":")
		if !ok {
			v.result.addError(invalidValue("infrastructure", "additional_ports",
				fmt.Sprintf("%q is not in host:container form", spec)))
			continue
		}
		for _, part := range []string{host, containerPort} {
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 || n > 65535 {
				v.result.addError(invalidValue("infrastructure", "additional_ports",
					fmt.Sprintf("%q is not a valid port number", part)))
			}
		}
	}
}

// checkPortConflicts flags http/https/api ports that collide with each
// other.
func (v *validator) checkPortConflicts() {
	infra := &v.cfg.Infrastructure
	usage := map[int][]string{}
	for _, field := range []struct {
		name string
		port int
	}{
		{"http_port", infra.HTTPPort},
		{"https_port", infra.HTTPSPort},
		{"api_port", infra.APIPort},
	} {
		usage[field.port] = append(usage[field.port], field.name)
	}

	ports := make([]int, 0, len(usage))
	for port := range usage {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	for _, port := range ports {
		if users := usage[port]; len(users) > 1 {
			v.result.addWarning(warn(WarnPortConflict,
				"Port %d is used by multiple services: %s", port, strings.Join(users, ", ")))
		}
	}
}

// checkDuplicateCommandNames flags case-insensitive name collisions within a
// group. Nested submenus form their own namespace.
func (v *validator) checkDuplicateCommandNames() {
	for _, group := range v.cfg.Commands {
		v.checkDuplicatesIn(group.Commands, group.Name, map[string]bool{})
	}
}

func (v *validator) checkDuplicatesIn(entries []CommandEntry, groupName string, seen map[string]bool) {
	for _, entry := range entries {
		lower := strings.ToLower(entry.Name)
		if seen[lower] {
			v.result.addWarning(warn(WarnDuplicateCommandName,
				"Duplicate command name '%s' in group '%s'", entry.Name, groupName))
		} else {
			seen[lower] = true
		}

		if len(entry.Commands) > 0 {
			v.checkDuplicatesIn(entry.Commands, groupName+"/"+entry.Name, map[string]bool{})
		}
	}
}

func (v *validator) checkUnusedPlaceholders() {
	if len(v.cfg.Placeholders) == 0 {
		return
	}

	used := map[string]bool{}
	for _, group := range v.cfg.Commands {
		collectPlaceholderUsage(group.Commands, used)
	}

	names := make([]string, 0, len(v.cfg.Placeholders))
	for name := range v.cfg.Placeholders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !used[name] {
			v.result.addWarning(warn(WarnUnusedPlaceholder,
				"Placeholder '@%s' is defined but never used", name))
		}
	}
}

func collectPlaceholderUsage(entries []CommandEntry, used map[string]bool) {
	for _, entry := range entries {
		markPlaceholders(entry.Name, used)
		if entry.Exec != nil {
			markPlaceholders(entry.Exec.Target.Namespace, used)
			markPlaceholders(entry.Exec.Target.Selector, used)
			markPlaceholders(entry.Exec.Target.PodName, used)
			markPlaceholders(entry.Exec.Target.Container, used)
			markPlaceholders(entry.Exec.Workdir, used)
			markPlaceholders(entry.Exec.Cmd, used)
		}
		collectPlaceholderUsage(entry.Commands, used)
	}
}

func markPlaceholders(s string, used map[string]bool) {
	for _, name := range ExtractPlaceholders(s) {
		used[name] = true
	}
}

// checkUnresolvedPlaceholders flags @name references that match neither a
// defined placeholder nor the command's runtime input map.
func (v *validator) checkUnresolvedPlaceholders() {
	for _, group := range v.cfg.Commands {
		v.checkUnresolvedIn(group.Commands, group.Name)
	}
}

func (v *validator) checkUnresolvedIn(entries []CommandEntry, path string) {
	for _, entry := range entries {
		entryPath := path + "/" + entry.Name

		if entry.Exec != nil {
			fields := []struct {
				name  string
				value string
			}{
				{"target.namespace", entry.Exec.Target.Namespace},
				{"target.selector", entry.Exec.Target.Selector},
				{"target.pod_name", entry.Exec.Target.PodName},
				{"target.container", entry.Exec.Target.Container},
				{"workdir", entry.Exec.Workdir},
				{"cmd", entry.Exec.Cmd},
			}
			for _, field := range fields {
				for _, name := range ExtractPlaceholders(field.value) {
					if _, defined := v.cfg.Placeholders[name]; defined {
						continue
					}
					if _, isInput := entry.Exec.Input[name]; isInput {
						continue
					}
					v.result.addWarning(warn(WarnUnresolvedPlaceholder,
						"%s.%s: unresolved placeholder '@%s'", entryPath, field.name, name))
				}
			}
		}

		v.checkUnresolvedIn(entry.Commands, entryPath)
	}
}

func (v *validator) checkEmptyCommandGroups() {
	for _, group := range v.cfg.Commands {
		if len(group.Commands) == 0 {
			v.result.addWarning(warn(WarnEmptyCommandGroup,
				"Command group '%s' has no commands", group.Name))
		}
	}
}

// checkSuspiciousPorts flags privileged ports that are not the standard one
// for their role, and ports commonly occupied by well-known services.
func (v *validator) checkSuspiciousPorts() {
	infra := &v.cfg.Infrastructure

	if infra.HTTPPort < 1024 && infra.HTTPPort != 80 {
		v.result.addWarning(warn(WarnSuspiciousPort,
			"Port %d: non-standard privileged port for HTTP", infra.HTTPPort))
	}
	if infra.HTTPSPort < 1024 && infra.HTTPSPort != 443 {
		v.result.addWarning(warn(WarnSuspiciousPort,
			"Port %d: non-standard privileged port for HTTPS", infra.HTTPSPort))
	}

	for _, field := range []struct {
		port     int
		expected int
	}{
		{infra.HTTPPort, 80},
		{infra.HTTPSPort, 443},
		{infra.APIPort, 6443},
	} {
		if field.port == field.expected {
			continue
		}
		if service, known := wellKnownPorts[field.port]; known {
			v.result.addWarning(warn(WarnSuspiciousPort,
				"Port %d: commonly used by %s", field.port, service))
		}
	}
}

func (v *validator) checkKeybindings() {
	kb := v.cfg.Keybindings
	if kb == nil {
		return
	}

	builtin := []struct {
		action string
		key    string
	}{
		{"quit", kb.Quit},
		{"help", kb.Help},
		{"refresh", kb.Refresh},
		{"command_palette", kb.CommandPalette},
		{"update_hosts", kb.UpdateHosts},
		{"cancel", kb.Cancel},
		{"move_up", kb.MoveUp},
		{"move_down", kb.MoveDown},
		{"move_left", kb.MoveLeft},
		{"move_right", kb.MoveRight},
		{"toggle_focus", kb.ToggleFocus},
		{"execute", kb.Execute},
	}

	bindings := map[string][]string{}
	for _, b := range builtin {
		if b.key != "" {
			bindings[strings.ToLower(b.key)] = append(bindings[strings.ToLower(b.key)], b.action)
		}
	}

	customKeys := make([]string, 0, len(kb.Custom))
	for key := range kb.Custom {
		customKeys = append(customKeys, key)
	}
	sort.Strings(customKeys)
	for _, key := range customKeys {
		bindings[strings.ToLower(key)] = append(bindings[strings.ToLower(key)], "custom:"+kb.Custom[key])
	}

	keys := make([]string, 0, len(bindings))
	for key := range bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if actions := bindings[key]; len(actions) > 1 {
			v.result.addWarning(warn(WarnDuplicateKeybinding,
				"Key '%s' bound to multiple actions: %s", key, strings.Join(actions, ", ")))
		}
	}

	for _, b := range builtin {
		if b.key == "" {
			continue
		}
		if reason := checkKeySyntax(b.key); reason != "" {
			v.result.addWarning(warn(WarnInvalidKeybindingSyntax,
				"Invalid keybinding '%s = %s': %s", b.action, b.key, reason))
		}
	}
	for _, key := range customKeys {
		if reason := checkKeySyntax(key); reason != "" {
			v.result.addWarning(warn(WarnInvalidKeybindingSyntax,
				"Invalid keybinding '%s': %s", key, reason))
		}
	}
}

var keyModifiers = map[string]bool{"ctrl": true, "alt": true, "shift": true}

var specialKeys = map[string]bool{
	"enter": true, "esc": true, "escape": true, "tab": true, "backspace": true,
	"delete": true, "insert": true, "home": true, "end": true, "pageup": true,
	"pagedown": true, "up": true, "down": true, "left": true, "right": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
	"space": true,
}

// checkKeySyntax validates a binding like "Ctrl+Shift+p". The returned
// string is empty when the binding is well formed.
func checkKeySyntax(key string) string {
	if key == "" {
		return "empty keybinding"
	}

	parts := strings.Split(key, "+")
	for i, part := range parts {
		lower := strings.ToLower(part)
		last := i == len(parts)-1

		if last {
			if len(lower) == 1 || specialKeys[lower] || keyModifiers[lower] {
				continue
			}
			return fmt.Sprintf("unknown key '%s'", part)
		}
		if !keyModifiers[lower] {
			return fmt.Sprintf("invalid modifier '%s'; expected ctrl, alt, or shift", part)
		}
	}
	return ""
}
