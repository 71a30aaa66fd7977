package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warningsOfKind(r *Result, kind WarningKind) []ValidationWarning {
	var out []ValidationWarning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func TestValidateCleanConfig(t *testing.T) {
	result := Validate(Default())
	assert.True(t, result.IsValid())
	assert.False(t, result.HasWarnings())
}

func TestValidateInfrastructureErrors(t *testing.T) {
	t.Run("missing required fields", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.ClusterName = ""
		cfg.Infrastructure.K3sVersion = ""

		result := Validate(cfg)
		assert.False(t, result.IsValid())
		require.Len(t, result.Errors, 2)
		assert.Equal(t, "infrastructure: missing required field 'cluster_name'", result.Errors[0].Error())
		assert.Equal(t, "infrastructure: missing required field 'k3s_version'", result.Errors[1].Error())
	})

	t.Run("malformed k3s version", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.K3sVersion = "latest"

		result := Validate(cfg)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0].Error(), "invalid value for 'k3s_version'")
	})

	t.Run("k3s release suffix parses", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.K3sVersion = "v1.32.1-k3s2"
		assert.True(t, Validate(cfg).IsValid())
	})

	t.Run("out of range ports", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.APIPort = 0
		cfg.Infrastructure.HTTPSPort = 70000

		result := Validate(cfg)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("malformed additional ports", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.AdditionalPorts = []string{"8080", "abc:123", "1000:70000"}

		result := Validate(cfg)
		require.Len(t, result.Errors, 3)
		assert.Contains(t, result.Errors[0].Error(), "not in host:container form")
		assert.Contains(t, result.Errors[1].Error(), "not a valid port number")
		assert.Contains(t, result.Errors[2].Error(), "not a valid port number")
	})
}

func TestValidatePortConflicts(t *testing.T) {
	cfg := Default()
	cfg.Infrastructure.HTTPPort = 6443
	cfg.Infrastructure.HTTPSPort = 6443

	result := Validate(cfg)
	conflicts := warningsOfKind(result, WarnPortConflict)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Port 6443 is used by multiple services: http_port, https_port, api_port", conflicts[0].Message)
}

func TestValidateDuplicateCommandNames(t *testing.T) {
	t.Run("case-insensitive duplicates in one group", func(t *testing.T) {
		cfg := Default()
		cfg.Commands = []CommandGroup{{
			Name: "Tools",
			Commands: []CommandEntry{
				{Name: "Logs", Exec: &ExecConfig{Cmd: "x", Target: TargetConfig{Selector: "a=b"}}},
				{Name: "logs", Exec: &ExecConfig{Cmd: "x", Target: TargetConfig{Selector: "a=b"}}},
			},
		}}

		dups := warningsOfKind(Validate(cfg), WarnDuplicateCommandName)
		require.Len(t, dups, 1)
		assert.Equal(t, "Duplicate command name 'logs' in group 'Tools'", dups[0].Message)
	})

	t.Run("nested submenus form their own namespace", func(t *testing.T) {
		cfg := Default()
		cfg.Commands = []CommandGroup{{
			Name: "Tools",
			Commands: []CommandEntry{
				{Name: "Shell", Commands: []CommandEntry{
					{Name: "Shell", Exec: &ExecConfig{Cmd: "x", Target: TargetConfig{Selector: "a=b"}}},
				}},
			},
		}}

		assert.Empty(t, warningsOfKind(Validate(cfg), WarnDuplicateCommandName))
	})
}

func TestValidatePlaceholders(t *testing.T) {
	t.Run("unused definitions", func(t *testing.T) {
		cfg := Default()
		cfg.Placeholders = map[string]string{"ns": "prod", "orphan": "x"}
		cfg.Commands = []CommandGroup{{
			Name: "Tools",
			Commands: []CommandEntry{{
				Name: "get pods",
				Exec: &ExecConfig{Cmd: "kubectl -n @ns get pods", Target: TargetConfig{Selector: "a=b"}},
			}},
		}}

		unused := warningsOfKind(Validate(cfg), WarnUnusedPlaceholder)
		require.Len(t, unused, 1)
		assert.Equal(t, "Placeholder '@orphan' is defined but never used", unused[0].Message)
	})

	t.Run("unresolved references", func(t *testing.T) {
		cfg := Default()
		cfg.Commands = []CommandGroup{{
			Name: "Tools",
			Commands: []CommandEntry{{
				Name: "describe",
				Exec: &ExecConfig{Cmd: "kubectl describe pod @mystery", Target: TargetConfig{Selector: "a=b"}},
			}},
		}}

		unresolved := warningsOfKind(Validate(cfg), WarnUnresolvedPlaceholder)
		require.Len(t, unresolved, 1)
		assert.Equal(t, "Tools/describe.cmd: unresolved placeholder '@mystery'", unresolved[0].Message)
	})

	t.Run("runtime inputs are not unresolved", func(t *testing.T) {
		cfg := Default()
		cfg.Commands = []CommandGroup{{
			Name: "Tools",
			Commands: []CommandEntry{{
				Name: "describe",
				Exec: &ExecConfig{
					Cmd:    "kubectl describe pod @pod",
					Target: TargetConfig{Selector: "a=b"},
					Input:  map[string]string{"pod": "Pod name"},
				},
			}},
		}}

		assert.Empty(t, warningsOfKind(Validate(cfg), WarnUnresolvedPlaceholder))
	})
}

func TestValidateEmptyCommandGroups(t *testing.T) {
	cfg := Default()
	cfg.Commands = []CommandGroup{{Name: "Empty"}}

	empty := warningsOfKind(Validate(cfg), WarnEmptyCommandGroup)
	require.Len(t, empty, 1)
	assert.Equal(t, "Command group 'Empty' has no commands", empty[0].Message)
}

func TestValidateSuspiciousPorts(t *testing.T) {
	t.Run("non-standard privileged port", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.HTTPPort = 81

		suspicious := warningsOfKind(Validate(cfg), WarnSuspiciousPort)
		require.Len(t, suspicious, 1)
		assert.Equal(t, "Port 81: non-standard privileged port for HTTP", suspicious[0].Message)
	})

	t.Run("well-known service port", func(t *testing.T) {
		cfg := Default()
		cfg.Infrastructure.HTTPPort = 8080

		suspicious := warningsOfKind(Validate(cfg), WarnSuspiciousPort)
		require.Len(t, suspicious, 1)
		assert.Equal(t, "Port 8080: commonly used by common proxy/alt HTTP", suspicious[0].Message)
	})

	t.Run("standard ports stay quiet", func(t *testing.T) {
		assert.Empty(t, warningsOfKind(Validate(Default()), WarnSuspiciousPort))
	})
}

func TestValidateKeybindings(t *testing.T) {
	t.Run("duplicate bindings", func(t *testing.T) {
		cfg := Default()
		cfg.Keybindings = &KeybindingsConfig{
			Quit:   "Ctrl+q",
			Cancel: "ctrl+Q",
			Custom: map[string]string{"Ctrl+q": "Tools/Logs"},
		}

		dups := warningsOfKind(Validate(cfg), WarnDuplicateKeybinding)
		require.Len(t, dups, 1)
		assert.Equal(t, "Key 'ctrl+q' bound to multiple actions: quit, cancel, custom:Tools/Logs", dups[0].Message)
	})

	t.Run("syntax validation", func(t *testing.T) {
		cfg := Default()
		cfg.Keybindings = &KeybindingsConfig{
			Quit:    "q",
			Help:    "F1",
			Refresh: "Ctrl+Shift+r",
			Execute: "Meta+x",
			Custom:  map[string]string{"Foo": "Tools/Logs"},
		}

		bad := warningsOfKind(Validate(cfg), WarnInvalidKeybindingSyntax)
		require.Len(t, bad, 2)
		assert.Equal(t, "Invalid keybinding 'execute = Meta+x': invalid modifier 'Meta'; expected ctrl, alt, or shift", bad[0].Message)
		assert.Equal(t, "Invalid keybinding 'Foo': unknown key 'Foo'", bad[1].Message)
	})

	t.Run("no keybindings section is fine", func(t *testing.T) {
		result := Validate(Default())
		assert.Empty(t, warningsOfKind(result, WarnDuplicateKeybinding))
		assert.Empty(t, warningsOfKind(result, WarnInvalidKeybindingSyntax))
	})
}

func TestCheckKeySyntax(t *testing.T) {
	assert.Empty(t, checkKeySyntax("q"))
	assert.Empty(t, checkKeySyntax("Enter"))
	assert.Empty(t, checkKeySyntax("Ctrl+c"))
	assert.Empty(t, checkKeySyntax("Ctrl+Shift+p"))
	assert.Empty(t, checkKeySyntax("F1"))
	assert.NotEmpty(t, checkKeySyntax(""))
	assert.NotEmpty(t, checkKeySyntax("Foo+c"))
}
