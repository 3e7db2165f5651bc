package main

// Notes:
// - GenerateCompletion: scripts are checked for structural markers and for
//   every command, flag and enum value. They are not run in real shells.
// - getCommands: the registry must mirror the FlagSets used for parsing.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Script generation per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		shell        Shell
		wantContains []string
		flagMarker   func(long string) string
	}{
		{
			name:  "bash",
			shell: ShellBash,
			wantContains: []string{
				"_mdmath()",
				"complete -o filenames -F _mdmath mdmath",
				"compgen -W \"usual github\"",
				"-e|--engine)",
			},
			flagMarker: func(long string) string { return "--" + long },
		},
		{
			name:  "zsh",
			shell: ShellZsh,
			wantContains: []string{
				"#compdef mdmath",
				"_describe 'command' commands",
				"compdef _mdmath mdmath",
				"'*--ignore[",
				":value:(usual github)",
			},
			flagMarker: func(long string) string { return "--" + long },
		},
		{
			name:  "fish",
			shell: ShellFish,
			wantContains: []string{
				"complete -c mdmath -f",
				"__fish_use_subcommand",
				"__fish_seen_subcommand_from render",
				"-x -a 'pandoc chrome'",
				"(__fish_complete_directories)",
			},
			flagMarker: func(long string) string { return "-l " + long },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error: %v", tt.shell, err)
			}
			script := buf.String()

			for _, want := range tt.wantContains {
				if !strings.Contains(script, want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
			for _, cmd := range getCommands() {
				if !strings.Contains(script, cmd.Name) {
					t.Errorf("%s script missing command %q", tt.shell, cmd.Name)
				}
				for _, f := range cmd.Flags {
					if !strings.Contains(script, tt.flagMarker(f.Long)) {
						t.Errorf("%s script missing flag %q of %s", tt.shell, f.Long, cmd.Name)
					}
				}
			}
		})
	}
}

func TestGenerateCompletion_Unsupported(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{"powershell", "tcsh", ""} {
		var buf bytes.Buffer
		err := GenerateCompletion(&buf, shell)
		if !errors.Is(err, ErrUnsupportedShell) {
			t.Errorf("GenerateCompletion(%q) error = %v, want ErrUnsupportedShell", shell, err)
		}
		if buf.Len() != 0 {
			t.Errorf("GenerateCompletion(%q) wrote output on error", shell)
		}
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Registry consistency
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	byName := make(map[string]commandDef)
	for _, c := range getCommands() {
		if _, dup := byName[c.Name]; dup {
			t.Errorf("duplicate command %q", c.Name)
		}
		byName[c.Name] = c
	}

	for _, name := range []string{"convert", "render", "doctor", "completion", "version", "help"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("missing command %q", name)
		}
	}

	flagTypes := func(cmd string) map[string]flagType {
		out := make(map[string]flagType)
		for _, f := range byName[cmd].Flags {
			out[f.Long] = f.Type
		}
		return out
	}

	convert := flagTypes("convert")
	wantConvert := map[string]flagType{
		"to": flagEnum, "workers": flagInt, "ignore": flagDir, "ext": flagString,
		"dry-run": flagBool, "config": flagFile, "quiet": flagBool, "verbose": flagBool,
	}
	for long, want := range wantConvert {
		if got, ok := convert[long]; !ok || got != want {
			t.Errorf("convert --%s type = %v (present %v), want %v", long, got, ok, want)
		}
	}

	render := flagTypes("render")
	wantRender := map[string]flagType{
		"engine": flagEnum, "output": flagDir, "timeout": flagString, "pandoc": flagFile,
		"no-open": flagBool, "keep": flagBool,
	}
	for long, want := range wantRender {
		if got, ok := render[long]; !ok || got != want {
			t.Errorf("render --%s type = %v (present %v), want %v", long, got, ok, want)
		}
	}

	if got := len(byName["completion"].Args); got != len(Shells) {
		t.Errorf("completion args = %d, want %d", got, len(Shells))
	}
}

// ---------------------------------------------------------------------------
// TestQuoting - Shell escaping helpers
// ---------------------------------------------------------------------------

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got, want := zshQuote("a [b]: it's"), `a \[b\]\: it'\''s`; got != want {
		t.Errorf("zshQuote() = %q, want %q", got, want)
	}
	if got, want := fishQuote(`it's a\b`), `it\'s a\\b`; got != want {
		t.Errorf("fishQuote() = %q, want %q", got, want)
	}
}
