package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCmd()

	want := map[string]bool{
		"version":   false,
		"home":      false,
		"browse":    false,
		"discover":  false,
		"search":    false,
		"title":     false,
		"person":    false,
		"people":    false,
		"genres":    false,
		"countries": false,
		"serve":     false,
		"bot":       false,
		"mcp-serve": false,
		"config":    false,
	}

	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_MCPServeHidden(t *testing.T) {
	for _, cmd := range newRootCmd().Commands() {
		if cmd.Name() == "mcp-serve" && !cmd.Hidden {
			t.Error("mcp-serve should be hidden")
		}
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	root := newRootCmd()
	flag := root.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("--config flag not registered")
	}
	if flag.DefValue != "configs/cinescope.yaml" {
		t.Errorf("--config default = %q, want %q", flag.DefValue, "configs/cinescope.yaml")
	}
	if flag.Shorthand != "c" {
		t.Errorf("--config shorthand = %q, want %q", flag.Shorthand, "c")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	if !strings.Contains(out.String(), "cinescope v"+version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"browse", nil, true},
		{"browse", []string{"movie_popular"}, false},
		{"browse", []string{"a", "b"}, true},
		{"search", nil, true},
		{"search", []string{"the", "dark", "knight"}, false},
		{"title", []string{"movie"}, true},
		{"title", []string{"movie", "27205"}, false},
		{"person", []string{"287"}, false},
		{"person", nil, true},
		{"genres", []string{"tv"}, false},
		{"discover", []string{"extra"}, true},
		{"countries", nil, false},
	}

	root := newRootCmd()
	for _, tc := range cases {
		t.Run(tc.name+"/"+strings.Join(tc.args, "_"), func(t *testing.T) {
			cmd, _, err := root.Find([]string{tc.name})
			if err != nil {
				t.Fatalf("find %s: %v", tc.name, err)
			}
			err = cmd.Args(cmd, tc.args)
			if (err != nil) != tc.wantErr {
				t.Errorf("Args(%v) error = %v, wantErr %v", tc.args, err, tc.wantErr)
			}
		})
	}
}

func TestConfigCommand_HasValidateSubcommand(t *testing.T) {
	cmd := newConfigCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Name() == "validate" {
			found = true
			break
		}
	}
	if !found {
		t.Error("config command missing 'validate' subcommand")
	}
}

func TestDiscoverCommand_Flags(t *testing.T) {
	cmd := newDiscoverCmd()
	for _, name := range []string{"type", "genre", "country", "year", "rating", "sort", "page"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("discover is missing --%s", name)
		}
	}
	if got := cmd.Flags().Lookup("type").DefValue; got != "movie" {
		t.Errorf("--type default = %q, want movie", got)
	}
}
