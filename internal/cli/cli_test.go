package cli

import "testing"

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "gridwe" {
		t.Errorf("Use = %q, want gridwe", root.Use)
	}

	want := []string{"submit", "plugins", "describe", "report"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, flag := range []string{"debug", "log-level", "log-format"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag %q not defined", flag)
		}
	}
}
