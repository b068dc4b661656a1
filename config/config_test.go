package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/vollgas"
	"github.com/db47h/vollgas/config"
	"github.com/db47h/vollgas/hwlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	td := []struct {
		name string
		in   string
		exp  *config.File
		err  string
	}{
		{"empty", "", config.Default(), ""},
		{"full", `
simulation:
  backend: interpreter
  cyclesPerStep: 10
  echoFunctions: true
  echoData: true
elements:
  wireDelay: 3
  norDelay: 1
`, &config.File{
			Simulation: config.Simulation{Backend: vollgas.BackendInterpreter, CyclesPerStep: 10, EchoFunctions: true, EchoData: true},
			Elements:   config.Elements{WireDelay: 3, NorDelay: 1},
		}, ""},
		{"clamped", `
simulation:
  backend: ""
  cyclesPerStep: -5
elements:
  wireDelay: -3
  norDelay: -1
`, config.Default(), ""},
		{"backend", "simulation:\n  backend: jit\n", nil, `unknown backend "jit"`},
		{"unknown field", "simulation:\n  speed: 12\n", nil, "parse configuration"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			f, err := config.Read(strings.NewReader(d.in))
			if d.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), d.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d.exp, f)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "vollgas.yaml")
	require.NoError(t, os.WriteFile(p, []byte("elements:\n  norDelay: 2\n"), 0644))
	t.Setenv("VOLLGAS_TEST_DIR", dir)

	f, err := config.Load("$VOLLGAS_TEST_DIR/vollgas.yaml")
	require.NoError(t, err)
	assert.Equal(t, hwlib.Config{NorDelay: 2}, f.ElementConfig())
	assert.Len(t, f.Options(), 2)
	assert.Equal(t, config.DefaultCyclesPerStep, f.Simulation.CyclesPerStep)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
