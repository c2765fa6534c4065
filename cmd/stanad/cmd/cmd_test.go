package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/stanmath/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvPath, "")

	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stanad "+version+"\n", out)
}

func TestModels(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "rosenbrock")
	assert.Contains(t, out, "mvn")
}

func TestGrad(t *testing.T) {
	out, err := run(t, "grad", "--model", "rosenbrock", "--at", "1,1", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "model:    rosenbrock\n")
	assert.Contains(t, out, "norm:     0\n")
	assert.Contains(t, out, "max |grad - finite diff|")
}

func TestGrad_Errors(t *testing.T) {
	_, err := run(t, "grad", "--model", "nope")
	assert.ErrorContains(t, err, "unknown model")

	_, err = run(t, "grad", "--model", "rosenbrock", "--at", "1")
	assert.ErrorContains(t, err, "takes 2 parameters")

	_, err = run(t, "grad", "--model", "normal", "--at", "0,-1e6")
	assert.Error(t, err)
}

func TestHessian(t *testing.T) {
	out, err := run(t, "hessian", "--model", "rosenbrock", "--at", "1,1")
	require.NoError(t, err)
	assert.Contains(t, out, "hessian:")
	assert.Contains(t, out, "-802")
	assert.Contains(t, out, "400")
}

func TestOptimize(t *testing.T) {
	out, err := run(t, "optimize", "--model", "normal", "--algorithm", "sgd", "--lr", "0.01", "--tol", "1e-6")
	require.NoError(t, err)
	assert.Contains(t, out, "model:      normal")
	assert.Contains(t, out, "optimizer:  sgd (lr 0.01)")
	assert.Contains(t, out, "converged:  true")

	out, err = run(t, "optimize", "--model", "rosenbrock", "--iters", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "iterations: 3")
	assert.Contains(t, out, "converged:  false")
}

func TestOptimize_Errors(t *testing.T) {
	_, err := run(t, "optimize", "--algorithm", "lbfgs")
	assert.Error(t, err)

	_, err = run(t, "optimize", "--model", "funnel", "--at", "1")
	assert.Error(t, err)
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "--model", "logistic", "--cycles", "50", "--points", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "cycles:         50")
	assert.Contains(t, out, "parallel:       16 points")

	_, err = run(t, "bench", "--cycles", "0")
	assert.Error(t, err)
}

func TestJitterPoints(t *testing.T) {
	x := []float64{1, -2}
	a := jitterPoints(x, 2000, 7)
	require.Len(t, a, 2000)
	assert.Equal(t, a, jitterPoints(x, 2000, 7))
	assert.NotEqual(t, a, jitterPoints(x, 2000, 8))

	col := make([]float64, len(a))
	for i, p := range a {
		col[i] = p[1]
	}
	mean, std := stat.MeanStdDev(col, nil)
	assert.InDelta(t, -2, mean, 0.01)
	assert.InDelta(t, 0.1, std, 0.01)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stanad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: json\n"), 0o600))

	_, err := run(t, "--config", path, "version")
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "stanad.ini")
	require.NoError(t, os.WriteFile(bad, []byte(""), 0o600))
	_, err = run(t, "--config", bad, "version")
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}
