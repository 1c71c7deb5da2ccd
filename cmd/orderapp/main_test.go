package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicy = `admins:
  - username: root
    email: root@order.app
    password: secret
`

const testItems = `item_name,price,quantity
Milk,1.2,10
Bread,0.8,5
`

// setupEnv points the configuration at temporary files.
func setupEnv(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()

	policy := filepath.Join(dir, "admins.yaml")
	require.NoError(t, os.WriteFile(policy, []byte(testPolicy), 0o600))
	items := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(items, []byte(testItems), 0o600))

	t.Setenv("STORAGE_BACKEND", backend)
	t.Setenv("DATA_DIR", filepath.Join(dir, "files"))
	t.Setenv("ADMIN_POLICY_FILE", policy)
	t.Setenv("SEED_FILE", items)
	t.Setenv("EXPORT_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("S3_ENABLED", "false")
	return dir
}

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_MemoryBackend(t *testing.T) {
	setupEnv(t, "memory")

	out, err := execute(t, "b\nroot@order.app\nsecret\ni\n\nend\n")

	require.NoError(t, err)
	assert.Contains(t, out, "Welcome root")
	assert.Contains(t, out, "Milk")
	assert.Contains(t, out, "Bread")
	assert.Contains(t, out, "Admin options:")
}

func TestRun_FileBackendRequiresInit(t *testing.T) {
	setupEnv(t, "file")

	_, err := execute(t, "end\n", "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialised")
}

func TestInit_ThenReport(t *testing.T) {
	dir := setupEnv(t, "file")

	out, err := execute(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Stores initialised.")

	for _, name := range []string{"items", "coupons", "orders", "users", "sequences"} {
		_, err := os.Stat(filepath.Join(dir, "files", name+".json"))
		assert.NoError(t, err, name)
	}

	// Init is repeatable and does not seed twice.
	_, err = execute(t, "", "init")
	require.NoError(t, err)

	out, err = execute(t, "", "report", "--email", "root@order.app", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Brutto of all orders: 0.00 EUR")
	assert.Contains(t, out, "Brutto money paid: 0.00 EUR")

	out, err = execute(t, "b\nroot@order.app\nsecret\ni\n\nend\n", "run")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Milk"), "catalog seeded once")
}

func TestReport_RequiresAdmin(t *testing.T) {
	setupEnv(t, "memory")

	_, err := execute(t, "", "report", "--email", "root@order.app", "--password", "wrong")

	assert.Error(t, err)
}
