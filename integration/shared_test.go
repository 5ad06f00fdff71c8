//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared codetrend binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the codetrend binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "codetrend-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "codetrend")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		buildCmd.Env = append(os.Environ(), "CGO_ENABLED=1")
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build codetrend: %v\n%s", err, out))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// fixtureCommit is one commit of the fixture repository.
type fixtureCommit struct {
	message string
	files   map[string]string // Empty content deletes the file
}

// fixtureCommits builds a small Python project over four commits.
var fixtureCommits = []fixtureCommit{
	{"Add app", map[string]string{
		"app.py":        "def main():\n    return 1\n",
		"pkg/util.py":   "def add(a, b):\n    return a + b\n",
		"pkg/helper.py": "X = 1\n",
	}},
	{"Grow main", map[string]string{
		"app.py": "def main(x):\n    if x:\n        return 1\n    return 2\n",
	}},
	{"Drop helper", map[string]string{
		"pkg/helper.py": "",
	}},
	{"Document add", map[string]string{
		"pkg/util.py": "# adds numbers\ndef add(a, b):\n    return a + b\n",
	}},
}

// newFixtureRepo creates a git repository holding fixtureCommits.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	git := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Dev", "GIT_AUTHOR_EMAIL=dev@example.com",
			"GIT_COMMITTER_NAME=Dev", "GIT_COMMITTER_EMAIL=dev@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	}

	git("init", "-q")
	for i, c := range fixtureCommits {
		for name, content := range c.files {
			path := filepath.Join(dir, filepath.FromSlash(name))
			if content == "" {
				require.NoError(t, os.Remove(path))
				continue
			}
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		}
		git("add", "-A")
		git("commit", "-q", "-m", c.message, "--date", fmt.Sprintf("2024-01-0%dT12:00:00Z", i+1))
	}
	return dir
}

// runCodetrend runs the binary in dir and returns its stdout.
func runCodetrend(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}
