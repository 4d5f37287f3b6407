package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var update = flag.Bool("update", false, "update golden files")

// Golden compares rendered output (reports, listings) against files under a
// testdata directory. Run tests with -update to rewrite the files.
type Golden struct {
	t       *testing.T
	baseDir string
}

// NewGolden creates a golden-file helper rooted at baseDir.
func NewGolden(t *testing.T, baseDir string) *Golden {
	return &Golden{t: t, baseDir: baseDir}
}

// Assert compares actual output against the named golden file.
func (g *Golden) Assert(name string, actual []byte) {
	g.t.Helper()

	goldenPath := filepath.Join(g.baseDir, name+".golden")

	if *update {
		g.updateGolden(goldenPath, actual)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		g.t.Fatalf("reading golden file %s: %v", goldenPath, err)
	}

	if string(actual) != string(expected) {
		g.t.Errorf("output mismatch for %s:\n--- expected ---\n%s\n--- actual ---\n%s",
			name, expected, actual)
	}
}

// AssertString compares string output against the named golden file.
func (g *Golden) AssertString(name, actual string) {
	g.Assert(name, []byte(actual))
}

func (g *Golden) updateGolden(path string, actual []byte) {
	g.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		g.t.Fatalf("creating golden directory: %v", err)
	}
	if err := os.WriteFile(path, actual, 0o644); err != nil {
		g.t.Fatalf("writing golden file: %v", err)
	}
	g.t.Logf("updated golden file: %s", path)
}

// Normalize normalizes output for comparison: LF line endings, no trailing
// whitespace, no trailing newlines.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// The reports under test embed run-specific values: analyzed_at timestamps,
// session UUIDs, derived workflow ids, and measured durations. The scrubbers
// replace each with a stable marker. The timestamp patterns stop at a double
// quote so a scrubbed JSON field keeps its closing quote.
var (
	timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[^\s"]*`), // RFC 3339
		regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`),        // listing format
		regexp.MustCompile(`\d{2}:\d{2}:\d{2}`),                          // time only
	}
	durationPattern   = regexp.MustCompile(`\d+(\.\d+)?(ns|us|µs|ms|s|m|h)+`)
	uuidPattern       = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	workflowIDPattern = regexp.MustCompile(`wf_[0-9a-f]{8}`)
)

// ScrubTimestamps replaces timestamps with [TIMESTAMP].
func ScrubTimestamps(s string) string {
	for _, re := range timestampPatterns {
		s = re.ReplaceAllString(s, "[TIMESTAMP]")
	}
	return s
}

// ScrubDurations replaces rendered durations ("1.234s", "150ms") with
// [DURATION].
func ScrubDurations(s string) string {
	return durationPattern.ReplaceAllString(s, "[DURATION]")
}

// ScrubPaths replaces basePath with [WORKDIR].
func ScrubPaths(s, basePath string) string {
	return strings.ReplaceAll(s, basePath, "[WORKDIR]")
}

// ScrubUUIDs replaces session and trace UUIDs with [UUID].
func ScrubUUIDs(s string) string {
	return uuidPattern.ReplaceAllString(s, "[UUID]")
}

// ScrubWorkflowIDs replaces derived workflow ids ("wf_" plus eight hex
// characters of the session id) with wf_[ID].
func ScrubWorkflowIDs(s string) string {
	return workflowIDPattern.ReplaceAllString(s, "wf_[ID]")
}

// ScrubAll applies every scrubber and normalizes the result.
func ScrubAll(s, basePath string) string {
	s = ScrubTimestamps(s)
	s = ScrubDurations(s)
	s = ScrubPaths(s, basePath)
	s = ScrubUUIDs(s)
	s = ScrubWorkflowIDs(s)
	return Normalize(s)
}
