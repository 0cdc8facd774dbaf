package tests_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/tropism/tests/testutils"
)

const fixtureBeatmap = `{
  "notes": [
    {"time": 0.5, "lane": 0},
    {"time": 1.0, "lane": 1},
    {"time": 1.5, "lane": 2, "holdDuration": 1.0, "holdType": "medium"},
    {"time": 3.0, "lane": 3}
  ],
  "bpm": 120,
  "duration": 8,
  "difficulty": "medium",
  "laneCount": 4
}
`

// writeFixtureBeatmap writes a small known beatmap and returns its path.
func writeFixtureBeatmap(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chart.json")
	if err := os.WriteFile(path, []byte(fixtureBeatmap), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestStatsCLI(t *testing.T) {
	chartPath := writeFixtureBeatmap(t)

	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "stats without arguments fails",
			Command:     test.Command("stats"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "stats nonexistent file fails",
			Command:     test.Command("stats", "/nonexistent/chart.json"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "stats reports counts and difficulty",
			Command: func(_ test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("stats", chartPath)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("difficulty"),
						expectContains("medium"),
						expectContains("total"),
						expectContains("holds"),
					),
				}
			},
		},
		{
			Description: "stats renders json when asked",
			Command: func(_ test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("stats", "--format", "json", chartPath)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectContains("total"),
				}
			},
		},
	}

	testCase.Run(t)
}
