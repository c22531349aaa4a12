// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	runErr        error
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, name string, args ...string) error {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	return m.runErr
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		bins       map[string]bool
		override   string
		candidates []string
		wantName   string
		wantErr    string
	}{
		{
			name:       "first candidate available",
			bins:       map[string]bool{"lp": true, "lpr": true},
			candidates: printerCandidates("linux"),
			wantName:   "lp",
		},
		{
			name:       "fallback to second candidate",
			bins:       map[string]bool{"lpr": true},
			candidates: printerCandidates("linux"),
			wantName:   "lpr",
		},
		{
			name:       "multi-word candidate",
			bins:       map[string]bool{"gio": true},
			candidates: openerCandidates("linux"),
			wantName:   "gio",
		},
		{
			name:       "nothing available",
			bins:       map[string]bool{},
			candidates: printerCandidates("linux"),
			wantErr:    "no print command available: tried lp, lpr",
		},
		{
			name:       "override wins",
			bins:       map[string]bool{"lp": true, "okular": true},
			override:   "okular --print",
			candidates: printerCandidates("linux"),
			wantName:   "okular",
		},
		{
			name:       "override missing",
			bins:       map[string]bool{"lp": true},
			override:   "okular",
			candidates: printerCandidates("linux"),
			wantErr:    `configured print command "okular" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := detect(&mockExecutor{availableBins: tt.bins}, "print command", tt.override, tt.candidates)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}

func TestCommandRun(t *testing.T) {
	m := &mockExecutor{availableBins: map[string]bool{"lp": true}}
	c := parseCommand("lp -d office", m)
	require.NotNil(t, c)

	require.NoError(t, c.Run(context.Background(), "/tmp/case-1-report.pdf"))
	assert.Equal(t, []string{"lp -d office /tmp/case-1-report.pdf"}, m.calls)

	m.runErr = errors.New("exit status 1")
	err := c.Run(context.Background(), "/tmp/x.pdf")
	assert.ErrorContains(t, err, "running lp")
}

func TestParseCommandEmpty(t *testing.T) {
	assert.Nil(t, parseCommand("   ", &mockExecutor{}))
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"open"}, openerCandidates("darwin"))
	assert.Equal(t, []string{"lp", "lpr"}, printerCandidates("darwin"))
	assert.Equal(t, []string{"print"}, printerCandidates("windows"))
}
