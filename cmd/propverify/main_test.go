package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/propverify/internal/pipeline"
	"github.com/pdiddy/propverify/pkg/types"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"generate", "render", "upload", "serve", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestClockFlag(t *testing.T) {
	clock, err := clockFlag("2026-03-14T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), clock())

	clock, err = clockFlag("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), clock(), time.Minute)

	_, err = clockFlag("yesterday")
	assert.ErrorContains(t, err, "--timestamp")
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	p := printEvent(&buf)
	p(pipeline.Event{Stage: pipeline.Rendering, Title: "Pages rendered", Detail: "3 pages"})
	p(pipeline.Event{Stage: pipeline.Ready, Title: "PDF generated"})
	assert.Equal(t, "[rendering] Pages rendered: 3 pages\n[ready] PDF generated\n", buf.String())
}

func TestOverrideString(t *testing.T) {
	dst := "default"
	flags := generateCmd.Flags()
	overrideString(flags, "output-dir", &dst)
	assert.Equal(t, "default", dst, "unset flag leaves the value alone")

	require.NoError(t, flags.Set("output-dir", "reports"))
	t.Cleanup(func() {
		flags.Set("output-dir", "")
		flags.Lookup("output-dir").Changed = false
	})
	overrideString(flags, "output-dir", &dst)
	assert.Equal(t, "reports", dst)
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v, types.DefaultConfig())

	var got types.Config
	require.NoError(t, v.Unmarshal(&got))
	assert.Equal(t, types.DefaultConfig(), got)
}
