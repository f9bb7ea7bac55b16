package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	NewOptions().AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestDefaultDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.Equal(t, filepath.Join(dir, "perpus"), DefaultDir())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	o, err := Load(flags(t), "")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8032", o.APIURL)
	require.Equal(t, 30*time.Second, o.Timeout)
	require.Equal(t, "file", o.State.Driver)
	require.True(t, o.State.Encrypt)
	require.Equal(t, DefaultDir(), o.State.Dir)
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := filepath.Join(t.TempDir(), "perpus.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
api-url: http://file.example:1
timeout: 5s
state:
  driver: sqlite
log:
  level: debug
`), 0o600))

	t.Setenv("PERPUS_API_URL", "http://env.example:2/")
	t.Setenv("PERPUS_STATE_ENCRYPT", "false")

	o, err := Load(flags(t, "--timeout=7s"), cfg)
	require.NoError(t, err)
	require.Equal(t, "http://env.example:2", o.APIURL, "env beats file, trailing slash trimmed")
	require.Equal(t, 7*time.Second, o.Timeout, "flag beats file")
	require.Equal(t, "sqlite", o.State.Driver)
	require.False(t, o.State.Encrypt)
	require.Equal(t, "debug", o.Log.Level)
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "perpus"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, "perpus", "config.yaml"),
		[]byte("api-url: https://perpus.example\n"), 0o600))

	o, err := Load(flags(t), "")
	require.NoError(t, err)
	require.Equal(t, "https://perpus.example", o.APIURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(flags(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Validate())

	o.APIURL = "localhost"
	o.Timeout = 0
	o.State.Driver = "redis"
	o.State.Dir = ""
	o.Log.Format = "xml"
	err := o.Validate()
	require.Error(t, err)
	for _, s := range []string{"api-url", "timeout", "state.driver", "state.dir", "log.format"} {
		require.Contains(t, err.Error(), s)
	}
}
