package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestBindDumpFlags_DefaultsFlowThroughViper(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	BindDumpFlags(fs, DefaultDump())
	require.NoError(t, fs.Parse(nil))

	resolved := ResolveDump()
	require.Equal(t, 8, resolved.Concurrency)
	require.Equal(t, "out", resolved.OutDir)
	require.False(t, resolved.DryRun)
}

func TestBindDumpFlags_ExplicitFlagOverridesDefault(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	BindDumpFlags(fs, DefaultDump())
	require.NoError(t, fs.Parse([]string{"--concurrency=16", "--out=/tmp/dest", "--user-agent=custom-agent/1.0"}))

	resolved := ResolveDump()
	require.Equal(t, 16, resolved.Concurrency)
	require.Equal(t, "/tmp/dest", resolved.OutDir)
	require.Equal(t, "custom-agent/1.0", resolved.UserAgent)
}
