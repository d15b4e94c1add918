package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "separate value",
			args:  []string{"-c", "snipd.json", "-a", ":7443"},
			names: []string{"-c"},
			want:  []string{"-c", "snipd.json"},
		},
		{
			name:  "equals form",
			args:  []string{"--config=alt.json", "-a", ":7443"},
			names: []string{"-c", "--config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "foreign flags and positionals dropped",
			args:  []string{"-x", "1", "--y=2", "positional"},
			names: []string{"-c"},
			want:  []string{},
		},
		{
			name:  "trailing flag without value",
			args:  []string{"-issue"},
			names: []string{"-issue"},
			want:  []string{"-issue"},
		},
		{
			name:  "dash token is not a value",
			args:  []string{"-c", "-a", ":7443"},
			names: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "equals value may start with dash",
			args:  []string{"--config=--weird.json"},
			names: []string{"--config"},
			want:  []string{"--config=--weird.json"},
		},
		{
			name:  "order and repeats preserved",
			args:  []string{"-a", ":1", "-d", "dsn", "-a", ":2"},
			names: []string{"-a", "-d"},
			want:  []string{"-a", ":1", "-d", "dsn", "-a", ":2"},
		},
		{
			name:  "empty",
			args:  nil,
			names: []string{"-c"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/snipd.json", ConfigPath([]string{"-a", ":1", "-c", "/etc/snipd.json"}))
	assert.Equal(t, "long.json", ConfigPath([]string{"-config", "long.json"}))
	assert.Equal(t, "eq.json", ConfigPath([]string{"--config=eq.json"}))
	assert.Equal(t, "2.json", ConfigPath([]string{"-c", "1.json", "-config", "2.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1"}))
}
