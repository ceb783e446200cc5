package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info buildInfo
		want string
	}{
		{"release", buildInfo{Version: "v0.3.0", GoVersion: "go1.24.2"}, "mastery v0.3.0 go1.24.2"},
		{"vcs", buildInfo{Version: "(devel)", GoVersion: "go1.24.2", Revision: "0123456789abcdef"}, "mastery (devel) (0123456789ab) go1.24.2"},
		{"dirty", buildInfo{Version: "(devel)", Revision: "abc", Modified: true}, "mastery (devel) (abc-dirty)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestReadBuildInfo_LdflagsOverride(t *testing.T) {
	prev := version
	t.Cleanup(func() { version = prev })

	version = "v9.9.9"
	assert.Equal(t, "v9.9.9", readBuildInfo().Version)

	version = ""
	info := readBuildInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
