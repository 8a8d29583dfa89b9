package build

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{name: "no vcs", want: "v1.0.0"},
		{
			name:     "clean revision",
			settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef0123"}, {Key: "vcs.modified", Value: "false"}},
			want:     "v1.0.0 (0123456789ab)",
		},
		{
			name:     "dirty short revision",
			settings: []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}, {Key: "vcs.revision", Value: "abc"}},
			want:     "v1.0.0 (abc-dirty)",
		},
		{
			name:     "modified without revision",
			settings: []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}},
			want:     "v1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe("v1.0.0", tt.settings))
		})
	}
}

func TestInfo_StartsWithVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(Info(), Version))
}
