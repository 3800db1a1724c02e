package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullVersionIncludesAllFields(t *testing.T) {
	got := FullVersion()
	assert.True(t, strings.Contains(got, Version))
	assert.True(t, strings.Contains(got, GitCommit))
	assert.True(t, strings.Contains(got, BuildTime))
	assert.True(t, strings.Contains(got, GoVersion))
}
