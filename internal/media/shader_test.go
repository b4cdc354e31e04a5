package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareFragmentSourceHoistsVersion(t *testing.T) {
	raw := "uniform float u_time;\n#version 300 es\nvoid main() {}\n"
	out := PrepareFragmentSource(raw)

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "#version 300 es", lines[0], "version directive must be the first line")
	assert.Contains(t, out, "uniform float u_time;")
}

func TestPrepareFragmentSourceStripsPrecision(t *testing.T) {
	raw := strings.Join([]string{
		"precision mediump float;",
		"  precision highp float;",
		"precision lowp int;",
		"void main() {}",
	}, "\n")
	out := PrepareFragmentSource(raw)

	// Float precision lines from the source are removed; the injected block
	// re-declares precision inside #ifdef GL_ES guards.
	assert.NotContains(t, out, "precision mediump float;\nvoid")
	assert.Contains(t, out, "precision lowp int;", "non-float precision lines survive")
	assert.Contains(t, out, "#ifdef GL_FRAGMENT_PRECISION_HIGH")
	assert.Contains(t, out, "void main() {}")
}

func TestPrepareFragmentSourceOnlyFirstVersionHoisted(t *testing.T) {
	raw := "#version 100\n#version 300 es\nvoid main() {}\n"
	out := PrepareFragmentSource(raw)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "#version 100", lines[0])
	// The second directive is treated as body and left where it was.
	assert.Contains(t, out, "#version 300 es")
}

func TestPrepareFragmentSourceNoVersion(t *testing.T) {
	out := PrepareFragmentSource("void main() { gl_FragColor = vec4(1.0); }")
	assert.False(t, strings.HasPrefix(out, "#version"))
	assert.Contains(t, out, "#ifdef GL_ES")
	assert.Contains(t, out, "gl_FragColor")
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "shader(default)", NewShaderType(DefaultShaderName).String())
	assert.Equal(t, "image(/tmp/a.png)", NewImageType("/tmp/a.png", "").String())
	assert.Equal(t, "video(/tmp/a.mp4, shader=/tmp/fx.glsl)",
		NewVideoType("/tmp/a.mp4", "/tmp/fx.glsl").String())
}

func TestTypeComparable(t *testing.T) {
	a := NewVideoType("/tmp/a.mp4", "")
	b := NewVideoType("/tmp/a.mp4", "")
	assert.True(t, a == b)
	assert.False(t, a == NewVideoType("/tmp/a.mp4", "fx"))
	assert.True(t, a.IsVideo())
	assert.False(t, NewShaderType("default").IsVideo())
}

func TestLoadShaderSourceMissingFile(t *testing.T) {
	_, err := LoadShaderSource("/nonexistent/shader.glsl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/shader.glsl")
}
