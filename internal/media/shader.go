package media

import (
	"fmt"
	"os"
	"strings"

	"github.com/shaderpaper/shaderpaper/internal/glutil"
)

// vertexSource is the fixed full-screen quad vertex stage. Media shaders only
// ever replace the fragment stage.
const vertexSource = `#version 100
attribute highp vec2 datIn;
attribute highp vec2 texIn;
varying highp vec2 texCoords;

void main() {
    texCoords = texIn;
    gl_Position = vec4(datIn, 0.0, 1.0);
}
`

// defaultFragmentSource samples the media texture with a subtle breathing
// zoom. Used whenever no shader file is named.
const defaultFragmentSource = `
#ifdef GL_ES
precision highp float;
#endif

uniform sampler2D u_media;
uniform vec2 u_resolution;
uniform float u_time;

varying vec2 texCoords;

void main() {
    vec2 uv = texCoords;

    float scale = 1.0 + 0.005 * sin(u_time * 1.5);
    vec2 center = vec2(0.5);
    uv = (uv - center) * scale + center;

    uv = clamp(uv, 0.0, 1.0);

    gl_FragColor = texture2D(u_media, uv);
}
`

// LoadShaderSource reads a fragment shader file from disk.
func LoadShaderSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading shader file %s: %w", path, err)
	}
	return string(data), nil
}

// PrepareFragmentSource normalizes a user-supplied fragment shader for the
// ES2 pipeline: a leading #version directive is hoisted to the first line,
// existing float precision declarations are stripped, and a GL_ES precision
// block is injected so shaders written for desktop GL still compile.
func PrepareFragmentSource(raw string) string {
	var version string
	var body []string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if version == "" && strings.HasPrefix(trimmed, "#version") {
			version = line
			continue
		}
		if strings.HasPrefix(trimmed, "precision ") && strings.HasSuffix(strings.TrimRight(trimmed, " \t"), "float;") {
			continue
		}
		body = append(body, line)
	}

	var b strings.Builder
	if version != "" {
		b.WriteString(version)
		b.WriteByte('\n')
	}
	b.WriteString(`
#ifdef GL_ES
  #ifdef GL_FRAGMENT_PRECISION_HIGH
    precision highp float;
  #else
    precision mediump float;
  #endif
#endif
`)
	b.WriteString(strings.Join(body, "\n"))
	return b.String()
}

// newMediaProgram compiles the program for a media surface. An empty or
// "default" shaderPath selects the built-in fragment shader.
func newMediaProgram(shaderPath string) (*glutil.Program, error) {
	frag := defaultFragmentSource
	if shaderPath != "" && shaderPath != DefaultShaderName {
		raw, err := LoadShaderSource(shaderPath)
		if err != nil {
			return nil, err
		}
		frag = PrepareFragmentSource(raw)
	}
	return glutil.NewProgram(vertexSource, frag)
}
