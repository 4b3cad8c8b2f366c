//go:build !nogl
// +build !nogl

package opengl

// Discs are sent as points and expanded to quads by the geometry shader.
// The fragment shader discards everything outside the unit circle.

const discVert = `#version 330 core

layout(location = 0) in vec2 pos;
layout(location = 1) in float radius;
layout(location = 2) in vec4 color;

out float vRadius;
out vec4 vColor;

void main() {
	gl_Position = vec4(pos, 0, 1);
	vRadius = radius;
	vColor = color;
}
`

const discGeom = `#version 330 core

layout(points) in;
layout(triangle_strip, max_vertices = 4) out;

uniform vec2 vp[2];

in float vRadius[];
in vec4 vColor[];

out vec2 uv;
out vec4 fColor;

vec4 project(vec2 p) {
	return vec4(2 * (p - vp[0]) / (vp[1] - vp[0]) - 1, 0, 1);
}

void main() {
	vec2 c = gl_in[0].gl_Position.xy;
	float r = vRadius[0];
	fColor = vColor[0];
	uv = vec2(-1, -1); gl_Position = project(c + r*uv); EmitVertex();
	uv = vec2(1, -1);  gl_Position = project(c + r*uv); EmitVertex();
	uv = vec2(-1, 1);  gl_Position = project(c + r*uv); EmitVertex();
	uv = vec2(1, 1);   gl_Position = project(c + r*uv); EmitVertex();
	EndPrimitive();
}
`

const discFrag = `#version 330 core

in vec2 uv;
in vec4 fColor;

out vec4 color;

void main() {
	if (dot(uv, uv) > 1) {
		discard;
	}
	color = fColor;
}
`
