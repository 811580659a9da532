package graphics

const terrainVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec3 aColor;

uniform mat4 proj;
uniform mat4 view;
uniform mat4 model;

out vec3 vNormal;
out vec3 vColor;
out float vDist;

void main() {
    vec4 world = model * vec4(aPos, 1.0);
    vec4 eye = view * world;
    vNormal = aNormal;
    vColor = aColor;
    vDist = length(eye.xyz);
    gl_Position = proj * eye;
}
`

// Fragments are kept or discarded against a 4x4 ordered dither so the old
// and new tier of a chunk can overlap without blending or sorting. The
// fading mesh uses the inverted threshold, so the two never cover the same
// pixel.
const terrainFragmentShader = `#version 410 core
in vec3 vNormal;
in vec3 vColor;
in float vDist;

uniform vec3 lightDir;
uniform vec3 fogColor;
uniform float fogStart;
uniform float fogEnd;
uniform float fade;
uniform bool fadeInvert;

out vec4 FragColor;

const float bayer[16] = float[16](
     0.0,  8.0,  2.0, 10.0,
    12.0,  4.0, 14.0,  6.0,
     3.0, 11.0,  1.0,  9.0,
    15.0,  7.0, 13.0,  5.0);

void main() {
    ivec2 p = ivec2(gl_FragCoord.xy) % 4;
    float threshold = (bayer[p.y * 4 + p.x] + 0.5) / 16.0;
    bool keep = fadeInvert ? threshold >= fade : threshold < fade;
    if (!keep) {
        discard;
    }

    float diffuse = max(dot(normalize(vNormal), lightDir), 0.0);
    vec3 lit = vColor * (0.45 + 0.55 * diffuse);
    float fog = clamp((vDist - fogStart) / (fogEnd - fogStart), 0.0, 1.0);
    FragColor = vec4(mix(lit, fogColor, fog), 1.0);
}
`
