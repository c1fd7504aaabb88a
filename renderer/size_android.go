//go:build android

package renderer

// FeedbackTextureSize is the default edge length of the square feedback
// textures. Mobile GPUs get a smaller buffer.
const FeedbackTextureSize = 1024
