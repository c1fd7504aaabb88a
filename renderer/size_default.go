//go:build !android

package renderer

// FeedbackTextureSize is the default edge length of the square feedback
// textures.
const FeedbackTextureSize = 2048
