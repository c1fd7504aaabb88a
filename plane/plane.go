// Package plane maps window pixels onto the region of the complex plane
// covered by the screen and the feedback textures:
//
//	(-Scale to Scale) + i*(-Scale to Scale)
package plane

import "github.com/go-gl/mathgl/mgl32"

// Scale is the half-extent of the visible region on each axis.
const Scale = 1.4

// PixelToPlane converts a window position in pixels to a complex number,
// returned as (re, im). width and height must both be at least 2.
func PixelToPlane(x, y float64, width, height int) mgl32.Vec2 {
	return mgl32.Vec2{
		float32(axis(x, width)),
		float32(axis(y, height)),
	}
}

func axis(p float64, dim int) float64 {
	return (p/float64(dim-1)*2 - 1) * Scale
}
