package rules

import (
	"math"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/model"
)

const (
	SwipeVelocityThreshold = 3.0
	SwipeDistanceRatio     = 0.2
	MaxTiltRadians         = 0.5
)

type Screen struct {
	Width  float64
	Height float64
}

func (s Screen) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

type GestureThresholds struct {
	Velocity      float64
	DistanceRatio float64
}

func DefaultGestureThresholds() GestureThresholds {
	return GestureThresholds{
		Velocity:      SwipeVelocityThreshold,
		DistanceRatio: SwipeDistanceRatio,
	}
}

func (t GestureThresholds) normalized() GestureThresholds {
	if t.Velocity <= 0 {
		t.Velocity = SwipeVelocityThreshold
	}
	if t.DistanceRatio <= 0 || t.DistanceRatio >= 1 {
		t.DistanceRatio = SwipeDistanceRatio
	}
	return t
}

// ClassifySwipe maps a released drag to a direction. A fast flick is judged
// by velocity; a slow drag only counts once it has travelled past the
// distance ratio of the screen and is still moving the way it was dragged.
func ClassifySwipe(sample model.GestureSample, screen Screen, th GestureThresholds) enums.SwipeDirection {
	if !screen.Valid() {
		return enums.SwipeDirectionNone
	}
	th = th.normalized()

	absVX := math.Abs(sample.VX)
	absVY := math.Abs(sample.VY)

	if absVX >= th.Velocity || absVY >= th.Velocity {
		if absVX > absVY {
			return horizontal(sample.VX)
		}
		return vertical(sample.DY)
	}

	verticalDrag := screen.Height*th.DistanceRatio < math.Abs(sample.DY) && sample.DY*sample.VY >= 0
	horizontalDrag := screen.Width*th.DistanceRatio < math.Abs(sample.DX) && sample.DX*sample.VX >= 0
	if !verticalDrag && !horizontalDrag {
		return enums.SwipeDirectionNone
	}

	if math.Abs(sample.DY)/screen.Height > math.Abs(sample.DX)/screen.Width {
		return vertical(sample.DY)
	}
	return horizontal(sample.DX)
}

func horizontal(v float64) enums.SwipeDirection {
	if v > 0 {
		return enums.SwipeDirectionRight
	}
	return enums.SwipeDirectionLeft
}

func vertical(v float64) enums.SwipeDirection {
	if v > 0 {
		return enums.SwipeDirectionDown
	}
	return enums.SwipeDirectionUp
}

// Tilt describes how a dragged card rotates around the touch point.
type Tilt struct {
	IsUpper bool
	Radius  float64
}

func DefaultTilt() Tilt {
	return Tilt{Radius: MaxTiltRadians}
}

// TiltFromTouch derives the pivot from the vertical touch position: the
// further the touch is from the screen centre, the stronger the tilt.
func TiltFromTouch(y0 float64, screenHeight float64) Tilt {
	if screenHeight <= 0 {
		return DefaultTilt()
	}

	half := screenHeight / 2
	y := y0
	if half > y0 {
		y = screenHeight - y0
	}

	radius := y*2/screenHeight - 1
	if radius > MaxTiltRadians {
		radius = MaxTiltRadians
	}

	return Tilt{
		IsUpper: y0 < half,
		Radius:  radius,
	}
}

// Rotation maps horizontal displacement to a rotation in radians. The
// mapping extends linearly past one screen width.
func (t Tilt) Rotation(dx, screenWidth float64) float64 {
	if screenWidth <= 0 {
		return 0
	}
	rotation := dx / screenWidth * t.Radius
	if t.IsUpper {
		return rotation
	}
	return -rotation
}

// BackdropOpacity fades the backdrop out as the card leaves the screen.
func BackdropOpacity(dx, screenWidth float64) float64 {
	if screenWidth <= 0 {
		return 1
	}
	opacity := 1 - math.Abs(dx)/(2*screenWidth)
	if opacity < 0 {
		return 0
	}
	return opacity
}
