package card

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/model"
	"github.com/ivankudzin/swipedeck/internal/domain/rules"
)

const (
	defaultSwipeDuration   = 100 * time.Millisecond
	defaultSpringFPS       = 60
	defaultSpringFrequency = 8.0
	defaultSpringDamping   = 0.6
	settleEpsilon          = 0.5
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseSnappingBack
	PhaseSwiping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseSnappingBack:
		return "snapping_back"
	case PhaseSwiping:
		return "swiping"
	default:
		return "unknown"
	}
}

type Point struct {
	X float64
	Y float64
}

type Config struct {
	Screen          rules.Screen
	Thresholds      rules.GestureThresholds
	SwipeDuration   time.Duration
	SpringFPS       int
	SpringFrequency float64
	SpringDamping   float64
}

// SwipeFunc is called once the dismiss animation has finished, before the
// card returns to the centre.
type SwipeFunc func(direction enums.SwipeDirection, userID int64)

// Card drives one physical card through its drag and animation phases. It
// is not safe for concurrent use; the UI loop owns it.
type Card struct {
	cfg     Config
	onSwipe SwipeFunc

	user    model.User
	hasUser bool

	phase  Phase
	pos    Point
	origin Point
	tilt   rules.Tilt

	from      Point
	to        Point
	direction enums.SwipeDirection
	elapsed   time.Duration

	spring   harmonica.Spring
	step     time.Duration
	velocity Point
	carry    time.Duration
}

func New(cfg Config, onSwipe SwipeFunc) *Card {
	if cfg.SwipeDuration <= 0 {
		cfg.SwipeDuration = defaultSwipeDuration
	}
	if cfg.SpringFPS <= 0 {
		cfg.SpringFPS = defaultSpringFPS
	}
	if cfg.SpringFrequency <= 0 {
		cfg.SpringFrequency = defaultSpringFrequency
	}
	if cfg.SpringDamping <= 0 {
		cfg.SpringDamping = defaultSpringDamping
	}

	return &Card{
		cfg:     cfg,
		onSwipe: onSwipe,
		tilt:    rules.DefaultTilt(),
		spring:  harmonica.NewSpring(harmonica.FPS(cfg.SpringFPS), cfg.SpringFrequency, cfg.SpringDamping),
		step:    time.Second / time.Duration(cfg.SpringFPS),
	}
}

func (c *Card) SetUser(user model.User) {
	c.user = user
	c.hasUser = true
}

func (c *Card) Clear() {
	c.user = model.User{}
	c.hasUser = false
}

func (c *Card) User() (model.User, bool) {
	return c.user, c.hasUser
}

func (c *Card) SetScreen(screen rules.Screen) {
	c.cfg.Screen = screen
}

func (c *Card) Phase() Phase {
	return c.phase
}

func (c *Card) Position() Point {
	return c.pos
}

func (c *Card) Tilt() rules.Tilt {
	return c.tilt
}

func (c *Card) Rotation() float64 {
	return c.tilt.Rotation(c.pos.X, c.cfg.Screen.Width)
}

func (c *Card) Opacity() float64 {
	return rules.BackdropOpacity(c.pos.X, c.cfg.Screen.Width)
}

func (c *Card) Animating() bool {
	return c.phase == PhaseSnappingBack || c.phase == PhaseSwiping
}

// Grant starts a drag at screen coordinates (x, y). A card that is already
// flying off screen cannot be caught.
func (c *Card) Grant(x, y float64) bool {
	if !c.hasUser || c.phase == PhaseSwiping {
		return false
	}
	c.tilt = rules.TiltFromTouch(y, c.cfg.Screen.Height)
	c.origin = c.pos
	c.velocity = Point{}
	c.carry = 0
	c.phase = PhaseDragging
	return true
}

// Move follows the finger one to one.
func (c *Card) Move(dx, dy float64) {
	if c.phase != PhaseDragging {
		return
	}
	c.pos = Point{X: c.origin.X + dx, Y: c.origin.Y + dy}
}

// Release classifies the finished drag. Only horizontal outcomes dismiss
// the card; everything else springs back to the centre.
func (c *Card) Release(sample model.GestureSample) enums.SwipeDirection {
	if c.phase != PhaseDragging {
		return enums.SwipeDirectionNone
	}

	direction := rules.ClassifySwipe(sample, c.cfg.Screen, c.cfg.Thresholds)
	if !direction.IsDismissal() {
		c.snapBack()
		return direction
	}

	c.startSwipe(direction, c.pos.Y)
	return direction
}

// Terminate cancels a drag taken over by someone else.
func (c *Card) Terminate() {
	if c.phase != PhaseDragging {
		return
	}
	c.snapBack()
}

// ForceSwipe dismisses the card without a gesture. It only applies to the
// card on the top layer.
func (c *Card) ForceSwipe(direction enums.SwipeDirection, zIndex int) bool {
	if zIndex != rules.TopZIndex {
		return false
	}
	if !direction.IsDismissal() || !c.hasUser || c.phase == PhaseSwiping {
		return false
	}
	c.startSwipe(direction, 0)
	return true
}

// Advance moves the running animation forward by dt and reports whether
// the card is still animating.
func (c *Card) Advance(dt time.Duration) bool {
	switch c.phase {
	case PhaseSwiping:
		c.advanceSwipe(dt)
	case PhaseSnappingBack:
		c.advanceSpring(dt)
	}
	return c.Animating()
}

func (c *Card) startSwipe(direction enums.SwipeDirection, y float64) {
	x := 2 * c.cfg.Screen.Width
	if direction == enums.SwipeDirectionLeft {
		x = -x
	}
	c.from = c.pos
	c.to = Point{X: x, Y: y}
	c.direction = direction
	c.elapsed = 0
	c.phase = PhaseSwiping
}

func (c *Card) advanceSwipe(dt time.Duration) {
	c.elapsed += dt
	progress := 1.0
	if c.cfg.SwipeDuration > 0 {
		progress = math.Min(float64(c.elapsed)/float64(c.cfg.SwipeDuration), 1)
	}
	c.pos = Point{
		X: c.from.X + (c.to.X-c.from.X)*progress,
		Y: c.from.Y + (c.to.Y-c.from.Y)*progress,
	}
	if progress < 1 {
		return
	}

	direction := c.direction
	userID := c.user.ID
	c.phase = PhaseIdle
	c.direction = enums.SwipeDirectionNone
	if c.onSwipe != nil {
		c.onSwipe(direction, userID)
	}
	// The same card is reused for the next record.
	c.pos = Point{}
}

func (c *Card) snapBack() {
	c.velocity = Point{}
	c.carry = 0
	c.phase = PhaseSnappingBack
}

func (c *Card) advanceSpring(dt time.Duration) {
	c.carry += dt
	for c.carry >= c.step {
		c.carry -= c.step
		c.pos.X, c.velocity.X = c.spring.Update(c.pos.X, c.velocity.X, 0)
		c.pos.Y, c.velocity.Y = c.spring.Update(c.pos.Y, c.velocity.Y, 0)
		if settled(c.pos, c.velocity) {
			c.pos = Point{}
			c.velocity = Point{}
			c.carry = 0
			c.phase = PhaseIdle
			return
		}
	}
}

func settled(pos, velocity Point) bool {
	return math.Abs(pos.X) < settleEpsilon &&
		math.Abs(pos.Y) < settleEpsilon &&
		math.Abs(velocity.X) < settleEpsilon &&
		math.Abs(velocity.Y) < settleEpsilon
}
