// Package game implements Pong on top of the engine: two paddles and a
// ball, each a transformed unit square in a normalized [0,1] playfield.
package game

import (
	"github.com/mkualquiera/webengine"
	"github.com/mkualquiera/webengine/app"
	"github.com/mkualquiera/webengine/audio"
	"github.com/mkualquiera/webengine/render"
)

// Playfield geometry and tuning, in normalized field units.
const (
	paddleWidth  = 0.02
	paddleHeight = 0.2
	paddleMargin = 0.03
	ballSize     = 0.025

	paddleSpeed = 0.9
	aiSpeed     = 0.7

	serveSpeedX = 0.5
	serveSpeedY = 0.35

	// Each paddle hit speeds the ball up until the rally resets.
	rallySpeedup = 1.05
	maxSpeedX    = 1.5
)

// Option configures a Game.
type Option func(*Game)

// WithAudio wires a sound system and a bounce clip. The clip may still be
// loading; bounces before it arrives are silent.
func WithAudio(sys *audio.System, bounce *audio.Loadable) Option {
	return func(g *Game) {
		g.audio = sys
		g.bounce = bounce
	}
}

// Game holds the full Pong state. Positions are the top-left corners of
// each entity's square in field space, so an entity transform is a
// translation followed by a scale of the unit square.
type Game struct {
	ballX, ballY float32
	velX, velY   float32

	leftY  float32
	rightY float32

	scoreLeft  int
	scoreRight int

	audio  *audio.System
	bounce *audio.Loadable
}

// New creates a game with the ball served toward the player paddle.
func New(opts ...Option) *Game {
	g := &Game{}
	for _, opt := range opts {
		opt(g)
	}
	g.resetRally(-1)
	g.leftY = 0.5 - paddleHeight/2
	g.rightY = 0.5 - paddleHeight/2
	return g
}

// Scores returns the left and right player scores.
func (g *Game) Scores() (left, right int) {
	return g.scoreLeft, g.scoreRight
}

// resetRally centers the ball and serves it horizontally toward dir
// (-1 left, +1 right) at the base speed.
func (g *Game) resetRally(dir float32) {
	g.ballX = 0.5 - ballSize/2
	g.ballY = 0.5 - ballSize/2
	g.velX = serveSpeedX * dir
	g.velY = serveSpeedY
}

// Update advances the simulation by dt seconds.
func (g *Game) Update(in *app.Input, dt float64) {
	step := float32(dt)

	// Player paddle on the left.
	if in.IsKeyDown("KeyW") || in.IsKeyDown("ArrowUp") {
		g.leftY -= paddleSpeed * step
	}
	if in.IsKeyDown("KeyS") || in.IsKeyDown("ArrowDown") {
		g.leftY += paddleSpeed * step
	}
	g.leftY = clamp(g.leftY, 0, 1-paddleHeight)

	// AI paddle tracks the ball center, capped to its own speed.
	target := g.ballY + ballSize/2 - paddleHeight/2
	if diff := target - g.rightY; diff > aiSpeed*step {
		g.rightY += aiSpeed * step
	} else if diff < -aiSpeed*step {
		g.rightY -= aiSpeed * step
	} else {
		g.rightY = target
	}
	g.rightY = clamp(g.rightY, 0, 1-paddleHeight)

	g.ballX += g.velX * step
	g.ballY += g.velY * step

	// Top and bottom walls reflect vertically.
	if g.ballY <= 0 && g.velY < 0 {
		g.ballY = 0
		g.velY = -g.velY
		g.playBounce(1)
	}
	if g.ballY+ballSize >= 1 && g.velY > 0 {
		g.ballY = 1 - ballSize
		g.velY = -g.velY
		g.playBounce(1)
	}

	g.bouncePaddle(g.leftPaddleTransform(), paddleMargin+paddleWidth, 1)
	g.bouncePaddle(g.rightPaddleTransform(), 1-paddleMargin-paddleWidth-ballSize, -1)

	// A ball past a wall scores for the other side and restarts the
	// rally toward the loser.
	if g.ballX+ballSize < 0 {
		g.scoreRight++
		g.resetRally(-1)
		g.playBounce(0.5)
	}
	if g.ballX > 1 {
		g.scoreLeft++
		g.resetRally(1)
		g.playBounce(0.5)
	}
}

// bouncePaddle reflects the ball off one paddle. exitX is where the
// ball's left edge lands after separation and dir the horizontal
// direction the ball leaves in (+1 right, -1 left).
func (g *Game) bouncePaddle(paddle webengine.Transform, exitX, dir float32) {
	// The ball must be moving into the paddle, otherwise a lingering
	// overlap would flip the velocity every frame.
	if g.velX*dir >= 0 {
		return
	}
	info := webengine.DoSpacesCollide(g.ballTransform(), paddle)
	if info == nil {
		return
	}

	// Contact on the ball's vertical edges (or full overlap) reflects
	// horizontally; pure top/bottom clips deflect vertically so the ball
	// skims off the paddle tip instead of tunneling through it.
	horizontal := info.AInsideB || info.BInsideA ||
		len(info.EdgeIntersections[webengine.EdgeLeft]) > 0 ||
		len(info.EdgeIntersections[webengine.EdgeRight]) > 0
	if horizontal {
		g.ballX = exitX
		g.velX = -g.velX * rallySpeedup
		if g.velX > maxSpeedX {
			g.velX = maxSpeedX
		}
		if g.velX < -maxSpeedX {
			g.velX = -maxSpeedX
		}
		g.playBounce(1)
		return
	}
	if len(info.EdgeIntersections[webengine.EdgeTop]) > 0 && g.velY > 0 {
		g.velY = -g.velY
		g.playBounce(1.2)
	}
	if len(info.EdgeIntersections[webengine.EdgeBottom]) > 0 && g.velY < 0 {
		g.velY = -g.velY
		g.playBounce(1.2)
	}
}

func (g *Game) playBounce(speed float64) {
	if g.audio == nil || g.bounce == nil {
		return
	}
	g.audio.Play(g.bounce, speed)
}

func (g *Game) ballTransform() webengine.Transform {
	return webengine.Identity().
		Translate(g.ballX, g.ballY, 0).
		Scale(ballSize, ballSize, 1)
}

func (g *Game) leftPaddleTransform() webengine.Transform {
	return webengine.Identity().
		Translate(paddleMargin, g.leftY, 0).
		Scale(paddleWidth, paddleHeight, 1)
}

func (g *Game) rightPaddleTransform() webengine.Transform {
	return webengine.Identity().
		Translate(1-paddleMargin-paddleWidth, g.rightY, 0).
		Scale(paddleWidth, paddleHeight, 1)
}

// Render draws the current state: black field, white paddles, white ball.
// Everything renders through the size-invariant projection, so the game
// is untouched by surface resizes.
func (g *Game) Render(d *render.Drawer) error {
	if err := d.Clear(webengine.Black); err != nil {
		return err
	}
	proj := webengine.OrthographicSizeInvariant()

	for _, t := range []webengine.Transform{
		g.leftPaddleTransform(),
		g.rightPaddleTransform(),
		g.ballTransform(),
	} {
		world := proj.Mul(t)
		if err := d.DrawSquare(&world, &webengine.White); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
