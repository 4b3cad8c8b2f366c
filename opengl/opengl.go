//go:build !nogl
// +build !nogl

package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/render"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	MaxBodies  int                                     // maximum number of discs
	Step       func() error                            // go to next state
	Discs      func() ([]render.Disc, *edmd.Collision) // current discs and last event
	ForcePause bool                                    // step manually only?

	// bounds of default viewport
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}

// Run shows the simulation in an OpenGL window until it is closed.
// Stepping stops for good once Step returns edmd.ErrNoEvents;
// any other error ends Run.
func Run(conf *Config) error {
	// init GLFW and OpenGL
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	// create OpenGL window
	const (
		title  = "edmd"
		width  = 800
		height = 800
	)
	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return err
	}
	w.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return err
	}

	// set background color and enable alpha blending
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(1, 1, 1, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	w.SwapBuffers()

	// initialize OpenGL objects
	d, err := newDisplay(conf.MaxBodies)
	if err != nil {
		return err
	}

	home := viewport{{float32(conf.Xmin), float32(conf.Ymin)}, {float32(conf.Xmax), float32(conf.Ymax)}}
	vp := home
	focal := -1 // index of the highlighted disc
	redraw := func() {
		d.updateViewport(vp)
		d.draw(conf.Discs, focal)
		w.SwapBuffers()
	}

	// handle scrolling zoom
	w.SetScrollCallback(func(w *glfw.Window, xo, yo float64) {
		xc, yc := w.GetCursorPos()
		xs, ys := w.GetSize()
		x, y := float32(xc)/float32(xs), (float32(ys)-float32(yc))/float32(ys)
		dx, dy := vp[1].X-vp[0].X, vp[1].Y-vp[0].Y
		z := 0.05 * float32(yo)
		vp[0].X += z * -(x * dx)
		vp[0].Y += z * -(y * dy)
		vp[1].X += z * (1 - x) * dx
		vp[1].Y += z * (1 - y) * dy
		redraw()
	})

	var quit, step, done bool
	pause := conf.ForcePause
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mod glfw.ModifierKey) {
		switch {
		case key == glfw.KeyEscape && action == glfw.Press:
			quit = true
		case key == glfw.KeySpace && action == glfw.Press && !conf.ForcePause:
			pause = !pause
		case key == glfw.KeyRight && (action == glfw.Press || action == glfw.Repeat):
			if pause {
				pause = false
				step = true
			}
		case key == glfw.KeyTab && action == glfw.Press:
			// cycle through discs, then disable (focal = -1)
			if mod == glfw.ModShift {
				focal--
			} else {
				focal++
			}
			focal = (conf.MaxBodies+focal+2)%(conf.MaxBodies+1) - 1
			redraw()
		case key == glfw.KeyR && action == glfw.Press:
			vp = home
			redraw()
		}
	})

	for !(quit || w.ShouldClose()) {
		if step {
			pause = true
			step = false
			done = advance(conf.Step, done, &err)
		}
		if !pause {
			done = advance(conf.Step, done, &err)
		}
		if err != nil {
			return err
		}
		redraw()
		glfw.PollEvents()
	}
	return nil
}

// advance calls step unless the simulation is over and reports whether it is.
func advance(step func() error, done bool, err *error) bool {
	if done {
		return true
	}
	switch e := step(); {
	case errors.Is(e, edmd.ErrNoEvents):
		return true
	case e != nil:
		*err = e
	}
	return false
}

// A viewport is a rectangle delimiting the area of simulation space shown on screen.
// The first point is the bottom left corner, the second point is the top right corner.
type viewport [2]struct{ X, Y float32 }

// A vertex is what the disc program reads for each disc.
type vertex struct {
	Pos    [2]float32
	Radius float32
	Color  [4]float32
}

// display contains all the OpenGL objects required to display the simulation.
type display struct {
	max  int    // capacity of the buffer
	n    int32  // number of discs in the buffer
	vao  uint32 // vertex array object
	prog uint32
	buf  uint32
	attr struct {
		pos    uint32
		radius uint32
		color  uint32
	}
	uni struct {
		vp int32 // viewport
	}
}

// draw updates the OpenGL buffer and draws the discs on screen.
func (d *display) draw(discs func() ([]render.Disc, *edmd.Collision), focal int) {
	d.updateDiscs(discs())
	if focal >= int(d.n) {
		focal = -1
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(d.prog)
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.POINTS, 0, d.n)
	if focal >= 0 {
		// draw the focal disc again on top with its own color
		d.paint(focal, focalColor)
		gl.DrawArrays(gl.POINTS, int32(focal), 1)
	}
}

// updateViewport sends the new viewport to OpenGL.
func (d *display) updateViewport(vp viewport) {
	gl.UseProgram(d.prog)
	gl.Uniform2fv(d.uni.vp, 2, &vp[0].X)
}

// updateDiscs updates the OpenGL buffer containing the discs.
func (d *display) updateDiscs(discs []render.Disc, event *edmd.Collision) {
	if len(discs) > d.max {
		discs = discs[:d.max]
	}
	d.n = int32(len(discs))
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	const n = unsafe.Sizeof(vertex{})
	q := (uintptr)(gl.MapBuffer(gl.ARRAY_BUFFER, gl.WRITE_ONLY))
	if q != 0 {
		for i, c := range discs {
			v := vertex{
				Pos:    [2]float32{float32(c.Pos.X), float32(c.Pos.Y)},
				Radius: float32(c.Radius),
				Color:  rgba(render.Particle),
			}
			switch {
			case event != nil && event.Involves(c.ID):
				v.Color = rgba(render.Obstacle)
				v.Color[3] = 0.6
			case c.Kind == edmd.KindObstacle:
				v.Color = rgba(render.Obstacle)
			}
			*(*vertex)(unsafe.Pointer(q + uintptr(i)*n)) = v
		}
		gl.UnmapBuffer(gl.ARRAY_BUFFER)
	}
}

// paint changes the color of disc i in the buffer.
func (d *display) paint(i int, c [3]float64) {
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	color := rgba(c)
	gl.BufferSubData(gl.ARRAY_BUFFER, i*int(unsafe.Sizeof(vertex{}))+int(unsafe.Offsetof(vertex{}.Color)), int(unsafe.Sizeof(color)), gl.Ptr(&color[0]))
}

var focalColor = [3]float64{0, 0, 0}

func rgba(c [3]float64) [4]float32 {
	return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), 1}
}

// newDisplay compiles shaders and initializes a display.
func newDisplay(maxBodies int) (*display, error) {
	d := &display{max: maxBodies}

	// compile and link shaders
	var err error
	d.prog, err = makeProg([]shader{
		{"Vertex", discVert, gl.CreateShader(gl.VERTEX_SHADER)},
		{"Geometry", discGeom, gl.CreateShader(gl.GEOMETRY_SHADER)},
		{"Fragment", discFrag, gl.CreateShader(gl.FRAGMENT_SHADER)},
	})
	if err != nil {
		return nil, err
	}

	// uniform location cannot be specified in the shaders in OpenGL 3.3 core
	d.uni.vp = gl.GetUniformLocation(d.prog, gl.Str("vp\x00"))

	// attribute locations are specified in the shaders with layout(location=n)
	d.attr.pos, d.attr.radius, d.attr.color = 0, 1, 2

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	gl.BufferData(gl.ARRAY_BUFFER, maxBodies*int(unsafe.Sizeof(vertex{})), nil, gl.STREAM_DRAW)

	const n = int32(unsafe.Sizeof(vertex{}))

	gl.EnableVertexAttribArray(d.attr.pos)
	gl.VertexAttribPointer(d.attr.pos, 2, gl.FLOAT, false, n, gl.PtrOffset(int(unsafe.Offsetof(vertex{}.Pos))))

	gl.EnableVertexAttribArray(d.attr.radius)
	gl.VertexAttribPointer(d.attr.radius, 1, gl.FLOAT, false, n, gl.PtrOffset(int(unsafe.Offsetof(vertex{}.Radius))))

	gl.EnableVertexAttribArray(d.attr.color)
	gl.VertexAttribPointer(d.attr.color, 4, gl.FLOAT, false, n, gl.PtrOffset(int(unsafe.Offsetof(vertex{}.Color))))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return d, nil
}

// A shader wraps an OpenGL shader.
type shader struct {
	name   string
	src    string
	shader uint32
}

// makeProg builds OpenGL programs.
func makeProg(shaders []shader) (uint32, error) {
	var fail bool
	for _, s := range shaders {
		str, free := gl.Strs(s.src + "\x00")
		gl.ShaderSource(s.shader, 1, str, nil)
		free()
		gl.CompileShader(s.shader)
		var status int32
		gl.GetShaderiv(s.shader, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(s.shader, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n+1)
			gl.GetShaderInfoLog(s.shader, n, &n, &log[0])
			fmt.Printf("### %s shader compilation error ###\n\n%s\n\n", s.name, gl.GoStr(&log[0]))
			fail = true
			gl.DeleteShader(s.shader)
		}
	}
	if fail {
		return 0, fmt.Errorf("edmd: GLSL errors")
	}
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s.shader)
	}
	gl.LinkProgram(prog)

	return prog, nil
}
