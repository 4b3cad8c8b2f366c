//go:build nogl
// +build nogl

package opengl

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/render"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	MaxBodies  int
	Step       func() error
	Discs      func() ([]render.Disc, *edmd.Collision)
	ForcePause bool

	// Bounds of default viewport.
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}

// Run returns an error explaining that OpenGL support is disabled.
func Run(conf *Config) error {
	return fmt.Errorf("%s was built without OpenGL support", os.Args[0])
}
