package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/skitterwm/skitter/internal/geometry"
	"github.com/skitterwm/skitter/internal/monitors"
)

// baselineDPI is the X11 reference density; outputs at this DPI run at
// 1.0 scale.
const baselineDPI = 96.0

// Enumerator queries monitor topology from RandR. It implements
// monitors.Enumerator.
type Enumerator struct {
	conn *Connection
}

// NewEnumerator initializes RandR and returns a topology enumerator.
func NewEnumerator(conn *Connection) (*Enumerator, error) {
	if err := randr.Init(conn.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	return &Enumerator{conn: conn}, nil
}

// Enumerate returns a descriptor per active CRTC. The DPI scale is
// derived from the output's physical size; work areas come from
// _NET_WORKAREA intersected with each monitor's bounds.
func (e *Enumerator) Enumerate() ([]monitors.Descriptor, error) {
	conn := e.conn.XUtil.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, e.conn.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(conn, e.conn.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	workArea := e.currentWorkArea()

	var descs []monitors.Descriptor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		bounds := geometry.Rect{
			X:      float64(crtcInfo.X),
			Y:      float64(crtcInfo.Y),
			Width:  float64(crtcInfo.Width),
			Height: float64(crtcInfo.Height),
		}

		name := fmt.Sprintf("Monitor%d", i)
		scale := geometry.Scale{X: 1, Y: 1}
		primary := false
		if outputInfo, err := randr.GetOutputInfo(conn, crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
			scale = scaleFromPhysicalSize(bounds, float64(outputInfo.MmWidth))
		}
		for _, output := range crtcInfo.Outputs {
			if output == primaryOutput {
				primary = true
				break
			}
		}

		area := bounds
		if wa, ok := intersectWorkArea(bounds, workArea); ok {
			area = wa
		}

		descs = append(descs, monitors.Descriptor{
			StableID: monitors.StableIDFor(name, bounds),
			Name:     name,
			Bounds:   bounds,
			WorkArea: area,
			Scale:    scale,
			Primary:  primary,
		})
	}

	// Without an explicit primary output, promote the first monitor so
	// tie-breaking stays deterministic.
	if len(descs) > 0 {
		hasPrimary := false
		for _, d := range descs {
			if d.Primary {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			descs[0].Primary = true
		}
	}
	return descs, nil
}

// currentWorkArea returns the work area of the current desktop, or a
// zero rect when EWMH does not provide one.
func (e *Enumerator) currentWorkArea() geometry.Rect {
	workAreas, err := ewmh.WorkareaGet(e.conn.XUtil)
	if err != nil || len(workAreas) == 0 {
		return geometry.Rect{}
	}
	idx := 0
	if current, err := ewmh.CurrentDesktopGet(e.conn.XUtil); err == nil {
		if int(current) >= 0 && int(current) < len(workAreas) {
			idx = int(current)
		}
	}
	wa := workAreas[idx]
	return geometry.Rect{
		X:      float64(wa.X),
		Y:      float64(wa.Y),
		Width:  float64(wa.Width),
		Height: float64(wa.Height),
	}
}

func intersectWorkArea(bounds, workArea geometry.Rect) (geometry.Rect, bool) {
	if workArea.Empty() {
		return geometry.Rect{}, false
	}
	isect := geometry.Intersect(bounds, workArea)
	if isect.Empty() {
		return geometry.Rect{}, false
	}
	return isect, true
}

// scaleFromPhysicalSize computes the DPI scale from the output's
// physical width. Outputs reporting no physical size (projectors,
// virtual displays) default to 1.0.
func scaleFromPhysicalSize(bounds geometry.Rect, mmWidth float64) geometry.Scale {
	if mmWidth <= 0 || bounds.Width <= 0 {
		return geometry.Scale{X: 1, Y: 1}
	}
	dpi := bounds.Width / (mmWidth / 25.4)
	scale := dpi / baselineDPI
	if scale < 0.5 {
		scale = 0.5
	}
	if scale > 4 {
		scale = 4
	}
	return geometry.Scale{X: scale, Y: scale}
}
