package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/storesight/console/internal/client/roieditor"
	"github.com/storesight/console/internal/roi"
)

func (a *app) roi(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	sub, camera, rest := args[0], args[1], args[2:]

	ed := roieditor.New(camera, a.svc.Cameras,
		roieditor.WithLogger(a.logger),
		roieditor.OnNotice(func(n roieditor.Notice) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Kind, n.Message)
		}),
	)
	if err := ed.Load(ctx); err != nil {
		return err
	}

	switch sub {
	case "show":
		a.printZones(ed)
		return nil
	case "draw":
		return a.roiDraw(ctx, ed, rest)
	case "publish":
		if err := ed.Publish(ctx); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Published %d zones as version %d\n", len(ed.Shapes()), ed.Version())
		return nil
	case "render":
		if len(rest) != 1 {
			return errUsage
		}
		return renderPNG(ed, rest[0])
	}
	return errUsage
}

func (a *app) printZones(ed *roieditor.Editor) {
	c := ed.Canvas()
	fmt.Fprintf(a.out, "version %d (%s), canvas %dx%d\n", ed.Version(), ed.Status(), c.Width, c.Height)
	for _, s := range ed.Shapes() {
		fmt.Fprintf(a.out, "  %-8s %-20s", s.Kind, s.Name)
		for _, p := range s.Points {
			fmt.Fprintf(a.out, " (%.3f,%.3f)", p.X, p.Y)
		}
		fmt.Fprintln(a.out)
	}
}

// roiDraw adds one zone by replaying pointer events, then saves.
func (a *app) roiDraw(ctx context.Context, ed *roieditor.Editor, args []string) error {
	fs := flag.NewFlagSet("roi draw", flag.ContinueOnError)
	name := fs.String("name", "", "Zone name")
	rect := fs.String("rect", "", "x1,y1,x2,y2 in canvas pixels")
	poly := fs.String("poly", "", "x,y;x,y;x,y in canvas pixels")
	publish := fs.Bool("publish", false, "Publish instead of saving a draft")
	if err := fs.Parse(args); err != nil || (*rect == "") == (*poly == "") {
		return errUsage
	}

	before := len(ed.Shapes())
	ed.SetZoneName(*name)
	if *rect != "" {
		p0, p1, err := parseRect(*rect)
		if err != nil {
			return err
		}
		if err := ed.PointerDown(p0.X, p0.Y); err != nil {
			return err
		}
		ed.PointerMove(p1.X, p1.Y)
		if !ed.PointerUp() {
			return fmt.Errorf("rectangle too small; each side must cover at least %.0f%% of the canvas", roi.MinRectSize*100)
		}
	} else {
		pts, err := parsePoly(*poly)
		if err != nil {
			return err
		}
		ed.SetMode(roi.KindPolygon)
		ed.SetZoneName(*name)
		for _, p := range pts {
			if err := ed.PointerDown(p.X, p.Y); err != nil {
				return err
			}
		}
		if !ed.FinalizePolygon() {
			return fmt.Errorf("polygon not committed")
		}
	}
	if len(ed.Shapes()) != before+1 {
		return fmt.Errorf("zone not committed")
	}

	save, verb := ed.Save, "Saved draft"
	if *publish {
		save, verb = ed.Publish, "Published"
	}
	if err := save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s with %d zones, version %d\n", verb, len(ed.Shapes()), ed.Version())
	return nil
}

func renderPNG(ed *roieditor.Editor, path string) error {
	c := ed.Canvas()
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	ed.Render(img)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
