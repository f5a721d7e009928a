// Package roieditor holds the state of the ROI canvas editor: committed
// zones, the zone being drawn, and the save/publish lifecycle against the
// camera's server-side configuration.
package roieditor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/storesight/console/internal/client/apiclient"
	"github.com/storesight/console/internal/roi"
	"go.uber.org/zap"
)

var (
	ErrZoneNameRequired = errors.New("enter a zone name before drawing")
	ErrSaveInFlight     = errors.New("a save is already in progress")
	ErrNoShapes         = errors.New("draw at least one zone before publishing")
)

// Store loads and saves a camera's ROI configuration.
// *services.Cameras satisfies it.
type Store interface {
	LoadROI(ctx context.Context, cameraID string) (roi.Config, error)
	SaveROI(ctx context.Context, cameraID string, req roi.SaveRequest) (roi.SaveResponse, error)
}

// Rect is the on-screen pixel rectangle the canvas occupies.
type Rect struct {
	X, Y, W, H float64
}

// Draft is the zone being drawn.
type Draft struct {
	Mode   roi.Kind
	Points []roi.Point
	Name   string
}

// Notice is a transient message for the operator.
type Notice struct {
	Kind    apiclient.Kind
	Message string
}

// Editor is one editing session for one camera. Methods are safe to call
// from multiple goroutines, though a single UI loop is the expected caller.
type Editor struct {
	mu       sync.Mutex
	cameraID string
	store    Store
	logger   *zap.Logger

	bounds    Rect
	boundsSet bool
	canvas    roi.Canvas
	shapes    []roi.Shape
	draft     Draft
	drawing   bool

	version int
	status  roi.Status
	saving  bool

	revision uint64
	changed  bool
	notices  []Notice
	onChange func(rev uint64)
	onNotice func(Notice)
}

// Option customizes an Editor.
type Option func(*Editor)

// WithCanvas sets the logical canvas size sent on save.
func WithCanvas(c roi.Canvas) Option { return func(e *Editor) { e.canvas = c } }

// WithBounds sets the on-screen pixel rectangle of the canvas.
func WithBounds(r Rect) Option {
	return func(e *Editor) { e.bounds, e.boundsSet = r, true }
}

// OnChange registers a callback run after every change to zones, draft,
// mode or zone name. The view performs a full redraw in it.
func OnChange(fn func(rev uint64)) Option { return func(e *Editor) { e.onChange = fn } }

// OnNotice registers the transient notification sink.
func OnNotice(fn func(Notice)) Option { return func(e *Editor) { e.onNotice = fn } }

func WithLogger(l *zap.Logger) Option { return func(e *Editor) { e.logger = l } }

// New creates an editor. Until bounds are given, they follow the logical
// canvas at the origin, including a canvas adopted by Load.
func New(cameraID string, store Store, opts ...Option) *Editor {
	e := &Editor{
		cameraID: cameraID,
		store:    store,
		logger:   zap.NewNop(),
		canvas:   roi.DefaultCanvas,
		draft:    Draft{Mode: roi.KindRect},
		status:   roi.StatusDraft,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.boundsSet {
		e.bounds = canvasBounds(e.canvas)
	}
	return e
}

func canvasBounds(c roi.Canvas) Rect {
	return Rect{W: float64(c.Width), H: float64(c.Height)}
}

// SetBounds updates the on-screen canvas rectangle, e.g. after a resize.
func (e *Editor) SetBounds(r Rect) {
	e.mu.Lock()
	e.bounds, e.boundsSet = r, true
	e.unlock()
}

// SetMode switches between rectangle and polygon drawing. Any draft in
// progress is dropped.
func (e *Editor) SetMode(k roi.Kind) {
	e.mu.Lock()
	e.draft.Mode = k
	e.draft.Points = nil
	e.drawing = false
	e.changedLocked()
	e.unlock()
}

// SetZoneName sets the name the next committed zone gets.
func (e *Editor) SetZoneName(name string) {
	e.mu.Lock()
	e.draft.Name = name
	e.changedLocked()
	e.unlock()
}

// PointerDown starts a rectangle or adds a polygon vertex at pixel (px,py).
func (e *Editor) PointerDown(px, py float64) error {
	e.mu.Lock()
	defer e.unlock()

	if strings.TrimSpace(e.draft.Name) == "" {
		e.noticeLocked(Notice{Kind: apiclient.KindValidation, Message: ErrZoneNameRequired.Error()})
		return ErrZoneNameRequired
	}

	p := e.normalizeLocked(px, py)
	switch e.draft.Mode {
	case roi.KindRect:
		e.draft.Points = []roi.Point{p, p}
		e.drawing = true
	case roi.KindPolygon:
		e.draft.Points = append(e.draft.Points, p)
	}
	e.changedLocked()
	return nil
}

// PointerMove resizes the rectangle preview. It does nothing outside a
// rectangle drag.
func (e *Editor) PointerMove(px, py float64) {
	e.mu.Lock()
	defer e.unlock()

	if e.draft.Mode != roi.KindRect || !e.drawing || len(e.draft.Points) != 2 {
		return
	}
	e.draft.Points[1] = e.normalizeLocked(px, py)
	e.changedLocked()
}

// PointerUp finishes a rectangle drag. It reports whether a zone was
// committed; rectangles thinner than roi.MinRectSize are discarded.
func (e *Editor) PointerUp() bool {
	e.mu.Lock()
	defer e.unlock()

	if e.draft.Mode != roi.KindRect || !e.drawing {
		return false
	}
	e.drawing = false
	pts := e.draft.Points
	e.draft.Points = nil

	if len(pts) != 2 {
		e.changedLocked()
		return false
	}
	min, max := roi.Bounds(pts[0], pts[1])
	if max.X-min.X < roi.MinRectSize || max.Y-min.Y < roi.MinRectSize {
		e.changedLocked()
		return false
	}
	e.commitLocked(roi.KindRect, []roi.Point{min, max})
	return true
}

// FinalizePolygon commits the polygon draft. With fewer than 3 points it
// does nothing and reports false.
func (e *Editor) FinalizePolygon() bool {
	e.mu.Lock()
	defer e.unlock()

	if e.draft.Mode != roi.KindPolygon || len(e.draft.Points) < 3 {
		return false
	}
	pts := e.draft.Points
	e.draft.Points = nil
	e.commitLocked(roi.KindPolygon, pts)
	return true
}

// Cancel drops the draft without committing.
func (e *Editor) Cancel() {
	e.mu.Lock()
	e.draft.Points = nil
	e.drawing = false
	e.changedLocked()
	e.unlock()
}

// Remove deletes a zone locally. Nothing is sent until the next save.
func (e *Editor) Remove(id string) bool {
	e.mu.Lock()
	defer e.unlock()
	for i, s := range e.shapes {
		if s.ID == id {
			e.shapes = append(e.shapes[:i:i], e.shapes[i+1:]...)
			e.changedLocked()
			return true
		}
	}
	return false
}

// RemoveAt deletes the topmost zone under pixel (px,py).
func (e *Editor) RemoveAt(px, py float64) (roi.Shape, bool) {
	e.mu.Lock()
	defer e.unlock()
	p := e.normalizeLocked(px, py)
	for i := len(e.shapes) - 1; i >= 0; i-- {
		if e.shapes[i].Contains(p) {
			s := e.shapes[i]
			e.shapes = append(e.shapes[:i:i], e.shapes[i+1:]...)
			e.changedLocked()
			return s, true
		}
	}
	return roi.Shape{}, false
}

// Load replaces the local state with the server's configuration. On failure
// the zone list is left empty.
func (e *Editor) Load(ctx context.Context) error {
	cfg, err := e.store.LoadROI(ctx, e.cameraID)

	e.mu.Lock()
	defer e.unlock()
	e.draft.Points = nil
	e.drawing = false
	if err != nil {
		e.shapes = nil
		e.changedLocked()
		e.logger.Warn("load roi failed", zap.String("camera_id", e.cameraID), zap.Error(err))
		e.noticeLocked(Notice{Kind: apiclient.KindOf(err), Message: "Could not load zones"})
		return fmt.Errorf("load roi: %w", err)
	}
	e.shapes = append([]roi.Shape(nil), cfg.Zones...)
	e.version = cfg.Version
	if cfg.Status != "" {
		e.status = cfg.Status
	}
	if cfg.Canvas.Width > 0 && cfg.Canvas.Height > 0 {
		e.canvas = cfg.Canvas
		if !e.boundsSet {
			e.bounds = canvasBounds(e.canvas)
		}
	}
	e.changedLocked()
	return nil
}

// Save stores the zones as a draft.
func (e *Editor) Save(ctx context.Context) error {
	return e.save(ctx, roi.StatusDraft)
}

// Publish stores the zones and marks them live.
func (e *Editor) Publish(ctx context.Context) error {
	return e.save(ctx, roi.StatusPublished)
}

func (e *Editor) save(ctx context.Context, status roi.Status) error {
	e.mu.Lock()
	if e.saving {
		e.unlock()
		return ErrSaveInFlight
	}
	if status == roi.StatusPublished && len(e.shapes) == 0 {
		e.unlock()
		return ErrNoShapes
	}
	req := roi.SaveRequest{
		Version: e.version,
		Zones:   append([]roi.Shape(nil), e.shapes...),
		Canvas:  e.canvas,
		Status:  status,
	}
	e.saving = true
	e.unlock()

	resp, err := e.store.SaveROI(ctx, e.cameraID, req)

	e.mu.Lock()
	defer e.unlock()
	e.saving = false
	if err != nil {
		msg := "Could not save zones"
		if apiclient.CodeOf(err) == apiclient.CodeVersionConflict {
			msg = "Zones were changed elsewhere; reload before saving"
		}
		e.logger.Warn("save roi failed", zap.String("camera_id", e.cameraID), zap.Error(err))
		e.noticeLocked(Notice{Kind: apiclient.KindOf(err), Message: msg})
		return fmt.Errorf("save roi: %w", err)
	}
	e.version = resp.Version
	e.status = resp.Status
	return nil
}

// CanSave reports whether the save action is enabled.
func (e *Editor) CanSave() bool {
	e.mu.Lock()
	defer e.unlock()
	return !e.saving
}

// CanPublish reports whether the publish action is enabled.
func (e *Editor) CanPublish() bool {
	e.mu.Lock()
	defer e.unlock()
	return !e.saving && len(e.shapes) > 0
}

// Shapes returns a copy of the committed zones.
func (e *Editor) Shapes() []roi.Shape {
	e.mu.Lock()
	defer e.unlock()
	return append([]roi.Shape(nil), e.shapes...)
}

// Draft returns a copy of the zone being drawn.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.unlock()
	d := e.draft
	d.Points = append([]roi.Point(nil), e.draft.Points...)
	return d
}

// Version is the last version acknowledged by the server.
func (e *Editor) Version() int {
	e.mu.Lock()
	defer e.unlock()
	return e.version
}

func (e *Editor) Status() roi.Status {
	e.mu.Lock()
	defer e.unlock()
	return e.status
}

func (e *Editor) Canvas() roi.Canvas {
	e.mu.Lock()
	defer e.unlock()
	return e.canvas
}

// Revision increases on every visible change.
func (e *Editor) Revision() uint64 {
	e.mu.Lock()
	defer e.unlock()
	return e.revision
}

func (e *Editor) normalizeLocked(px, py float64) roi.Point {
	b := e.bounds
	return roi.Normalize(px, py, b.X, b.Y, b.W, b.H)
}

func (e *Editor) commitLocked(kind roi.Kind, pts []roi.Point) {
	name := strings.TrimSpace(e.draft.Name)
	e.shapes = append(e.shapes, roi.NewShape(name, kind, pts))
	e.draft.Name = ""
	e.changedLocked()
}

// changedLocked bumps the revision. The view is notified once the lock is
// released, so callbacks may read the editor.
func (e *Editor) changedLocked() {
	e.revision++
	e.changed = true
}

func (e *Editor) noticeLocked(n Notice) {
	e.notices = append(e.notices, n)
}

// unlock releases the mutex and then runs the pending callbacks.
func (e *Editor) unlock() {
	rev, changed, notices := e.revision, e.changed, e.notices
	e.changed, e.notices = false, nil
	onChange, onNotice := e.onChange, e.onNotice
	e.mu.Unlock()

	if changed && onChange != nil {
		onChange(rev)
	}
	if onNotice != nil {
		for _, n := range notices {
			onNotice(n)
		}
	}
}
