package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/storesight/console/internal/client/roster"
	"github.com/storesight/console/internal/roi"
)

// parseRect reads "x1,y1,x2,y2" in canvas pixels.
func parseRect(s string) (roi.Point, roi.Point, error) {
	v, err := floats(s, ",")
	if err != nil {
		return roi.Point{}, roi.Point{}, err
	}
	if len(v) != 4 {
		return roi.Point{}, roi.Point{}, fmt.Errorf("rect needs 4 numbers, got %d", len(v))
	}
	return roi.Point{X: v[0], Y: v[1]}, roi.Point{X: v[2], Y: v[3]}, nil
}

// parsePoly reads "x,y;x,y;..." in canvas pixels.
func parsePoly(s string) ([]roi.Point, error) {
	var pts []roi.Point
	for _, pair := range strings.Split(s, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		v, err := floats(pair, ",")
		if err != nil {
			return nil, err
		}
		if len(v) != 2 {
			return nil, fmt.Errorf("bad vertex %q", pair)
		}
		pts = append(pts, roi.Point{X: v[0], Y: v[1]})
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(pts))
	}
	return pts, nil
}

func floats(s, sep string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, sep) {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// readRoster reads a CSV with a header row naming name, email and role
// columns in any order. Missing columns are left blank.
func readRoster(r io.Reader) ([]roster.Draft, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}
	col := map[string]int{"name": -1, "email": -1, "role": -1}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := col[key]; ok {
			col[key] = i
		}
	}
	if col["name"] < 0 && col["email"] < 0 {
		return nil, errors.New("header needs a name or email column")
	}

	field := func(rec []string, key string) string {
		i := col[key]
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var drafts []roster.Draft
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, roster.Draft{
			Name:  field(rec, "name"),
			Email: field(rec, "email"),
			Role:  field(rec, "role"),
		})
	}
	return drafts, nil
}
