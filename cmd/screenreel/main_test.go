package main

import (
	"errors"
	"flag"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/screenreel/pkg/mocks"
	"github.com/user/screenreel/pkg/pipeline"
)

func renderContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.Float64("duration", 0, "")
	set.String("animation", "", "")
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(&cli.App{}, set, nil)
}

func imageFS() *mocks.FileSystem {
	fs := mocks.NewFileSystem()
	fs.ReadFileFunc = func(path string) ([]byte, error) { return []byte(path), nil }
	return fs
}

func TestAppendImages_FitsTimeline(t *testing.T) {
	c := renderContext(t, "--duration", "8", "--animation", "reveal-up", "a.png", "b.png", "c.png", "d.png")

	units, err := appendImages(c, imageFS(), nil)
	if err != nil {
		t.Fatalf("appendImages failed: %v", err)
	}

	want := []float64{8, 8, 8, 6}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d", len(want), len(units))
	}
	for i, u := range units {
		if u.Settings.Duration != want[i] {
			t.Errorf("image %d: duration %v, want %v", i+1, u.Settings.Duration, want[i])
		}
		if u.Settings.Type != pipeline.AnimationRevealUp {
			t.Errorf("image %d: animation flag not applied", i+1)
		}
	}
	if err := pipeline.ValidateUnits(units); err != nil {
		t.Errorf("fitted units should validate: %v", err)
	}
}

func TestAppendImages_AfterJobFileImages(t *testing.T) {
	s := pipeline.DefaultAnimationSettings()
	s.Duration = 10
	job := []pipeline.ImageUnit{{Name: "a", Settings: s}, {Name: "b", Settings: s}}

	units, err := appendImages(renderContext(t, "c.png"), imageFS(), job)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 3 || units[2].Settings.Duration != 5 || units[2].Name != "c.png" {
		t.Errorf("unexpected units %+v", units)
	}

	_, err = appendImages(renderContext(t, "c.png", "d.png", "e.png"), imageFS(), job)
	if !errors.Is(err, pipeline.ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration once the timeline is full, got %v", err)
	}
}
