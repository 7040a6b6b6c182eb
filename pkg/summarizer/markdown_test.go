package summarizer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/screenreel/pkg/mocks"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		JobID:       "8d7c",
		User:        "alice",
		Images: []ImageInfo{
			{Name: "home.png", Animation: "rise", Easing: "smooth", Duration: 5},
			{Name: "pricing.png", Animation: "s-curve-up", Easing: "linear", Duration: 2.5, Blur: true},
		},
		Video: VideoInfo{
			Path:       "out/reel.mp4",
			MIMEType:   "video/mp4;codecs=h264",
			Preset:     "high",
			Width:      2560,
			Height:     1440,
			FPS:        60,
			Bitrate:    6_400_000,
			FrameCount: 450,
			DurationMs: 7500,
			FileSize:   1024 * 1024,
		},
		Quota: QuotaInfo{Used: 3, Limit: 5},
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# Export Summary",
		"2024-01-15T10:30:00Z",
		"out/reel.mp4",
		"video/mp4;codecs=h264",
		"high (2560x1440, 60 fps)",
		"6.4 Mbps",
		"| 450 |",
		"7500 ms",
		"1.00 MB",
		"| 2 | pricing.png | s-curve-up | linear | 2.5 s | On |",
		"Exports used: 3 / 5",
		"8d7c",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_OmitsEmptySections(t *testing.T) {
	s := testSummary()
	s.Images = nil
	s.Quota = QuotaInfo{}
	s.Video.Path = ""

	result := NewMarkdownFormatter().Format(s)
	for _, absent := range []string{"## Images", "## Quota", "| File |"} {
		if strings.Contains(result, absent) {
			t.Errorf("output should not contain %q", absent)
		}
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Export Summary": "エクスポートサマリー",
			"Frames":         "フレーム数",
			"On":             "オン",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(testSummary())

	for _, want := range []string{"エクスポートサマリー", "フレーム数", "オン"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(testSummary())
	if !strings.Contains(result, "screenreel v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBitrate(t *testing.T) {
	if got := formatBitrate(3_200_000); got != "3.2 Mbps" {
		t.Errorf("got %q", got)
	}
	if got := formatBitrate(800_000); got != "800 kbps" {
		t.Errorf("got %q", got)
	}
}

func TestTableFormatter_Format(t *testing.T) {
	result := NewTableFormatter(nil).Format(testSummary())

	for _, want := range []string{"╭", "out/reel.mp4", "high (2560x1440, 60 fps)", "3 / 5", "pricing.png", "2.5 s"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected table to contain %q", want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	if RenderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}

	out := RenderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") || strings.Count(out, "\n") < 4 {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string { return "summary " + s.JobID }), fs)

	path := filepath.Join("out", "summary.md")
	if err := w.Write(path, testSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, ok := fs.GetFile(path)
	if !ok || string(data) != "summary 8d7c" {
		t.Errorf("unexpected file content %q", data)
	}
	if exists, _ := fs.Exists("out"); !exists {
		t.Error("expected directory to exist")
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }

	if err := NewWriter(NewMarkdownFormatter(), fs).Write("summary.md", testSummary()); err == nil {
		t.Error("expected error")
	}
}
