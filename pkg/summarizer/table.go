package summarizer

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter formats a Summary as terminal tables.
type TableFormatter struct {
	translate func(string) string
}

// NewTableFormatter creates a new TableFormatter. translate may be nil.
func NewTableFormatter(translate func(string) string) *TableFormatter {
	if translate == nil {
		translate = func(s string) string { return s }
	}
	return &TableFormatter{translate: translate}
}

// Format implements Formatter.
func (f *TableFormatter) Format(s *Summary) string {
	t := f.translate

	rows := [][]string{
		{t("Type"), s.Video.MIMEType},
		{t("Preset"), fmt.Sprintf("%s (%dx%d, %d fps)", s.Video.Preset, s.Video.Width, s.Video.Height, s.Video.FPS)},
		{t("Frames"), fmt.Sprintf("%d", s.Video.FrameCount)},
		{t("Duration"), fmt.Sprintf("%d ms", s.Video.DurationMs)},
		{t("File Size"), formatBytes(s.Video.FileSize)},
	}
	if s.Video.Path != "" {
		rows = append([][]string{{t("File"), s.Video.Path}}, rows...)
	}
	if s.Quota.Limit > 0 {
		rows = append(rows, []string{t("Exports used"), fmt.Sprintf("%d / %d", s.Quota.Used, s.Quota.Limit)})
	}
	out := RenderTable([]string{t("Item"), t("Value")}, rows, nil)

	if len(s.Images) > 0 {
		images := make([][]string, len(s.Images))
		for i, img := range s.Images {
			images[i] = []string{fmt.Sprintf("%d", i+1), img.Name, img.Animation, fmt.Sprintf("%.1f s", img.Duration)}
		}
		out += "\n" + RenderTable(
			[]string{"#", t("Name"), t("Animation"), t("Duration")},
			images,
			[]text.Align{text.AlignRight, text.AlignLeft, text.AlignLeft, text.AlignRight},
		)
	}
	return out + "\n"
}

var _ Formatter = (*TableFormatter)(nil)

// RenderTable renders rows with a rounded border. Missing cells are blank;
// aligns defaults to left.
func RenderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
