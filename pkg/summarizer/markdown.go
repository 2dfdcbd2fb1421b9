package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator localizes headings and labels.
func WithTranslator(translate func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = translate
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Compile Summary"))

	// Story
	fmt.Fprintf(&b, "## %s\n\n", t("Story"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Title"), escapeCell(s.Story.Title))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Scenes"), s.Story.SceneCount)
	fmt.Fprintf(&b, "| %s | %d |\n\n", t("Rendered Scenes"), renderedScenes(s.Scenes))

	// Output
	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if s.Output.Path != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("File"), escapeCell(s.Output.Path))
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Format"), s.Output.Format)
	if s.Output.MIMEType != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("MIME Type"), s.Output.MIMEType)
	}
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames"), s.Output.FrameCount)
	fmt.Fprintf(&b, "| %s | %.2f s |\n", t("Duration"), float64(s.Output.DurationMs)/1000)
	fmt.Fprintf(&b, "| %s | %s |\n", t("File Size"), formatBytes(s.Output.FileSize))
	for _, track := range s.Output.Tracks {
		fmt.Fprintf(&b, "| %s | %s %s (%d %s) |\n", t("Track"), trackKind(t, track.Kind), track.Codec, track.Samples, t("samples"))
	}
	b.WriteString("\n")

	// Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if s.Settings.Quality != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Quality"), s.Settings.Quality)
	}
	fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Video Size"), s.Settings.Width, s.Settings.Height)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frame Rate"), s.Settings.FPS)
	if s.Settings.CRF > 0 {
		fmt.Fprintf(&b, "| CRF | %d |\n", s.Settings.CRF)
	}
	if s.Settings.Bitrate > 0 {
		fmt.Fprintf(&b, "| %s | %d kbps |\n", t("Bitrate"), s.Settings.Bitrate)
	}
	if len(s.Settings.Formats) > 0 {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Format Preference"), strings.Join(s.Settings.Formats, ", "))
	}
	b.WriteString("\n")

	// Scenes
	if len(s.Scenes) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Scenes"))
		fmt.Fprintf(&b, "| # | ID | %s | %s | %s | %s | %s |\n", t("Visual"), t("Start"), t("Frames"), t("Narration"), t("Notes"))
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, sc := range s.Scenes {
			narration := t("Yes")
			if sc.Silent {
				narration = t("Silent")
			}
			notes := ""
			switch {
			case sc.Skipped:
				notes = t("Skipped") + ": " + sc.SkipReason
			case sc.AudioError != "":
				notes = sc.AudioError
			}
			start := "-"
			if !sc.Skipped {
				start = fmt.Sprintf("%.2f s", float64(sc.StartMs)/1000)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %d | %s | %s |\n",
				sc.Index+1, escapeCell(sc.ID), sc.Visual, start, sc.Frames, narration, escapeCell(notes))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "%s: %s", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		fmt.Fprintf(&b, " (storyreel %s)", f.version)
	}
	b.WriteString("\n")

	return b.String()
}

func renderedScenes(scenes []SceneInfo) int {
	n := 0
	for _, s := range scenes {
		if s.Frames > 0 {
			n++
		}
	}
	return n
}

func trackKind(t func(string) string, kind string) string {
	switch kind {
	case "vide":
		return t("Video")
	case "soun":
		return t("Audio")
	default:
		return kind
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
