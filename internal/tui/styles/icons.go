package styles

const (
	// General icons
	CheckIcon   string = "✓"
	ErrorIcon   string = "✗"
	WarningIcon string = "⚠"
	InfoIcon    string = "ℹ"

	// Chart glyphs
	BarFull  string = "█"
	BarEmpty string = "░"
	Bullet   string = "●"

	// Job icons
	RunningIcon string = "▶"
	StoppedIcon string = "■"
	FolderIcon  string = "📁"
	FileIcon    string = "📄"
)
