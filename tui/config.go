package tui

const (
	defaultAssistantName = "Ayesha"
	defaultUserLabel     = "You"
	defaultTitle         = "Shopping Assistant"
	defaultPlaceholder   = "Type your message..."
	defaultEmptyHint     = "How can we help you today? Ask about orders, products, or policies."
	defaultMarkdownStyle = "auto"
	defaultCharLimit     = 2000
)

// Config holds presentation settings for the terminal UI.
type Config struct {
	AssistantName string `json:"assistant_name,omitempty"`
	UserLabel     string `json:"user_label,omitempty"`
	Title         string `json:"title,omitempty"`
	Placeholder   string `json:"placeholder,omitempty"`
	EmptyHint     string `json:"empty_hint,omitempty"`

	// MarkdownStyle is a glamour style name ("auto", "dark", "light",
	// "notty", ...). "none" renders agent replies as plain text.
	MarkdownStyle string `json:"markdown_style,omitempty"`

	CharLimit int `json:"char_limit,omitempty"`
}

// DefaultConfig returns the default presentation settings.
func DefaultConfig() Config {
	return Config{
		AssistantName: defaultAssistantName,
		UserLabel:     defaultUserLabel,
		Title:         defaultTitle,
		Placeholder:   defaultPlaceholder,
		EmptyHint:     defaultEmptyHint,
		MarkdownStyle: defaultMarkdownStyle,
		CharLimit:     defaultCharLimit,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.AssistantName != "" {
		c.AssistantName = source.AssistantName
	}
	if source.UserLabel != "" {
		c.UserLabel = source.UserLabel
	}
	if source.Title != "" {
		c.Title = source.Title
	}
	if source.Placeholder != "" {
		c.Placeholder = source.Placeholder
	}
	if source.EmptyHint != "" {
		c.EmptyHint = source.EmptyHint
	}
	if source.MarkdownStyle != "" {
		c.MarkdownStyle = source.MarkdownStyle
	}
	if source.CharLimit > 0 {
		c.CharLimit = source.CharLimit
	}
}
