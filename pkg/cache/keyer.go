package cache

// ScreenshotKeyOpts holds the theme settings that affect rendered pixels.
type ScreenshotKeyOpts struct {
	Background string  `json:"bg"`
	Foreground string  `json:"fg"`
	Padding    int     `json:"padding"`
	Scale      int     `json:"scale"`
	FontSize   float64 `json:"font_size"`
	FontHash   string  `json:"font_hash,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ScreenshotKey identifies the PNG rendered from text with hash
	// textHash under opts.
	ScreenshotKey(textHash string, opts ScreenshotKeyOpts) string
}

// DefaultKeyer produces "screenshot:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScreenshotKey hashes textHash together with every option, so changing
// any theme setting yields a new key.
func (DefaultKeyer) ScreenshotKey(textHash string, opts ScreenshotKeyOpts) string {
	return hashKey("screenshot", textHash, opts)
}
