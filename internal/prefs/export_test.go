package prefs

// SetDarkDetector replaces the terminal background probe
func (p *Prefs) SetDarkDetector(fn func() bool) {
	p.hasDark = fn
}
