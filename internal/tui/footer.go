package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// CompactWidth is the terminal width below which the footer drops key
// descriptions.
const CompactWidth = 60

// Footer renders context-sensitive keybinding hints.
type Footer struct {
	Width    int
	Bindings []key.Binding
}

// View renders the footer as a single line of keybinding hints.
// In compact mode (narrow terminals), shows only key hints without descriptions.
func (f Footer) View() string {
	compact := f.Width > 0 && f.Width < CompactWidth

	var parts []string
	for _, b := range f.Bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		var part string
		if compact {
			part = styleFooterKey.Render(help.Key)
		} else {
			part = styleFooterKey.Render(help.Key) + styleFooterSep.Render(":") + styleFooterDesc.Render(help.Desc)
		}
		parts = append(parts, part)
	}
	sep := styleFooterSep.Render("  ")
	if compact {
		sep = styleFooterSep.Render(" ")
	}
	line := strings.Join(parts, sep)
	if f.Width <= 0 {
		return styleFooter.Render(line)
	}
	return styleFooter.Width(f.Width).Render(line)
}

// FormFooterBindings returns footer bindings while the join form is active.
func FormFooterBindings(km KeyMap) []key.Binding {
	return []key.Binding{km.Submit, km.Focus, km.Quit}
}

// ModalFooterBindings returns footer bindings while the error modal is open.
func ModalFooterBindings(km KeyMap) []key.Binding {
	return []key.Binding{km.Dismiss, km.Quit}
}
