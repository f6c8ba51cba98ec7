package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/ui/theme"
)

const bannerArt = `
  ██████╗██████╗ ██╗████████╗██████╗ ███████╗███████╗
 ██╔════╝██╔══██╗██║╚══██╔══╝██╔══██╗██╔════╝██╔════╝
 ██║     ██████╔╝██║   ██║   ██████╔╝█████╗  █████╗
 ██║     ██╔══██╗██║   ██║   ██╔══██╗██╔══╝  ██╔══╝
 ╚██████╗██║  ██║██║   ██║   ██║  ██║███████╗███████╗
  ╚═════╝╚═╝  ╚═╝╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝`

const bannerCompact = "C R I T R E E"

// BannerWidth is the column count the full banner needs.
const BannerWidth = 54

// RenderBanner returns the CRITREE banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < BannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
