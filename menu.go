package main

import (
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"

	"github.com/chazu/rapidorigin/pkg/command"
)

// menuTitles maps registry menu locations to native submenu titles.
var menuTitles = map[string]string{
	command.MenuView:        "View",
	command.MenuMeshContext: "Mesh",
}

// commandResultEvent carries a CommandResult after a menu-triggered command.
const commandResultEvent = "command:result"

// buildMenu creates the native application menu. Every registry location
// becomes a submenu listing its commands.
func buildMenu(a *App, r *command.Registry) *menu.Menu {
	appMenu := menu.NewMenu()

	file := appMenu.AddSubmenu("File")
	file.AddText("Import Mesh...", keys.CmdOrCtrl("i"), func(*menu.CallbackData) {
		a.importDialog()
	})

	for _, loc := range r.Locations() {
		title, ok := menuTitles[loc]
		if !ok {
			title = loc
		}
		sub := appMenu.AddSubmenu(title)
		for _, cmd := range r.Menu(loc) {
			id := cmd.ID
			sub.AddText(cmd.Label, nil, func(*menu.CallbackData) {
				a.emit(commandResultEvent, a.RunCommand(id))
			})
		}
	}
	return appMenu
}
