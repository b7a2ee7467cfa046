package tui

import "charm.land/bubbles/v2/key"

// keyMap holds every binding; viewHelp picks the subset shown for the active view.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	nextView   key.Binding
	prevView   key.Binding
	jumpView   key.Binding

	moveUp    key.Binding
	moveDown  key.Binding
	moveLeft  key.Binding
	moveRight key.Binding

	newItem      key.Binding
	editItem     key.Binding
	deleteItem   key.Binding
	openDetail   key.Binding
	filter       key.Binding
	clearFilters key.Binding
	prevPage     key.Binding
	nextPage     key.Binding
	cycleStatus  key.Binding
	nextSteps    key.Binding
	copyItem     key.Binding

	grab   key.Binding
	drop   key.Binding
	cancel key.Binding

	prevMonth key.Binding
	nextMonth key.Binding
	today     key.Binding

	export key.Binding

	nextField key.Binding
	prevField key.Binding
	submit    key.Binding

	confirmYes key.Binding
	confirmNo  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		nextView:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevView:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		jumpView:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "jump to view")),

		moveUp:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		moveLeft:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		moveRight: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),

		newItem:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		editItem:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		deleteItem:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		openDetail:   key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "details")),
		filter:       key.NewBinding(key.WithKeys("f", "/"), key.WithHelp("f", "filter")),
		clearFilters: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		prevPage:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous page")),
		nextPage:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		cycleStatus:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),
		nextSteps:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate next steps")),
		copyItem:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),

		grab:   key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "lift/drop card")),
		drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop card")),
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		prevMonth: key.NewBinding(key.WithKeys("[", "<"), key.WithHelp("[", "previous month")),
		nextMonth: key.NewBinding(key.WithKeys("]", ">"), key.WithHelp("]", "next month")),
		today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),

		export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),

		nextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),

		confirmYes: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		confirmNo:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	}
}

// viewHelp adapts keyMap to help.KeyMap for one view and input mode.
type viewHelp struct {
	keys keyMap
	view viewID
	mode inputMode
}

func (h viewHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch h.mode {
	case modeForm:
		return []key.Binding{k.nextField, k.prevField, k.submit, k.cancel}
	case modeConfirm:
		return []key.Binding{k.confirmYes, k.confirmNo}
	case modeDetail:
		return []key.Binding{k.cancel, k.copyItem, k.quit}
	}
	switch h.view {
	case viewTasks:
		return []key.Binding{k.newItem, k.editItem, k.cycleStatus, k.filter, k.prevPage, k.nextPage, k.nextView, k.quit}
	case viewAppointments:
		return []key.Binding{k.newItem, k.editItem, k.nextSteps, k.filter, k.prevPage, k.nextPage, k.nextView, k.quit}
	case viewKanban:
		return []key.Binding{k.moveLeft, k.moveRight, k.grab, k.drop, k.cancel, k.nextView, k.quit}
	case viewCalendar:
		return []key.Binding{k.prevMonth, k.nextMonth, k.today, k.openDetail, k.nextView, k.quit}
	case viewHistory:
		return []key.Binding{k.filter, k.clearFilters, k.export, k.nextView, k.quit}
	default:
		return []key.Binding{k.reload, k.jumpView, k.nextView, k.toggleHelp, k.quit}
	}
}

func (h viewHelp) FullHelp() [][]key.Binding {
	k := h.keys
	return [][]key.Binding{
		{k.nextView, k.prevView, k.jumpView, k.reload, k.toggleHelp, k.quit},
		{k.moveUp, k.moveDown, k.moveLeft, k.moveRight, k.openDetail, k.cancel},
		{k.newItem, k.editItem, k.deleteItem, k.cycleStatus, k.nextSteps, k.copyItem},
		{k.filter, k.clearFilters, k.prevPage, k.nextPage, k.export},
		{k.grab, k.drop, k.prevMonth, k.nextMonth, k.today},
	}
}
