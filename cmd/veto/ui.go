package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"veto/internal/core/autoclicker"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type vetoTheme struct {
	base fyne.Theme
}

func newVetoTheme() fyne.Theme {
	return &vetoTheme{base: theme.DarkTheme()}
}

func (t *vetoTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x0e, G: 0x0f, B: 0x13, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x14, G: 0x15, B: 0x1b, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x1f, G: 0x21, B: 0x2a, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.NRGBA{R: 0x17, G: 0x18, B: 0x1f, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x15, G: 0x16, B: 0x1d, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x2e, G: 0x31, B: 0x3d, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0x8c, G: 0x7c, B: 0xff, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0x9d, G: 0x90, B: 0xff, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0x9d, G: 0x90, B: 0xff, A: 0x22}
	case theme.ColorNamePressed:
		return color.NRGBA{R: 0x9d, G: 0x90, B: 0xff, A: 0x40}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x8c, G: 0x7c, B: 0xff, A: 0x44}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xf2, G: 0xf3, B: 0xf7, A: 0xff}
	case theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xa6, G: 0xaa, B: 0xba, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	case theme.ColorNameWarning:
		return color.NRGBA{R: 0xff, G: 0x9f, B: 0x5a, A: 0xff}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x7f, G: 0xd4, B: 0xa8, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *vetoTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *vetoTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *vetoTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 8
	case theme.SizeNameInputRadius:
		return 8
	}
	return t.base.Size(name)
}

const capturePrompt = "Press a key..."

func stateImportance(state autoclicker.State) widget.Importance {
	switch state {
	case autoclicker.StateArmed:
		return widget.WarningImportance
	case autoclicker.StateClicking, autoclicker.StateActive:
		return widget.SuccessImportance
	default:
		return widget.LowImportance
	}
}

// macroCard holds the widgets of one macro. Every method runs on the UI
// goroutine.
type macroCard struct {
	id      autoclicker.MacroID
	title   string
	enabled *widget.Check
	hotkey  *widget.Button
	clear   *widget.Button
	state   *widget.Label

	capturing bool
	syncing   bool
}

func newMacroCard(id autoclicker.MacroID, title string) *macroCard {
	state := widget.NewLabel(autoclicker.StateOff.String())
	state.TextStyle = fyne.TextStyle{Bold: true}
	state.Alignment = fyne.TextAlignTrailing
	hotkey := widget.NewButton("-", nil)
	hotkey.Importance = widget.MediumImportance
	return &macroCard{
		id:      id,
		title:   title,
		enabled: widget.NewCheck("Enabled", nil),
		hotkey:  hotkey,
		clear:   widget.NewButtonWithIcon("", theme.ContentClearIcon(), nil),
		state:   state,
	}
}

func (c *macroCard) apply(status autoclicker.Status) {
	c.capturing = status.Capturing

	c.syncing = true
	c.enabled.SetChecked(status.Enabled)
	c.syncing = false

	if status.Capturing {
		c.hotkey.SetText(capturePrompt)
		c.hotkey.Importance = widget.HighImportance
	} else {
		c.hotkey.SetText(status.Hotkey.String())
		c.hotkey.Importance = widget.MediumImportance
	}
	c.hotkey.Refresh()

	c.state.SetText(status.State.String())
	c.state.Importance = stateImportance(status.State)
	c.state.Refresh()
}

func (c *macroCard) bind(controller *autoclicker.Controller, reportErr func(error)) {
	c.enabled.OnChanged = func(on bool) {
		if c.syncing {
			return
		}
		if err := controller.SetEnabled(c.id, on); err != nil {
			reportErr(err)
		}
	}
	c.hotkey.OnTapped = func() {
		if c.capturing {
			controller.CancelCapture()
			return
		}
		if err := controller.CaptureHotkey(c.id); err != nil {
			reportErr(err)
		}
	}
	c.clear.OnTapped = func() {
		if err := controller.SetHotkey(c.id, autoclicker.Binding{}); err != nil {
			reportErr(err)
		}
	}
}

func (c *macroCard) content(extra ...fyne.CanvasObject) fyne.CanvasObject {
	stateTitle := widget.NewLabel("State")
	rows := []fyne.CanvasObject{
		c.enabled,
		container.NewBorder(nil, nil, nil, c.clear, c.hotkey),
		container.NewBorder(nil, nil, stateTitle, c.state, nil),
	}
	rows = append(rows, extra...)
	return widget.NewCard(c.title, "", container.NewVBox(rows...))
}

// uiObserver renders controller updates. The controller delivers them
// through its task queue, which the UI drains with fyne.Do.
type uiObserver struct {
	cards map[autoclicker.MacroID]*macroCard
	cps   *widget.Label
}

func (o *uiObserver) MacroChanged(status autoclicker.Status) {
	if card := o.cards[status.Macro]; card != nil {
		card.apply(status)
	}
}

func (o *uiObserver) RateSampled(macro autoclicker.MacroID, cps float64) {
	if cps <= 0 {
		o.cps.SetText(fmt.Sprintf("Current CPS: held (%s)", macro))
		return
	}
	o.cps.SetText(fmt.Sprintf("Current CPS: %.2f (%s)", cps, macro))
}

func runUI(cfg config) error {
	fApp := app.New()
	fApp.Settings().SetTheme(newVetoTheme())

	window := fApp.NewWindow("Veto")
	window.Resize(fyne.NewSize(820, 520))
	window.SetFixedSize(true)
	window.CenterOnScreen()

	errorText := canvas.NewText("", nil)
	errorText.Color = theme.Color(theme.ColorNameError)
	currentCPSText := widget.NewLabel("Current CPS: -")
	currentCPSText.TextStyle = fyne.TextStyle{Bold: true}
	logGrid := widget.NewTextGrid()
	logGrid.SetText("")
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 150))

	const maxUILogLines = 50
	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}
	reportErr := func(err error) {
		errorText.Text = err.Error()
		errorText.Refresh()
		appendLogLine("ERROR " + err.Error())
	}

	leftCard := newMacroCard(autoclicker.MacroLeft, "Left Click")
	rightCard := newMacroCard(autoclicker.MacroRight, "Right Click")
	holdCard := newMacroCard(autoclicker.MacroHold, "Hold")
	observer := &uiObserver{
		cards: map[autoclicker.MacroID]*macroCard{
			autoclicker.MacroLeft:  leftCard,
			autoclicker.MacroRight: rightCard,
			autoclicker.MacroHold:  holdCard,
		},
		cps: currentCPSText,
	}

	logger := newSlogLogger(cfg.logLevel, appendLogLine)
	sess, err := startSession(cfg, observer, logger)
	if err != nil {
		return err
	}
	controller := sess.controller

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go controller.Tasks().Run(ctx, fyne.Do)

	for _, card := range []*macroCard{leftCard, rightCard, holdCard} {
		card.bind(controller, reportErr)
	}

	minSlider := widget.NewSlider(autoclicker.MinCPS, autoclicker.MaxCPS)
	minSlider.Step = 1
	maxSlider := widget.NewSlider(autoclicker.MinCPS, autoclicker.MaxCPS)
	maxSlider.Step = 1
	randomizeCheck := widget.NewCheck("Randomize", nil)

	minValue := widget.NewLabel("")
	maxValue := widget.NewLabel("")
	minValue.Alignment = fyne.TextAlignTrailing
	maxValue.Alignment = fyne.TextAlignTrailing
	minValue.TextStyle = fyne.TextStyle{Bold: true}
	maxValue.TextStyle = fyne.TextStyle{Bold: true}

	syncingRate := false
	applyRate := func(r autoclicker.Rate) {
		syncingRate = true
		minSlider.SetValue(r.Min)
		maxSlider.SetValue(r.Max)
		randomizeCheck.SetChecked(r.Randomize)
		syncingRate = false
		minValue.SetText(fmt.Sprintf("%.0f", r.Min))
		maxValue.SetText(fmt.Sprintf("%.0f", r.Max))
	}
	applyRate(controller.Rate())

	minSlider.OnChanged = func(v float64) {
		if syncingRate {
			return
		}
		applyRate(controller.SetMinCPS(v))
	}
	maxSlider.OnChanged = func(v float64) {
		if syncingRate {
			return
		}
		applyRate(controller.SetMaxCPS(v))
	}
	randomizeCheck.OnChanged = func(on bool) {
		if syncingRate {
			return
		}
		applyRate(controller.SetRandomize(on))
	}

	snap := controller.Snapshot()
	modeRadio := widget.NewRadioGroup([]string{string(autoclicker.HoldSingle), string(autoclicker.HoldBreak)}, nil)
	modeRadio.Horizontal = true
	modeRadio.Required = true
	modeRadio.SetSelected(string(snap.Hold.Mode))
	modeRadio.OnChanged = func(value string) {
		mode, err := autoclicker.ParseHoldMode(value)
		if err != nil {
			return
		}
		if err := controller.SetHoldMode(mode); err != nil {
			reportErr(err)
		}
	}

	holdSlider := widget.NewSlider(autoclicker.MinCPS, autoclicker.MaxHoldCPS)
	holdSlider.Step = 1
	holdSlider.SetValue(snap.Hold.CPS)
	holdValue := widget.NewLabel(fmt.Sprintf("%.0f", snap.Hold.CPS))
	holdValue.Alignment = fyne.TextAlignTrailing
	holdValue.TextStyle = fyne.TextStyle{Bold: true}
	holdSlider.OnChanged = func(v float64) {
		holdValue.SetText(fmt.Sprintf("%.0f", controller.SetHoldCPS(v)))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			cancel()
			sess.Stop()
		})
	}

	quit := func() {
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	}

	go func() {
		<-sigCh
		fyne.Do(quit)
	}()

	// Some GUI backends can leave Ctrl+C as raw ETX byte instead of SIGINT.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && buf[0] == 3 {
				fyne.Do(quit)
				return
			}
		}
	}()

	window.SetCloseIntercept(quit)

	titleText := canvas.NewText("VETO", color.NRGBA{R: 0x9d, G: 0x90, B: 0xff, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 30

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0x8c, G: 0x7c, B: 0xff, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	newSliderControl := func(label string, value *widget.Label, slider *widget.Slider) fyne.CanvasObject {
		title := widget.NewLabel(label)
		title.TextStyle = fyne.TextStyle{Bold: true}
		head := container.NewBorder(nil, nil, title, value, nil)
		return container.NewVBox(head, slider)
	}

	rateControls := container.NewGridWithColumns(2,
		newSliderControl("Min CPS", minValue, minSlider),
		newSliderControl("Max CPS", maxValue, maxSlider),
	)
	rateCard := widget.NewCard("Click Rate", "", container.NewVBox(
		rateControls,
		container.NewBorder(nil, nil, randomizeCheck, currentCPSText, nil),
	))

	macroRow := container.NewGridWithColumns(3,
		leftCard.content(),
		rightCard.content(),
		holdCard.content(
			modeRadio,
			newSliderControl("Hold CPS", holdValue, holdSlider),
		),
	)

	mainContent := container.NewVBox(
		titleText,
		accentLine,
		rateCard,
		macroRow,
		errorText,
	)
	mainPanel := container.NewPadded(mainContent)

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.72)
		rootContent = split
	}

	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}
