// Package chrome styles the native window around the webview.
package chrome

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var log = logging.Logger("app")

// RGBA is a window background colour.
type RGBA struct {
	R, G, B, A uint8
}

// DarkGrey is the default window background.
var DarkGrey = RGBA{R: 51, G: 51, B: 51, A: 255}

// Options describe the window's look.
type Options struct {
	Title      string
	Width      int
	Height     int
	Resizable  bool
	Borderless bool
	Background RGBA
}

// Chrome changes window styling after the window exists.
type Chrome interface {
	StyleWindow(o Options)
	SetTitles(title string)
}

// Apply configures a Wails application before the window is created. Some
// properties (frameless, title bar style) can only be set here.
func Apply(app *options.App, o Options) {
	app.Title = o.Title
	app.Width = o.Width
	app.Height = o.Height
	app.DisableResize = !o.Resizable
	app.Frameless = o.Borderless
	app.BackgroundColour = &options.RGBA{R: o.Background.R, G: o.Background.G, B: o.Background.B, A: o.Background.A}
	app.Menu = AppMenu(o.Title)

	if app.Mac == nil {
		app.Mac = &mac.Options{}
	}
	if o.Borderless {
		app.Mac.TitleBar = mac.TitleBarHiddenInset()
	} else {
		app.Mac.TitleBar = mac.TitleBarDefault()
	}
	app.Mac.About = &mac.AboutInfo{Title: o.Title}
}

// AppMenu builds the application menu bar with title as the app menu label.
func AppMenu(title string) *menu.Menu {
	m := menu.NewMenu()
	m.Append(menu.AppMenu())
	m.Append(menu.EditMenu())
	app := m.AddSubmenu(title)
	app.AddText("About "+title, nil, nil)
	return m
}

// Runtime implements Chrome through the Wails runtime of a running app.
type Runtime struct {
	ctx context.Context
}

// NewRuntime binds to the context Wails passes to OnStartup.
func NewRuntime(ctx context.Context) *Runtime {
	return &Runtime{ctx: ctx}
}

func (r *Runtime) StyleWindow(o Options) {
	if o.Width > 0 && o.Height > 0 {
		runtime.WindowSetSize(r.ctx, o.Width, o.Height)
		if !o.Resizable {
			runtime.WindowSetMinSize(r.ctx, o.Width, o.Height)
			runtime.WindowSetMaxSize(r.ctx, o.Width, o.Height)
		}
	}
	bg := o.Background
	runtime.WindowSetBackgroundColour(r.ctx, bg.R, bg.G, bg.B, bg.A)
	log.Debugf("window styled %dx%d resizable=%v", o.Width, o.Height, o.Resizable)
}

func (r *Runtime) SetTitles(title string) {
	runtime.WindowSetTitle(r.ctx, title)
	runtime.MenuSetApplicationMenu(r.ctx, AppMenu(title))
	runtime.MenuUpdateApplicationMenu(r.ctx)
}
