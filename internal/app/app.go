// Package app wires the engine together behind the dicktaind command
// surface: one-shot CLI commands, the background daemon, and the desktop
// shell all build from the same component set, parameterized only by the
// engine configuration.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rbright/dicktaint/internal/capture"
	"github.com/rbright/dicktaint/internal/cli"
	"github.com/rbright/dicktaint/internal/cliresolver"
	"github.com/rbright/dicktaint/internal/commands"
	"github.com/rbright/dicktaint/internal/config"
	"github.com/rbright/dicktaint/internal/coordinator"
	"github.com/rbright/dicktaint/internal/device"
	"github.com/rbright/dicktaint/internal/doctor"
	"github.com/rbright/dicktaint/internal/httpboundary"
	"github.com/rbright/dicktaint/internal/hypr"
	"github.com/rbright/dicktaint/internal/indicator"
	"github.com/rbright/dicktaint/internal/ipc"
	"github.com/rbright/dicktaint/internal/logging"
	"github.com/rbright/dicktaint/internal/output"
	"github.com/rbright/dicktaint/internal/overlay"
	"github.com/rbright/dicktaint/internal/refine"
	"github.com/rbright/dicktaint/internal/settings"
	"github.com/rbright/dicktaint/internal/shell"
	"github.com/rbright/dicktaint/internal/transcribe"
	"github.com/rbright/dicktaint/internal/version"
)

// defaultTrigger is the hotkey used when settings carry none.
const defaultTrigger = "CmdOrCtrl+Shift+Space"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("dicktaind"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("dicktaind"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	cfgLoaded.Config = config.ApplyEnv(cfgLoaded.Config)
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
	}

	logRuntime, err := logging.New(cfgLoaded.Config.HomeDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, "stop")
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, "cancel")
	case cli.CommandToggle:
		return r.commandToggle(ctx, cfgLoaded.Config, logger)
	case cli.CommandDaemon:
		return r.commandDaemon(ctx, cfgLoaded.Config, logger)
	case cli.CommandDesktop:
		return r.commandDesktop(ctx, cfgLoaded.Config, logger)
	case cli.CommandOnboarding,
		cli.CommandInstallModel,
		cli.CommandDeleteModel,
		cli.CommandGetTrigger,
		cli.CommandSetTrigger,
		cli.CommandClearTrigger,
		cli.CommandFocusedInsert,
		cli.CommandInsertText,
		cli.CommandSetupPage:
		return r.commandSetup(parsed, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandSetup routes the onboarding/model/trigger surface through the same
// commands.API the desktop shell binds.
func (r Runner) commandSetup(parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	store := settings.New(cfg.HomeDir)
	inserter := output.NewFocusedInserter(cfg, logger)
	api := commands.New(cfg, logger, store, nil, inserter)

	switch parsed.Command {
	case cli.CommandOnboarding:
		payload, err := api.GetDictationOnboarding()
		if err != nil {
			return r.fail(err)
		}
		raw, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return r.fail(err)
		}
		fmt.Fprintln(r.Stdout, string(raw))
		return 0
	case cli.CommandInstallModel:
		result, err := api.InstallDictationModel(parsed.Arg)
		if err != nil {
			return r.fail(err)
		}
		fmt.Fprintf(r.Stdout, "installed %s at %s\n", result.ModelID, result.ModelPath)
		return 0
	case cli.CommandDeleteModel:
		result, err := api.DeleteDictationModel(parsed.Arg)
		if err != nil {
			return r.fail(err)
		}
		if result.SelectedModelID != "" {
			fmt.Fprintf(r.Stdout, "deleted %s; selection is now %s\n", result.DeletedID, result.SelectedModelID)
		} else {
			fmt.Fprintf(r.Stdout, "deleted %s; no model selected\n", result.DeletedID)
		}
		return 0
	case cli.CommandGetTrigger:
		trigger, err := api.GetDictationTrigger()
		if err != nil {
			return r.fail(err)
		}
		if trigger == "" {
			fmt.Fprintln(r.Stdout, "no trigger set")
		} else {
			fmt.Fprintln(r.Stdout, trigger)
		}
		return 0
	case cli.CommandSetTrigger:
		canonical, err := api.SetDictationTrigger(parsed.Arg)
		if err != nil {
			return r.fail(err)
		}
		fmt.Fprintln(r.Stdout, canonical)
		return 0
	case cli.CommandClearTrigger:
		if err := api.ClearDictationTrigger(); err != nil {
			return r.fail(err)
		}
		fmt.Fprintln(r.Stdout, "trigger cleared")
		return 0
	case cli.CommandFocusedInsert:
		enabled, err := parseOnOff(parsed.Arg)
		if err != nil {
			return r.fail(err)
		}
		if err := api.SetFocusedFieldInsertEnabled(enabled); err != nil {
			return r.fail(err)
		}
		return 0
	case cli.CommandInsertText:
		if err := api.InsertTextIntoFocusedField(parsed.Arg); err != nil {
			return r.fail(err)
		}
		return 0
	case cli.CommandSetupPage:
		if err := api.OpenWhisperSetupPage(); err != nil {
			return r.fail(err)
		}
		return 0
	}
	return 2
}

func (r Runner) fail(err error) int {
	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	return 1
}

func parseOnOff(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "enable", "enabled":
		return true, nil
	case "off", "false", "0", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", v)
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := capture.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active dicktaint session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// engineSet is the dictation component bundle every long-lived mode shares.
type engineSet struct {
	controller *coordinator.Controller
	store      *settings.Store
	inserter   *output.FocusedInserter
}

// buildEngine assembles the capture/transcribe/coordinate stack. It fails
// when the transcription CLI cannot be resolved: without it, no mode can
// produce a transcript.
func buildEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, publisher coordinator.Publisher) (engineSet, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resolved, err := cliresolver.Resolve(resolveCtx, cfg.CLI.PathOverride)
	if err != nil {
		return engineSet{}, fmt.Errorf("dictation setup incomplete: %w", err)
	}

	engine := capture.NewEngine(cfg.Capture.Input, cfg.Capture.Fallback, cfg.Capture.MicOpenTimeoutMS)
	driver := transcribe.NewDriver(resolved.Path, device.Detect().LogicalCores)
	store := settings.New(cfg.HomeDir)
	inserter := output.NewFocusedInserter(cfg, logger)

	var refiner coordinator.Refiner
	if candidate := refine.New(cfg.Refiner.Endpoint, cfg.Refiner.Model, cfg.Refiner.Instruction, cfg.Refiner.TimeoutMS, logger); candidate.Enabled() {
		refiner = candidate
	}

	ind := indicator.NewHyprNotify(cfg.Indicator, logger)

	var reader coordinator.SettingsReader = store
	if strings.TrimSpace(cfg.CLI.ModelOverride) != "" {
		reader = modelOverrideReader{store: store, path: cfg.CLI.ModelOverride}
	}

	controller := coordinator.New(logger, engine, driver, refiner, inserter, reader, ind, publisher)
	controller.IsHostForeground = hostForeground

	return engineSet{controller: controller, store: store, inserter: inserter}, nil
}

// modelOverrideReader substitutes the WHISPER_MODEL_PATH override for the
// persisted model selection while leaving every other setting untouched.
type modelOverrideReader struct {
	store *settings.Store
	path  string
}

func (m modelOverrideReader) Load() (settings.Settings, error) {
	current, err := m.store.Load()
	if err != nil {
		return settings.Settings{}, err
	}
	path := m.path
	current.SelectedModelPath = &path
	return current, nil
}

// hostForeground reports whether a dicktaint window currently has focus, so
// focused-field insertion only targets external apps.
func hostForeground() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	win, err := hypr.QueryActiveWindow(ctx)
	if err != nil {
		return false
	}
	class := strings.ToLower(win.Class)
	if class == "" {
		class = strings.ToLower(win.InitialClass)
	}
	return strings.Contains(class, "dicktaint")
}

// resolveTrigger loads the persisted trigger and parses it, falling back to
// the default binding.
func resolveTrigger(store *settings.Store) (string, error) {
	current, err := store.Load()
	if err != nil {
		return defaultTrigger, err
	}
	if current.DictationTrigger != nil && strings.TrimSpace(*current.DictationTrigger) != "" {
		return *current.DictationTrigger, nil
	}
	return defaultTrigger, nil
}

// terminalPublisher forwards state-changed events onto a channel so a
// one-shot session can wait for its cycle to finish.
type terminalPublisher struct {
	ch chan<- coordinator.StateChangedEvent
}

func (terminalPublisher) HotkeyTriggered()                 {}
func (p terminalPublisher) PillStatus(coordinator.PillStatusEvent) {}
func (p terminalPublisher) StateChanged(ev coordinator.StateChangedEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}

// commandToggle runs a one-shot dictation session when no daemon owns the
// socket, or forwards the toggle when one does.
func (r Runner) commandToggle(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, "toggle")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.Message != "" {
			fmt.Fprintln(r.Stdout, resp.Message)
		}
		return 0
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			resp, _, forwardErr := tryForward(ctx, socketPath, "toggle")
			if forwardErr != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", forwardErr)
				return 1
			}
			if resp.Message != "" {
				fmt.Fprintln(r.Stdout, resp.Message)
			}
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	events := make(chan coordinator.StateChangedEvent, 16)
	set, err := buildEngine(ctx, cfg, logger, terminalPublisher{ch: events})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if err := set.controller.StartDictation(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, "listening (run `dicktaind toggle` again to finish)")

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, set.controller)
	}()

	exitCode := 0
	transcript := ""
waitLoop:
	for {
		select {
		case <-ctx.Done():
			set.controller.Cancel(context.Background())
			break waitLoop
		case ev := <-events:
			switch ev.State {
			case coordinator.StateIdle:
				transcript = ev.Transcript
				break waitLoop
			case coordinator.StateError:
				fmt.Fprintf(r.Stderr, "error: %s\n", ev.Error)
				exitCode = 1
				break waitLoop
			}
		}
	}

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	if strings.TrimSpace(transcript) != "" {
		fmt.Fprintln(r.Stdout, strings.TrimSpace(transcript))
	}
	logger.Info("session complete", "transcript_length", len(transcript), "exit", exitCode)
	return exitCode
}

// daemonPublisher routes pill events to the overlay manager and logs state
// transitions; the daemon has no frontend event bus.
type daemonPublisher struct {
	overlays *overlay.Manager
	logger   *slog.Logger
}

func (p daemonPublisher) HotkeyTriggered() {
	if p.logger != nil {
		p.logger.Debug("hotkey triggered")
	}
}

func (p daemonPublisher) StateChanged(ev coordinator.StateChangedEvent) {
	if p.logger == nil {
		return
	}
	if ev.Error != "" {
		p.logger.Warn("dictation state", "state", ev.State, "error", ev.Error)
		return
	}
	p.logger.Info("dictation state", "state", ev.State, "transcript_length", len(ev.Transcript))
}

func (p daemonPublisher) PillStatus(ev coordinator.PillStatusEvent) {
	if p.overlays != nil {
		p.overlays.PillStatus(ev)
	}
}

// commandDaemon runs the background dictation runtime: global hotkey
// watcher, IPC command socket, boundary HTTP server, overlay records, and
// the tray affordance. The tray loop owns the calling goroutine.
func (r Runner) commandDaemon(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: a dicktaint session is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	overlays := overlay.NewManager(logger, nil, cfg.Overlay.MaxOverlays)
	if err := overlays.Refresh(ctx); err != nil {
		logger.Warn("overlay enumeration unavailable", "error", err)
	}
	defer overlays.Close()

	set, err := buildEngine(ctx, cfg, logger, daemonPublisher{overlays: overlays, logger: logger})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if serveErr := ipc.Serve(runCtx, listener, set.controller); serveErr != nil {
			logger.Error("ipc server failed", "error", serveErr.Error())
		}
	}()

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: httpboundary.New(cfg.PublicDir),
	}
	go func() {
		logger.Info("boundary http server listening", "addr", httpSrv.Addr)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("boundary http server failed", "error", serveErr.Error())
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	r.startHotkeyWatcher(runCtx, set, logger)

	store := settings.New(cfg.HomeDir)
	api := commands.New(cfg, logger, store, set.controller, set.inserter)

	tray := &shell.Tray{
		OnShow: func() {
			if openErr := api.OpenURL(fmt.Sprintf("http://%s", httpSrv.Addr)); openErr != nil {
				logger.Warn("open web ui failed", "error", openErr.Error())
			}
		},
		OnToggle: func() { set.controller.Toggle(context.Background()) },
		OnCancel: func() { set.controller.Cancel(context.Background()) },
		OnQuit:   cancel,
	}

	go func() {
		<-runCtx.Done()
		tray.Stop()
	}()

	tray.Run()
	return 0
}

// startHotkeyWatcher resolves the configured binding and runs the edge loop
// on a worker. A binding the platform cannot watch (Fn off-mac, no evdev
// access) leaves the daemon serving IPC/tray commands only.
func (r Runner) startHotkeyWatcher(ctx context.Context, set engineSet, logger *slog.Logger) {
	raw, err := resolveTrigger(set.store)
	if err != nil {
		logger.Warn("settings unreadable, using default trigger", "error", err.Error())
	}

	binding, err := coordinator.ResolveBinding(&raw, defaultTrigger)
	if err != nil {
		logger.Warn("stored trigger invalid, hotkey inactive", "trigger", raw, "error", err.Error())
		return
	}

	watcher := coordinator.NewPlatformWatcher(binding)
	go func() {
		runErr := set.controller.Run(ctx, watcher)
		if runErr == nil || errors.Is(runErr, context.Canceled) {
			return
		}
		var inactive *coordinator.HotkeyInactiveError
		if errors.As(runErr, &inactive) {
			// Already published as a state-changed error by the coordinator.
			logger.Warn("hotkey inactive", "key", inactive.Key, "platform", inactive.Platform)
			return
		}
		logger.Warn("hotkey watcher failed", "error", runErr.Error())
	}()
}

// commandDesktop runs the Wails desktop shell with the same engine the
// daemon uses, publishing through the runtime event bus instead of logs.
func (r Runner) commandDesktop(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: a dicktaint session is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	publisher := &shell.EventPublisher{}
	overlays := overlay.NewManager(logger, publisher.PillWindowFactory, cfg.Overlay.MaxOverlays)

	set, err := buildEngine(ctx, cfg, logger, fanoutPublisher{publisher, pillOnly{overlays}})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	store := settings.New(cfg.HomeDir)
	api := commands.New(cfg, logger, store, set.controller, set.inserter)

	sh := shell.New(cfg, logger, api, publisher, overlays)
	sh.OnStartup = []func(context.Context){
		func(runCtx context.Context) {
			r.startHotkeyWatcher(runCtx, set, logger)
		},
		func(runCtx context.Context) {
			if serveErr := ipc.Serve(runCtx, listener, set.controller); serveErr != nil {
				logger.Error("ipc server failed", "error", serveErr.Error())
			}
		},
	}

	if err := sh.Run(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// fanoutPublisher replicates coordinator events to every member.
type fanoutPublisher []coordinator.Publisher

func (f fanoutPublisher) HotkeyTriggered() {
	for _, p := range f {
		p.HotkeyTriggered()
	}
}

func (f fanoutPublisher) StateChanged(ev coordinator.StateChangedEvent) {
	for _, p := range f {
		p.StateChanged(ev)
	}
}

func (f fanoutPublisher) PillStatus(ev coordinator.PillStatusEvent) {
	for _, p := range f {
		p.PillStatus(ev)
	}
}

// pillOnly adapts the overlay manager (which only consumes pill events)
// into a full Publisher.
type pillOnly struct {
	overlays *overlay.Manager
}

func (pillOnly) HotkeyTriggered()                            {}
func (pillOnly) StateChanged(coordinator.StateChangedEvent)  {}
func (p pillOnly) PillStatus(ev coordinator.PillStatusEvent) { p.overlays.PillStatus(ev) }

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
