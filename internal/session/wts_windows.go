//go:build windows

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	wtsapi32 = windows.NewLazySystemDLL("wtsapi32.dll")

	procRegisterClassExW   = user32.NewProc("RegisterClassExW")
	procCreateWindowExW    = user32.NewProc("CreateWindowExW")
	procDestroyWindow      = user32.NewProc("DestroyWindow")
	procDefWindowProcW     = user32.NewProc("DefWindowProcW")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procPostMessageW       = user32.NewProc("PostMessageW")
	procPostQuitMessage    = user32.NewProc("PostQuitMessage")
	procWTSRegisterNotif   = wtsapi32.NewProc("WTSRegisterSessionNotification")
	procWTSUnRegisterNotif = wtsapi32.NewProc("WTSUnRegisterSessionNotification")
)

const (
	wmDestroy          = 0x0002
	wmClose            = 0x0010
	wmWTSSessionChange = 0x02B1

	notifyForThisSession = 0

	wtsWindowClass = "PauseOnLockSessionWindow"
)

var ErrWindowCreate = errors.New("failed to create session notification window")

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type winMsg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// The window class and its procedure are process-wide; windows are routed
// back to their subscription through this table.
var (
	classOnce sync.Once
	classErr  error
	instance  windows.Handle

	windowsMu sync.Mutex
	windowSub = map[windows.HWND]*wtsSubscription{}
)

// WTSSource receives WM_WTSSESSION_CHANGE through a hidden window registered
// with WTSRegisterSessionNotification.
type WTSSource struct {
	logger *slog.Logger
}

// NewWTSSource creates a Windows session notification source
func NewWTSSource(logger *slog.Logger) *WTSSource {
	return &WTSSource{
		logger: logger.With("component", "session-wts"),
	}
}

// Name returns the source kind
func (s *WTSSource) Name() string {
	return KindWTS
}

// Subscribe creates the notification window on a dedicated OS thread and
// runs its message loop there. Handlers are called from that thread.
func (s *WTSSource) Subscribe(handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	sub := &wtsSubscription{
		handler: handler,
		logger:  s.logger,
		ready:   make(chan error, 1),
		done:    make(chan struct{}),
	}
	go sub.run()

	if err := <-sub.ready; err != nil {
		<-sub.done
		return nil, err
	}

	s.logger.Info("subscribed to session notifications")
	return sub, nil
}

type wtsSubscription struct {
	handler Handler
	logger  *slog.Logger
	hwnd    windows.HWND
	closed  atomic.Bool
	once    sync.Once
	ready   chan error
	done    chan struct{}
}

func (sub *wtsSubscription) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(sub.done)

	hwnd, err := createNotificationWindow()
	if err != nil {
		sub.ready <- err
		return
	}
	sub.hwnd = hwnd

	windowsMu.Lock()
	windowSub[hwnd] = sub
	windowsMu.Unlock()

	r, _, callErr := procWTSRegisterNotif.Call(uintptr(hwnd), notifyForThisSession)
	if r == 0 {
		windowsMu.Lock()
		delete(windowSub, hwnd)
		windowsMu.Unlock()
		procDestroyWindow.Call(uintptr(hwnd))
		sub.ready <- fmt.Errorf("WTSRegisterSessionNotification failed: %w", callErr)
		return
	}

	sub.ready <- nil

	var m winMsg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (sub *wtsSubscription) deliver(reason Reason, sessionID uint32) {
	if sub.closed.Load() {
		return
	}
	sub.logger.Debug("session change received", "reason", reason.String(), "session_id", sessionID)
	sub.handler(Event{
		Reason:    reason,
		SessionID: sessionID,
		Source:    KindWTS,
		At:        time.Now(),
	})
}

// Unsubscribe closes the window, which unregisters the notification and ends
// the message loop, then waits for the loop thread to exit.
func (sub *wtsSubscription) Unsubscribe() error {
	var err error
	sub.once.Do(func() {
		sub.closed.Store(true)
		r, _, callErr := procPostMessageW.Call(uintptr(sub.hwnd), wmClose, 0, 0)
		if r == 0 {
			err = fmt.Errorf("failed to post close message: %w", callErr)
			return
		}
		<-sub.done
	})
	return err
}

func createNotificationWindow() (windows.HWND, error) {
	classOnce.Do(registerWindowClass)
	if classErr != nil {
		return 0, classErr
	}

	className, err := windows.UTF16PtrFromString(wtsWindowClass)
	if err != nil {
		return 0, err
	}

	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(className)),
		0,
		0, 0, 0, 0,
		0,
		0,
		uintptr(instance),
		0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: %v", ErrWindowCreate, callErr)
	}
	return windows.HWND(hwnd), nil
}

func registerWindowClass() {
	if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
		classErr = fmt.Errorf("GetModuleHandleEx failed: %w", err)
		return
	}

	className, err := windows.UTF16PtrFromString(wtsWindowClass)
	if err != nil {
		classErr = err
		return
	}

	wc := wndClassEx{
		WndProc:   windows.NewCallback(wndProc),
		Instance:  instance,
		ClassName: className,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))

	if r, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		classErr = fmt.Errorf("RegisterClassExW failed: %w", callErr)
	}
}

func wndProc(hwnd windows.HWND, msg uint32, wparam, lparam uintptr) uintptr {
	switch msg {
	case wmWTSSessionChange:
		windowsMu.Lock()
		sub := windowSub[hwnd]
		windowsMu.Unlock()
		if sub != nil {
			sub.deliver(Reason(wparam), uint32(lparam))
		}
		return 0
	case wmClose:
		procWTSUnRegisterNotif.Call(uintptr(hwnd))
		procDestroyWindow.Call(uintptr(hwnd))
		return 0
	case wmDestroy:
		windowsMu.Lock()
		delete(windowSub, hwnd)
		windowsMu.Unlock()
		procPostQuitMessage.Call(0)
		return 0
	}

	r, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}

// Ensure WTSSource implements Source
var _ Source = (*WTSSource)(nil)
