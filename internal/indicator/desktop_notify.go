package indicator

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface  = "org.freedesktop.Notifications"
	notifyMethod = notifyIface + ".Notify"
	closeMethod  = notifyIface + ".CloseNotification"
)

var (
	sessionBusMu sync.Mutex
	sessionBus   *dbus.Conn
)

// notifyConn returns a shared session-bus connection, dialing on first use.
func notifyConn() (*dbus.Conn, error) {
	sessionBusMu.Lock()
	defer sessionBusMu.Unlock()

	if sessionBus != nil {
		return sessionBus, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	sessionBus = conn
	return conn, nil
}

// desktopNotify sends a freedesktop notification over the session bus and
// returns the notification ID assigned by the server. Passing a previous ID
// as replaceID updates that notification in place.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	conn, err := notifyConn()
	if err != nil {
		return 0, err
	}

	obj := conn.Object(notifyDest, notifyPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		appName,
		replaceID,
		"",      // app icon
		summary,
		"",      // body
		[]string{},
		map[string]dbus.Variant{},
		int32(timeoutMS),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("desktop notify failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("desktop notify invalid response: %w", err)
	}
	return id, nil
}

// desktopDismiss requests explicit close by notification ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	conn, err := notifyConn()
	if err != nil {
		return err
	}

	obj := conn.Object(notifyDest, notifyPath)
	if call := obj.CallWithContext(ctx, closeMethod, 0, id); call.Err != nil {
		return fmt.Errorf("desktop dismiss failed: %w", call.Err)
	}
	return nil
}
