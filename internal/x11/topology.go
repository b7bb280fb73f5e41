package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/randr"

	"github.com/skitterwm/skitter/internal/monitors"
)

// WatchTopology subscribes to RandR screen-change notifications and
// invalidates the registry when the display configuration changes. The
// event loop runs until the connection closes.
func WatchTopology(conn *Connection, registry *monitors.Registry, logger *slog.Logger) error {
	err := randr.SelectInputChecked(
		conn.XUtil.Conn(),
		conn.Root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskCrtcChange|randr.NotifyMaskOutputChange,
	).Check()
	if err != nil {
		return fmt.Errorf("subscribe to randr events: %w", err)
	}

	go func() {
		for {
			ev, xerr := conn.XUtil.Conn().WaitForEvent()
			if ev == nil && xerr == nil {
				// Connection closed.
				return
			}
			if xerr != nil {
				logger.Debug("x event error", "error", xerr)
				continue
			}
			switch ev.(type) {
			case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
				logger.Info("display topology changed")
				registry.Invalidate()
			}
		}
	}()
	return nil
}
