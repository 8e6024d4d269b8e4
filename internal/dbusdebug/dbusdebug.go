// Package dbusdebug exports the sm.puri.SqueekDebug service described in
// §6: a single read/write boolean property, "Enabled", that posts
// Debug(Enable|Disable) events to the core's event channel whenever a
// client writes it. Built on github.com/godbus/dbus/v5, an indirect
// dependency of the teacher promoted here to direct use — there is no
// logger/executor file in the teacher to ground the property-exporting
// shape on, so this follows the library's own documented
// prop.Export/introspect idiom rather than copying from any pack file.
package dbusdebug

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/visibility"
)

const (
	busName       = "sm.puri.SqueekDebug"
	objectPath    = dbus.ObjectPath("/sm/puri/SqueekDebug")
	interfaceName = "sm.puri.SqueekDebug"
)

// EventSender is the subset of *driver.Threaded the service needs: a
// place to post the Debug event a property write produces.
type EventSender interface {
	Send(ev visibility.Event)
}

// Service owns the DBus connection and exported property; Close
// releases the well-known name and disconnects.
type Service struct {
	conn   *dbus.Conn
	props  *prop.Properties
	logger *logging.Logger
}

// Start connects to the session bus, requests busName, and exports the
// Enabled property wired to sender. initialEnabled seeds the property's
// starting value (from the config file's debug flag, typically).
func Start(sender EventSender, logger *logging.Logger, initialEnabled bool) (*Service, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, errNameTaken{busName}
	}

	propSpec := map[string]map[string]*prop.Prop{
		interfaceName: {
			"Enabled": {
				Value:    initialEnabled,
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: func(c *prop.Change) *dbus.Error {
					enabled, _ := c.Value.(bool)
					sender.Send(eventForEnabled(enabled))
					return nil
				},
			},
		},
	}

	props, err := prop.Export(conn, objectPath, propSpec)
	if err != nil {
		conn.Close()
		return nil, err
	}

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       interfaceName,
				Properties: props.Introspection(interfaceName),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, err
	}

	return &Service{conn: conn, props: props, logger: logger}, nil
}

// SetEnabled updates the exported property without going through a
// remote write, e.g. to reflect a Debug event that originated locally
// (CLI flag at startup).
func (s *Service) SetEnabled(enabled bool) {
	if s == nil || s.props == nil {
		return
	}
	s.props.SetMust(interfaceName, "Enabled", enabled)
}

// Close releases the well-known name and disconnects.
func (s *Service) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// eventForEnabled maps a property write's new value to the Debug event
// the loop kernel expects, split out from the DBus callback so it's
// testable without a real bus connection.
func eventForEnabled(enabled bool) visibility.Event {
	if enabled {
		return visibility.NewDebugEvent(visibility.DebugEnable)
	}
	return visibility.NewDebugEvent(visibility.DebugDisable)
}

type errNameTaken struct{ name string }

func (e errNameTaken) Error() string {
	return "dbus name already owned: " + e.name
}
