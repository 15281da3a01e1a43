// Package plugin exposes the lock monitor through a host application's
// plugin lifecycle: initialise, configure, notifications, save settings,
// close and uninstall.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pauseonlock/internal/monitor"
	"pauseonlock/internal/player"
	"pauseonlock/internal/session"
)

// Type categorizes a plugin for the host
type Type int

const (
	TypeUnknown Type = iota
	TypeGeneral
)

// NotificationFlags selects which host notifications the plugin receives
type NotificationFlags int

const (
	NotifyStartup          NotificationFlags = 0
	NotifyPlayerEvents     NotificationFlags = 1
	NotifyDataStreamEvents NotificationFlags = 2
	NotifyTagEvents        NotificationFlags = 4
)

// NotificationType identifies a host notification
type NotificationType int

const (
	PluginStartup NotificationType = iota
	TrackChanged
	PlayStateChanged
	NowPlayingListChanged
	VolumeLevelChanged
)

// String returns the notification name
func (n NotificationType) String() string {
	switch n {
	case PluginStartup:
		return "plugin-startup"
	case TrackChanged:
		return "track-changed"
	case PlayStateChanged:
		return "play-state-changed"
	case NowPlayingListChanged:
		return "now-playing-list-changed"
	case VolumeLevelChanged:
		return "volume-level-changed"
	default:
		return fmt.Sprintf("notification(%d)", int(n))
	}
}

// CloseReason tells the plugin why it is being closed
type CloseReason int

const (
	CloseUserDisabled CloseReason = iota + 1
	CloseHostShutdown
	CloseStopNoUnload
)

// String returns the close reason name
func (r CloseReason) String() string {
	switch r {
	case CloseUserDisabled:
		return "user-disabled"
	case CloseHostShutdown:
		return "host-shutdown"
	case CloseStopNoUnload:
		return "stop-no-unload"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Info describes the plugin to the host
type Info struct {
	Name                     string
	Description              string
	Author                   string
	TargetApplication        string
	Type                     Type
	VersionMajor             int
	VersionMinor             int
	Revision                 int
	ReceiveNotifications     NotificationFlags
	ConfigurationPanelHeight int // pixels reserved for a settings panel; 0 = none
}

// Version returns "major.minor.revision"
func (i Info) Version() string {
	return fmt.Sprintf("%d.%d.%d", i.VersionMajor, i.VersionMinor, i.Revision)
}

// Plugin wires a player and a session source into a lock monitor and
// manages its lifetime on behalf of the host.
type Plugin struct {
	player player.Player
	source session.Source
	opts   []monitor.Option
	author string
	clock  monitor.Clock
	logger *slog.Logger

	mu      sync.Mutex
	monitor *monitor.Monitor
}

// Option configures a Plugin
type Option func(*Plugin)

// WithMonitorOptions passes options through to the lock monitor
func WithMonitorOptions(opts ...monitor.Option) Option {
	return func(p *Plugin) {
		p.opts = append(p.opts, opts...)
	}
}

// WithAuthor sets the author shown in Info
func WithAuthor(author string) Option {
	return func(p *Plugin) {
		p.author = author
	}
}

// WithClock sets the clock used for the copyright year
func WithClock(c monitor.Clock) Option {
	return func(p *Plugin) {
		p.clock = c
	}
}

// New creates a plugin. Nothing is subscribed until Initialise.
func New(pl player.Player, source session.Source, logger *slog.Logger, opts ...Option) *Plugin {
	p := &Plugin{
		player: pl,
		source: source,
		author: "pauseonlock contributors",
		clock:  monitor.RealClock{},
		logger: logger.With("component", "plugin"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Info returns the plugin description
func (p *Plugin) Info() Info {
	return Info{
		Name:                     "Pause On Lock",
		Description:              "Pause/Resume when Workstation is Locked/Unlocked.",
		Author:                   fmt.Sprintf("© Copyright %d %s", p.clock.Now().Year(), p.author),
		Type:                     TypeGeneral,
		VersionMajor:             1,
		VersionMinor:             1,
		Revision:                 1,
		ReceiveNotifications:     NotifyPlayerEvents | NotifyTagEvents,
		ConfigurationPanelHeight: 0,
	}
}

// Initialise constructs and starts the lock monitor
func (p *Plugin) Initialise(ctx context.Context) (Info, error) {
	info := p.Info()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.monitor != nil {
		return info, monitor.ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return info, err
	}

	m := monitor.NewMonitor(p.player, p.source, p.logger, p.opts...)
	if err := m.Start(); err != nil {
		return info, fmt.Errorf("failed to start lock monitor: %w", err)
	}
	p.monitor = m

	p.logger.Info("plugin initialised",
		"name", info.Name,
		"version", info.Version(),
	)
	return info, nil
}

// Configure is called when the user opens the plugin settings. There is no
// settings panel, so it always returns false.
func (p *Plugin) Configure() bool {
	return false
}

// ReceiveNotification handles host notifications. Only startup is observed:
// the play state is read and discarded.
func (p *Plugin) ReceiveNotification(ctx context.Context, sourceURL string, notification NotificationType) {
	switch notification {
	case PluginStartup:
		state, err := p.player.PlayState(ctx)
		if err != nil {
			p.logger.Debug("startup play state unavailable", "error", err)
			return
		}
		p.logger.Debug("startup notification received", "state", state.String())
	default:
		p.logger.Debug("notification ignored",
			"notification", notification.String(),
			"source_url", sourceURL,
		)
	}
}

// SaveSettings is a no-op; the plugin has no settings of its own.
func (p *Plugin) SaveSettings() {}

// Close stops the lock monitor. It is safe to call without Initialise and
// more than once.
func (p *Plugin) Close(reason CloseReason) error {
	p.mu.Lock()
	m := p.monitor
	p.monitor = nil
	p.mu.Unlock()

	if m == nil {
		return nil
	}

	p.logger.Info("plugin closing", "reason", reason.String())
	return m.Stop()
}

// Uninstall is a no-op; nothing is persisted on the plugin's behalf.
func (p *Plugin) Uninstall() {}

// Running reports whether the lock monitor is active
func (p *Plugin) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.monitor != nil
}
