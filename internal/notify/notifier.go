package notify

import "log"

// DefaultTimeoutMs is the per-plugin delivery timeout.
const DefaultTimeoutMs = 5000

// Notifier fans events out to every subscribed plugin.
type Notifier struct {
	manager  *Manager
	executor *Executor
}

// NewNotifier creates a Notifier for the given plugin directory.
func NewNotifier(pluginDir string, timeoutMs int) *Notifier {
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}
	return &Notifier{
		manager:  NewManager(pluginDir),
		executor: NewExecutor(timeoutMs),
	}
}

// Discover scans the plugin directory for notifier plugins.
func (n *Notifier) Discover() error {
	return n.manager.Discover()
}

// Manager returns the underlying plugin manager.
func (n *Notifier) Manager() *Manager {
	return n.manager
}

// Dispatch delivers an event to every plugin subscribed to its type.
// Failures are logged per plugin and do not stop delivery to the rest.
// It returns the number of successful deliveries.
func (n *Notifier) Dispatch(ev Event) int {
	delivered := 0
	for _, plugin := range n.manager.HandlersFor(ev.Type) {
		resp, err := n.executor.Execute(plugin, &ev)
		if err != nil {
			log.Printf("Notify plugin %s failed: %v", plugin.Manifest.Name, err)
			continue
		}
		if !resp.Success {
			log.Printf("Notify plugin %s rejected event: %s", plugin.Manifest.Name, resp.Error)
			continue
		}
		delivered++
	}
	return delivered
}
