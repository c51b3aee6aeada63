package notify

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// DesktopGateway raises alerts through the host desktop: notify-send on
// linux, osascript on darwin. Permission is a one-shot consent memo: once
// granted or denied it is returned without re-prompting, and the caller
// persists it across runs via State.
type DesktopGateway struct {
	mu    sync.Mutex
	state Permission
	// prompt asks the user for consent; nil means the EnsurePermission
	// call itself is the consent (an explicit enable command).
	prompt func() bool
	// raise and lookPath are swappable for tests.
	raise    func(Notice) error
	lookPath func(string) (string, error)
}

type DesktopOption func(*DesktopGateway)

// WithConsentMemo seeds a permission decision remembered from a
// previous run.
func WithConsentMemo(state Permission) DesktopOption {
	return func(g *DesktopGateway) { g.state = state }
}

// WithPrompt installs a consent hook invoked at most once.
func WithPrompt(prompt func() bool) DesktopOption {
	return func(g *DesktopGateway) { g.prompt = prompt }
}

func NewDesktopGateway(opts ...DesktopOption) *DesktopGateway {
	g := &DesktopGateway{
		lookPath: exec.LookPath,
	}
	g.raise = g.raiseDesktop
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *DesktopGateway) EnsurePermission() Permission {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.capabilityPresent() {
		return PermissionUnsupported
	}
	switch g.state {
	case PermissionGranted, PermissionDenied:
		return g.state
	}
	if g.prompt == nil || g.prompt() {
		g.state = PermissionGranted
	} else {
		g.state = PermissionDenied
	}
	return g.state
}

// Deny records an explicit refusal; EnsurePermission will not prompt
// again until the memo is reset.
func (g *DesktopGateway) Deny() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = PermissionDenied
}

// State exposes the consent memo so callers can persist it.
func (g *DesktopGateway) State() Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *DesktopGateway) Dispatch(n Notice) Outcome {
	g.mu.Lock()
	state := g.state
	capable := g.capabilityPresent()
	raise := g.raise
	g.mu.Unlock()

	if !capable || state != PermissionGranted {
		return OutcomeFailed
	}
	if err := raise(n); err != nil {
		return OutcomeFailed
	}
	return OutcomeDelivered
}

func (g *DesktopGateway) capabilityPresent() bool {
	bin := notifierBinary()
	if bin == "" {
		return false
	}
	_, err := g.lookPath(bin)
	return err == nil
}

func notifierBinary() string {
	switch runtime.GOOS {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (g *DesktopGateway) raiseDesktop(n Notice) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", linuxArgs(n)...).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return errors.New("notify: no desktop notifier for " + runtime.GOOS)
	}
}

// linuxArgs builds the notify-send invocation. The synchronous hint is
// the dedup tag: a later alert with the same hint replaces the earlier
// one instead of stacking.
func linuxArgs(n Notice) []string {
	args := make([]string, 0, 4)
	if n.Tag != "" {
		args = append(args, "-h", "string:x-canonical-private-synchronous:"+n.Tag)
	}
	return append(args, n.Title, n.Body)
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
