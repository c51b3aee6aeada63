// Package notify negotiates notification permission and dispatches
// platform alerts. Delivery failure is an Outcome value, not an error;
// the scheduler retries on Failed.
package notify

type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
	// PermissionUnset is the pre-consent state; EnsurePermission
	// resolves it exactly once per explicit enable request.
	PermissionUnset Permission = ""
)

type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
)

// Notice is the payload of one alert. Tag deduplicates: a second
// dispatch carrying the same tag replaces the alert instead of
// stacking a new one.
type Notice struct {
	Tag   string
	Title string
	Body  string
}

type Gateway interface {
	// EnsurePermission resolves the permission state. A settled
	// granted/denied answer is returned without re-prompting; consent
	// is requested at most once.
	EnsurePermission() Permission
	// Dispatch attempts to raise an alert. It fails immediately unless
	// permission is granted and never prompts.
	Dispatch(Notice) Outcome
}

// NoopGateway is the gateway for platforms without a notification
// surface. Due tasks stay visible in the projection; no alert is raised.
type NoopGateway struct{}

func (NoopGateway) EnsurePermission() Permission { return PermissionUnsupported }

func (NoopGateway) Dispatch(Notice) Outcome { return OutcomeFailed }

// FuncGateway adapts plain functions to the Gateway interface, used by
// tests and by headless wiring.
type FuncGateway struct {
	PermissionFunc func() Permission
	DispatchFunc   func(Notice) Outcome
}

func (g FuncGateway) EnsurePermission() Permission {
	if g.PermissionFunc == nil {
		return PermissionUnsupported
	}
	return g.PermissionFunc()
}

func (g FuncGateway) Dispatch(n Notice) Outcome {
	if g.DispatchFunc == nil {
		return OutcomeFailed
	}
	return g.DispatchFunc(n)
}
