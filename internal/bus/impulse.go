// Package bus implements the QoS event bus: a two-lane, priority-preemptive
// scheduler that turns external impulses into ordered lists of directives
// and drains them through a Dispatcher.
package bus

// ImpulseKind tags the variant carried by an Impulse.
type ImpulseKind string

const (
	ImpulseInitiateSession ImpulseKind = "initiate_session"
	ImpulseThinkStep       ImpulseKind = "think_step"
	ImpulseObservation     ImpulseKind = "observation"
	ImpulseFileSystemEvent ImpulseKind = "filesystem_event"
	ImpulseSwarmSignal     ImpulseKind = "swarm_signal"
	ImpulseBootstrapSkills ImpulseKind = "bootstrap_skills"
	ImpulseJanitorWakeup   ImpulseKind = "janitor_wakeup"
	ImpulseSystemInterrupt ImpulseKind = "system_interrupt"
	ImpulseError           ImpulseKind = "error"
)

// Impulse is an external event admitted to the runtime, carried into one of
// the two scheduler lanes.
type Impulse struct {
	Kind ImpulseKind

	Prompt    string   // InitiateSession
	SessionID string   // ThinkStep, Observation
	Text      string   // Observation
	Paths     []string // FileSystemEvent
	WorkerID  string   // SwarmSignal
	Status    string   // SwarmSignal
	Message   string   // Error
}

// ToDirectives maps one impulse to the ordered list of directives the
// interpreter should dispatch. Filesystem events collapse into one
// fs_batch; swarm signals produce nothing.
func (i Impulse) ToDirectives() []Directive {
	switch i.Kind {
	case ImpulseInitiateSession:
		return []Directive{New("initiate_session", map[string]any{"prompt": i.Prompt})}
	case ImpulseThinkStep:
		return []Directive{New("think", map[string]any{"session_id": i.SessionID})}
	case ImpulseObservation:
		return []Directive{New("observe", map[string]any{"session_id": i.SessionID, "text": i.Text})}
	case ImpulseFileSystemEvent:
		return []Directive{New("fs_batch", map[string]any{"paths": i.Paths})}
	case ImpulseBootstrapSkills:
		return []Directive{New("bootstrap_skills", nil)}
	case ImpulseJanitorWakeup:
		return []Directive{New("maintenance", nil)}
	case ImpulseSystemInterrupt:
		return []Directive{New("shutdown", nil)}
	case ImpulseError:
		return []Directive{New("error", map[string]any{"message": i.Message})}
	case ImpulseSwarmSignal:
		return nil // logged only, no directive produced
	default:
		return nil
	}
}

// Lane reports which scheduler lane an impulse belongs on: watcher,
// bootstrap, and janitor traffic rides the background lane; user/session
// impulses and the interrupt take priority.
func (i Impulse) Lane() Lane {
	switch i.Kind {
	case ImpulseFileSystemEvent, ImpulseBootstrapSkills, ImpulseJanitorWakeup, ImpulseSwarmSignal:
		return LaneBackground
	default:
		return LanePriority
	}
}
