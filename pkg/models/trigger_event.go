package models

// TriggerEventType enumerates the domain events that can activate a workflow.
type TriggerEventType string

const (
	TriggerEventLeadCreated      TriggerEventType = "LEAD_CREATED"
	TriggerEventLeadUpdated      TriggerEventType = "LEAD_UPDATED"
	TriggerEventLeadStageChanged TriggerEventType = "LEAD_STAGE_CHANGED"
	TriggerEventTaskCreated      TriggerEventType = "TASK_CREATED"
	TriggerEventTaskCompleted    TriggerEventType = "TASK_COMPLETED"
	TriggerEventFormSubmitted    TriggerEventType = "FORM_SUBMITTED"
	TriggerEventScheduled        TriggerEventType = "SCHEDULED"
)

// triggerEventByName maps external event names (as emitted by the CRM
// business operations) to the internal enum.
var triggerEventByName = map[string]TriggerEventType{
	"lead.created":       TriggerEventLeadCreated,
	"lead.updated":       TriggerEventLeadUpdated,
	"lead.stage_changed": TriggerEventLeadStageChanged,
	"task.created":       TriggerEventTaskCreated,
	"task.completed":     TriggerEventTaskCompleted,
	"form.submitted":     TriggerEventFormSubmitted,
	"scheduled":          TriggerEventScheduled,
}

// TriggerEventFromName resolves an external event name to its enum value.
func TriggerEventFromName(name string) (TriggerEventType, bool) {
	event, ok := triggerEventByName[name]

	return event, ok
}
