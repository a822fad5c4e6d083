package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadHandoff = "leads.handoff"

// LeadHandoffPayload is the task body for a conversation handed off to a human
// agent. It carries a snapshot of the captured data so the worker does not
// depend on the session still existing when the task runs.
type LeadHandoffPayload struct {
	UserID         string  `json:"userId"`
	LeadID         *string `json:"leadId,omitempty"`
	Nombre         string  `json:"nombre,omitempty"`
	Contacto       string  `json:"contacto,omitempty"`
	Operacion      string  `json:"operacion,omitempty"`
	Zona           string  `json:"zona,omitempty"`
	PresupuestoMax float64 `json:"presupuestoMax,omitempty"`
	Summary        string  `json:"summary,omitempty"`
}

func NewLeadHandoffTask(payload LeadHandoffPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadHandoff, data, asynq.MaxRetry(5)), nil
}

func ParseLeadHandoffPayload(task *asynq.Task) (LeadHandoffPayload, error) {
	var payload LeadHandoffPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadHandoffPayload{}, err
	}
	return payload, nil
}
