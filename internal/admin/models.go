package admin

import (
	"sbos/internal/audit"
	"sbos/internal/policy"
)

// RegisterResult is returned once per registration. The key is never shown
// again.
type RegisterResult struct {
	InstanceID string `json:"app_instance_id"`
	PID        int    `json:"pid"`
	Key        string `json:"key"`
}

// CapsView lists capabilities by label.
type CapsView struct {
	Read  []string `json:"read"`
	Write []string `json:"write"`
}

// InstanceView is one row of the instance listing.
type InstanceView struct {
	ID   string   `json:"id"`
	PID  int      `json:"pid"`
	User string   `json:"user"`
	Caps CapsView `json:"caps"`
}

// PromoteResult reports the validators appended to an enforced chain.
type PromoteResult struct {
	OK       bool                   `json:"ok"`
	Promoted []policy.ValidatorType `json:"promoted"`
	Class    string                 `json:"class"`
}

// MonitorState is the monitor toggle response.
type MonitorState struct {
	OK      bool   `json:"ok"`
	Monitor string `json:"monitor"`
}

// Health summarizes liveness and the current risk flags.
type Health struct {
	Status  string          `json:"status"`
	Risk    map[string]bool `json:"risk"`
	Monitor string          `json:"monitor"`
}

type TransactionsReport struct {
	Rows []audit.Transaction `json:"rows"`
}

type ShadowReport struct {
	Rows []audit.ShadowFinding `json:"rows"`
}

type ShadowStatsReport struct {
	Rows []audit.ShadowStat `json:"rows"`
}

func monitorState(enabled bool) string {
	if enabled {
		return "running"
	}
	return "stopped"
}
