package api

import (
	"fmt"

	"github.com/opsgate/opsgate/internal/approvals"
	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/executor"
	"github.com/opsgate/opsgate/internal/intake"
	"github.com/opsgate/opsgate/internal/notify"
	"github.com/opsgate/opsgate/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Audit     audit.System
	Approvals approvals.System
	Intake    intake.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	auditSystem := audit.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	client := executor.NewClient(
		cfg.Executor.BaseURL,
		cfg.Executor.Token,
		cfg.Executor.TimeoutDuration(),
	)
	exec := executor.New(client, auditSystem, cfg.Executor.RetryPolicy(), runtime.Logger)

	notifier := notify.New(
		cfg.Notifier.WebhookURL,
		cfg.Notifier.TimeoutDuration(),
		runtime.Logger,
	)

	approvalSystem := approvals.New(
		runtime.Database.Connection(),
		exec,
		auditSystem,
		notifier,
		approvals.Options{
			Windows: approvals.Windows{
				Low:      cfg.Approvals.LowWindowDuration(),
				Medium:   cfg.Approvals.MediumWindowDuration(),
				High:     cfg.Approvals.HighWindowDuration(),
				Critical: cfg.Approvals.CriticalWindowDuration(),
			},
			SweepInterval:       cfg.Approvals.SweepIntervalDuration(),
			RequireDualApproval: cfg.Approvals.RequireDualApproval,
		},
		runtime.Logger,
		runtime.Pagination,
	)

	primary := classifier.NewAgentProvider("primary", cfg.Classifier.Primary)
	var secondary classifier.Provider
	if cfg.Classifier.Secondary != nil {
		secondary = classifier.NewAgentProvider("secondary", *cfg.Classifier.Secondary)
	}

	orchestrator := classifier.New(
		primary,
		secondary,
		classifier.Options{Timeout: cfg.Classifier.TimeoutDuration()},
		runtime.Logger,
	)

	intakeSystem := intake.New(
		orchestrator,
		approvalSystem,
		exec,
		auditSystem,
		executor.Plan,
		intake.Options{
			QueueSize: cfg.Intake.QueueSize,
			Workers:   cfg.Intake.Workers,
		},
		runtime.Logger,
	)

	return &Domain{
		Audit:     auditSystem,
		Approvals: approvalSystem,
		Intake:    intakeSystem,
	}
}

// Start registers the approval sweep and intake worker pool with the
// lifecycle coordinator.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	if err := d.Approvals.Start(lc); err != nil {
		return fmt.Errorf("approvals start failed: %w", err)
	}
	if err := d.Intake.Start(lc); err != nil {
		return fmt.Errorf("intake start failed: %w", err)
	}
	return nil
}
