// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"estate_portal_backend/platform/events"
	"estate_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus returns the process-local bus the modules share.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Report Domain Events
// =============================================================================

// ReportArchived is published when a queued report has been generated and
// stored for later download.
type ReportArchived struct {
	BaseEvent
	ArchiveID  uuid.UUID `json:"archiveId"`
	UserID     string    `json:"userId"`
	ReportType string    `json:"reportType"`
	Format     string    `json:"format"`
	FileName   string    `json:"fileName"`
	RowCount   int       `json:"rowCount"`
}

func (e ReportArchived) EventName() string { return "reports.archive.created" }

// ReportArchiveFailed is published when a queued report could not be
// produced, for example because the filtered set turned out empty.
type ReportArchiveFailed struct {
	BaseEvent
	UserID     string `json:"userId"`
	ReportType string `json:"reportType"`
	Reason     string `json:"reason"`
}

func (e ReportArchiveFailed) EventName() string { return "reports.archive.failed" }
