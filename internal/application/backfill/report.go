package backfill

import (
	"time"
)

// Entity kind labels used in dry-run report entries.
const (
	EntityKindCompany         = "company"
	EntityKindPerson          = "person"
	EntityKindAnonymousPerson = "anonymous_person"
)

// EntityPreview describes one canonical record a dry run would create.
type EntityPreview struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// ExistingEntity describes a canonical record a dry run found already in place.
type ExistingEntity struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// FailedRecord describes an identifier whose resolution failed during a dry run.
type FailedRecord struct {
	Identifier string `json:"identifier"`
	Error      string `json:"error"`
}

// DryRunSummary aggregates the counters of a dry run.
type DryRunSummary struct {
	IsDryRun                bool `json:"is_dry_run"`
	TransactionsAnalyzed    int  `json:"transactions_analyzed"`
	UniqueEntitiesProcessed int  `json:"unique_entities_processed"`
	TransactionsWouldUpdate int  `json:"transactions_would_update"`
	TotalWouldCreate        int  `json:"total_would_create"`
	TotalExisting           int  `json:"total_existing"`
	TotalFailed             int  `json:"total_failed"`
}

// DryRunDetails itemizes every decision a dry run made.
type DryRunDetails struct {
	Companies        []EntityPreview  `json:"companies"`
	Persons          []EntityPreview  `json:"persons"`
	AnonymousPersons []EntityPreview  `json:"anonymous_persons"`
	ExistingEntities []ExistingEntity `json:"existing_entities"`
	FailedRecords    []FailedRecord   `json:"failed_records"`
}

// DryRunReport is the itemized outcome of a dry run: everything the run
// would have created or updated, without any of it having been written.
type DryRunReport struct {
	Summary   DryRunSummary `json:"summary"`
	Details   DryRunDetails `json:"details"`
	Timestamp time.Time     `json:"timestamp"`
}

// DryRunRecorder accumulates the decisions of a dry run as the resolvers
// make them. It is only consulted when the run is a dry run; real runs leave
// it empty.
type DryRunRecorder struct {
	companies        []EntityPreview
	persons          []EntityPreview
	anonymousPersons []EntityPreview
	existing         []ExistingEntity
	failed           []FailedRecord
	wouldUpdate      int
}

// NewDryRunRecorder creates an empty DryRunRecorder
func NewDryRunRecorder() *DryRunRecorder {
	return &DryRunRecorder{}
}

// RecordWouldCreate records a canonical record the run would have inserted,
// bucketed by entity kind.
func (r *DryRunRecorder) RecordWouldCreate(kind, identifier, name string) {
	preview := EntityPreview{Identifier: identifier, Name: name}
	switch kind {
	case EntityKindCompany:
		r.companies = append(r.companies, preview)
	case EntityKindPerson:
		r.persons = append(r.persons, preview)
	case EntityKindAnonymousPerson:
		r.anonymousPersons = append(r.anonymousPersons, preview)
	}
}

// RecordExisting records a canonical record that already exists in storage.
func (r *DryRunRecorder) RecordExisting(kind, identifier, name string) {
	r.existing = append(r.existing, ExistingEntity{Kind: kind, Identifier: identifier, Name: name})
}

// RecordTransactionUpdate records one transaction the run would have relinked.
func (r *DryRunRecorder) RecordTransactionUpdate() {
	r.wouldUpdate++
}

// RecordFailure records an identifier whose resolution failed. Failures are
// recorded before the error aborts the run, so the report still shows what
// would have failed.
func (r *DryRunRecorder) RecordFailure(identifier string, err error) {
	r.failed = append(r.failed, FailedRecord{Identifier: identifier, Error: err.Error()})
}

// BuildReport assembles the report from the recorded decisions.
func (r *DryRunRecorder) BuildReport(transactionsAnalyzed, uniqueEntities int) *DryRunReport {
	wouldCreate := len(r.companies) + len(r.persons) + len(r.anonymousPersons)
	return &DryRunReport{
		Summary: DryRunSummary{
			IsDryRun:                true,
			TransactionsAnalyzed:    transactionsAnalyzed,
			UniqueEntitiesProcessed: uniqueEntities,
			TransactionsWouldUpdate: r.wouldUpdate,
			TotalWouldCreate:        wouldCreate,
			TotalExisting:           len(r.existing),
			TotalFailed:             len(r.failed),
		},
		Details: DryRunDetails{
			Companies:        r.companies,
			Persons:          r.persons,
			AnonymousPersons: r.anonymousPersons,
			ExistingEntities: r.existing,
			FailedRecords:    r.failed,
		},
		Timestamp: time.Now(),
	}
}
