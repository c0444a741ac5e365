package backfill

import (
	"context"
	"errors"
	"strings"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/taxdoc"
	"go.uber.org/zap"
)

// Outcome tallies what a resolver did for a single transaction. Skipped
// means the canonical record already existed; Updated means the transaction
// was relinked, or would have been in a dry run.
type Outcome struct {
	Created int
	Skipped int
	Updated int
}

// RunState is the mutable state shared by the resolvers during a single
// backfill run: the set of raw identifiers already handled, the dry-run flag
// and the dry-run recorder. It is owned by the orchestrator, lives for
// exactly one run and is discarded afterwards.
//
// The processed set is keyed by the raw identifier string exactly as it is
// embedded in the transaction. No normalization is applied, so two spellings
// of the same document are handled independently.
type RunState struct {
	DryRun    bool
	processed map[string]bool
	recorder  *DryRunRecorder
}

// NewRunState creates the state for one backfill run
func NewRunState(dryRun bool) *RunState {
	return &RunState{
		DryRun:    dryRun,
		processed: make(map[string]bool),
		recorder:  NewDryRunRecorder(),
	}
}

// AlreadyProcessed reports whether the raw identifier was handled in this run
func (r *RunState) AlreadyProcessed(rawID string) bool {
	return r.processed[rawID]
}

// MarkProcessed records that the raw identifier was handled in this run
func (r *RunState) MarkProcessed(rawID string) {
	r.processed[rawID] = true
}

// ProcessedCount returns the number of distinct raw identifiers handled
func (r *RunState) ProcessedCount() int {
	return len(r.processed)
}

// Recorder returns the dry-run recorder of this run
func (r *RunState) Recorder() *DryRunRecorder {
	return r.recorder
}

// Fail records the failure in the dry-run report before handing the error
// back, so an aborted dry run still shows what would have failed.
func (r *RunState) Fail(rawID string, err error) error {
	if r.DryRun {
		r.recorder.RecordFailure(rawID, err)
	}
	return err
}

// CompanyResolver resolves transactions whose embedded document classified
// as a CNPJ into canonical company records.
type CompanyResolver struct {
	backfiller *Backfiller
	logger     *zap.Logger
}

// NewCompanyResolver creates a new CompanyResolver
func NewCompanyResolver(backfiller *Backfiller, logger *zap.Logger) *CompanyResolver {
	return &CompanyResolver{backfiller: backfiller, logger: logger}
}

// Process looks up the company by the raw embedded CNPJ string, creates it
// from the transaction when missing, and relinks the transaction. Storage
// errors on this path are fatal to the run, including the relink itself.
func (r *CompanyResolver) Process(
	ctx context.Context,
	transaction *ledger.Transaction,
	run *RunState,
	repos TransactionalRepositories,
) (Outcome, error) {
	rawID := strings.TrimSpace(transaction.Counterparty.TaxID)
	if rawID == "" {
		return Outcome{}, nil
	}

	company, err := repos.CompanyRepo().FindByCNPJ(ctx, rawID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Outcome{}, run.Fail(rawID, err)
	}

	if company != nil {
		r.logger.Debug("Company already exists for document",
			zap.String("document", rawID),
			zap.String("company_id", company.ID.String()),
		)
		run.MarkProcessed(rawID)
		wouldUpdate := !transaction.Counterparty.IsLinked()
		if run.DryRun {
			run.Recorder().RecordExisting(EntityKindCompany, rawID, company.Name)
			if wouldUpdate {
				run.Recorder().RecordTransactionUpdate()
			}
			outcome := Outcome{Skipped: 1}
			if wouldUpdate {
				outcome.Updated = 1
			}
			return outcome, nil
		}
		updated, err := r.backfiller.Backfill(ctx, transaction, company.ID, repos)
		if err != nil {
			return Outcome{}, err
		}
		outcome := Outcome{Skipped: 1}
		if updated {
			outcome.Updated = 1
		}
		return outcome, nil
	}

	payload, err := CompanyFromTransaction(transaction)
	if err != nil {
		return Outcome{}, run.Fail(rawID, err)
	}
	if payload == nil {
		return Outcome{}, nil
	}

	if run.DryRun {
		run.Recorder().RecordWouldCreate(EntityKindCompany, rawID, payload.Name)
		run.MarkProcessed(rawID)
		outcome := Outcome{Created: 1}
		if !transaction.Counterparty.IsLinked() {
			run.Recorder().RecordTransactionUpdate()
			outcome.Updated = 1
		}
		return outcome, nil
	}

	if err := repos.CompanyRepo().Save(ctx, payload); err != nil {
		return Outcome{}, run.Fail(rawID, err)
	}
	r.logger.Info("Created company for document",
		zap.String("document", rawID),
		zap.String("company_id", payload.ID.String()),
	)
	run.MarkProcessed(rawID)

	updated, err := r.backfiller.Backfill(ctx, transaction, payload.ID, repos)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{Created: 1}
	if updated {
		outcome.Updated = 1
	}
	return outcome, nil
}

// PersonResolver resolves transactions whose embedded document classified as
// a CPF into canonical person records.
type PersonResolver struct {
	validator  taxdoc.Validator
	backfiller *Backfiller
	logger     *zap.Logger
}

// NewPersonResolver creates a new PersonResolver
func NewPersonResolver(validator taxdoc.Validator, backfiller *Backfiller, logger *zap.Logger) *PersonResolver {
	return &PersonResolver{validator: validator, backfiller: backfiller, logger: logger}
}

// Process looks up the person by the raw embedded CPF string, creates the
// record (with a formatted CPF) from the transaction when missing, and
// relinks the transaction. A failed relink on this path is soft: it is
// logged and left to a future run rather than aborting.
func (r *PersonResolver) Process(
	ctx context.Context,
	transaction *ledger.Transaction,
	run *RunState,
	repos TransactionalRepositories,
) (Outcome, error) {
	rawID := strings.TrimSpace(transaction.Counterparty.TaxID)
	if rawID == "" {
		return Outcome{}, nil
	}

	person, err := repos.PersonRepo().FindByCPF(ctx, rawID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Outcome{}, run.Fail(rawID, err)
	}

	if person != nil {
		r.logger.Debug("Person already exists for document",
			zap.String("document", rawID),
			zap.String("person_id", person.ID.String()),
		)
		run.MarkProcessed(rawID)
		wouldUpdate := !transaction.Counterparty.IsLinked()
		if run.DryRun {
			run.Recorder().RecordExisting(EntityKindPerson, rawID, person.FullName)
			if wouldUpdate {
				run.Recorder().RecordTransactionUpdate()
			}
			outcome := Outcome{Skipped: 1}
			if wouldUpdate {
				outcome.Updated = 1
			}
			return outcome, nil
		}
		outcome := Outcome{Skipped: 1}
		if r.backfiller.BackfillSoft(ctx, transaction, person.ID, repos) {
			outcome.Updated = 1
		}
		return outcome, nil
	}

	payload, err := PersonFromTransaction(transaction, r.validator)
	if err != nil {
		return Outcome{}, run.Fail(rawID, err)
	}
	if payload == nil {
		return Outcome{}, nil
	}

	if run.DryRun {
		run.Recorder().RecordWouldCreate(EntityKindPerson, rawID, payload.FullName)
		run.MarkProcessed(rawID)
		outcome := Outcome{Created: 1}
		if !transaction.Counterparty.IsLinked() {
			run.Recorder().RecordTransactionUpdate()
			outcome.Updated = 1
		}
		return outcome, nil
	}

	if err := repos.PersonRepo().Save(ctx, payload); err != nil {
		return Outcome{}, run.Fail(rawID, err)
	}
	r.logger.Info("Created person for document",
		zap.String("document", rawID),
		zap.String("person_id", payload.ID.String()),
	)
	run.MarkProcessed(rawID)

	outcome := Outcome{Created: 1}
	if r.backfiller.BackfillSoft(ctx, transaction, payload.ID, repos) {
		outcome.Updated = 1
	}
	return outcome, nil
}

// AnonymousPersonResolver resolves transactions whose embedded document is an
// anonymized CPF into anonymous person records. The raw masked string is both
// the lookup key and the stored identity.
type AnonymousPersonResolver struct {
	backfiller *Backfiller
	logger     *zap.Logger
}

// NewAnonymousPersonResolver creates a new AnonymousPersonResolver
func NewAnonymousPersonResolver(backfiller *Backfiller, logger *zap.Logger) *AnonymousPersonResolver {
	return &AnonymousPersonResolver{backfiller: backfiller, logger: logger}
}

// Process looks up the anonymous person by the raw masked string, creates the
// record when missing, and relinks the transaction. Like the person path, a
// failed relink is soft.
func (r *AnonymousPersonResolver) Process(
	ctx context.Context,
	transaction *ledger.Transaction,
	run *RunState,
	repos TransactionalRepositories,
) (Outcome, error) {
	rawID := strings.TrimSpace(transaction.Counterparty.TaxID)
	if rawID == "" {
		return Outcome{}, nil
	}

	person, err := repos.PersonRepo().FindByCPF(ctx, rawID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Outcome{}, run.Fail(rawID, err)
	}

	if person != nil {
		r.logger.Debug("Anonymous person already exists for document",
			zap.String("document", rawID),
			zap.String("person_id", person.ID.String()),
		)
		run.MarkProcessed(rawID)
		wouldUpdate := !transaction.Counterparty.IsLinked()
		if run.DryRun {
			run.Recorder().RecordExisting(EntityKindAnonymousPerson, rawID, person.FullName)
			if wouldUpdate {
				run.Recorder().RecordTransactionUpdate()
			}
			outcome := Outcome{Skipped: 1}
			if wouldUpdate {
				outcome.Updated = 1
			}
			return outcome, nil
		}
		outcome := Outcome{Skipped: 1}
		if r.backfiller.BackfillSoft(ctx, transaction, person.ID, repos) {
			outcome.Updated = 1
		}
		return outcome, nil
	}

	payload, err := AnonymousPersonFromTransaction(transaction)
	if err != nil {
		return Outcome{}, run.Fail(rawID, err)
	}
	if payload == nil {
		return Outcome{}, nil
	}

	if run.DryRun {
		run.Recorder().RecordWouldCreate(EntityKindAnonymousPerson, rawID, payload.FullName)
		run.MarkProcessed(rawID)
		outcome := Outcome{Created: 1}
		if !transaction.Counterparty.IsLinked() {
			run.Recorder().RecordTransactionUpdate()
			outcome.Updated = 1
		}
		return outcome, nil
	}

	if err := repos.PersonRepo().Save(ctx, payload); err != nil {
		return Outcome{}, run.Fail(rawID, err)
	}
	r.logger.Info("Created anonymous person for document",
		zap.String("document", rawID),
		zap.String("person_id", payload.ID.String()),
	)
	run.MarkProcessed(rawID)

	outcome := Outcome{Created: 1}
	if r.backfiller.BackfillSoft(ctx, transaction, payload.ID, repos) {
		outcome.Updated = 1
	}
	return outcome, nil
}
