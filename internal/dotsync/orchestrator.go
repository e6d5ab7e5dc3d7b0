package dotsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/gitrepo"
	"github.com/temirov/dotupdater/internal/logsink"
	"github.com/temirov/dotupdater/internal/repos/dependencies"
	"github.com/temirov/dotupdater/internal/repos/shared"
)

const (
	inspectingRepositoryMessageConstant = "inspecting repository"
	noUpdateMessageConstant             = "repository up to date"
	updatedMessageConstant              = "repository fast-forwarded"
	skippedMessageConstant              = "repository skipped"
	failedMessageConstant               = "repository synchronization failed"
	batchSummaryMessageConstant         = "synchronization pass finished"
	cancelledBeforeInspectionMessage    = "synchronization cancelled before inspection"
	statErrorTemplateConstant           = "inspecting %s: %w"
	divergedDetailTemplateConstant      = "local %s and remote %s have diverged"
	dryRunDetailTemplateConstant        = "would fast-forward %s to %s"
	logFieldConfiguredPathConstant      = "configured_path"
	logFieldOutcomeConstant             = "outcome"
	logFieldReasonConstant              = "reason"
	logFieldDetailConstant              = "detail"
	logFieldFromConstant                = "from"
	logFieldToConstant                  = "to"
	logFieldTipConstant                 = "tip"
	logFieldWorktreeRefreshedConstant   = "worktree_refreshed"
	logFieldErrorKindConstant           = "error_kind"
	logFieldDurationConstant            = "duration"
	logFieldRepositoriesConstant        = "repositories"
	logFieldUpdatedCountConstant        = "updated"
	logFieldNoUpdateCountConstant       = "up_to_date"
	logFieldSkippedCountConstant        = "skipped"
	logFieldFailedCountConstant         = "failed"
	shortHashLength                     = 7
)

// RepositoryOpener opens the repository at an absolute path.
type RepositoryOpener interface {
	Open(path string) (Repository, error)
}

// RepositoryOpenerFunc adapts a function to RepositoryOpener.
type RepositoryOpenerFunc func(path string) (Repository, error)

// Open implements RepositoryOpener.
func (openerFunc RepositoryOpenerFunc) Open(path string) (Repository, error) {
	return openerFunc(path)
}

// GitRepositoryOpener opens repositories with gitrepo.Open.
func GitRepositoryOpener() RepositoryOpener {
	return RepositoryOpenerFunc(func(path string) (Repository, error) {
		repository, openError := gitrepo.Open(path)
		if openError != nil {
			return nil, openError
		}
		return repository, nil
	})
}

// Dependencies wires an Orchestrator. FileSystem, Clock and HookRunner are optional.
type Dependencies struct {
	FileSystem   shared.FileSystem
	Opener       RepositoryOpener
	Synchronizer RemoteSynchronizer
	Applier      FastForwardApplier
	Sink         logsink.Sink
	Clock        shared.Clock
	HookRunner   HookRunner
}

// Options tunes a single pass.
type Options struct {
	UpdatePolicy shared.UpdatePolicy
	HookPolicy   shared.HookPolicy
}

// Orchestrator drives every configured repository through one synchronization pass.
type Orchestrator struct {
	fileSystem   shared.FileSystem
	opener       RepositoryOpener
	synchronizer RemoteSynchronizer
	applier      FastForwardApplier
	sink         logsink.Sink
	clock        shared.Clock
	hookRunner   HookRunner
}

// NewOrchestrator validates dependencies and constructs an Orchestrator.
func NewOrchestrator(dependencySet Dependencies) (*Orchestrator, error) {
	if dependencySet.Opener == nil {
		return nil, ErrRepositoryOpenerNotConfigured
	}
	if dependencySet.Synchronizer == nil {
		return nil, ErrRemoteSynchronizerNotConfigured
	}
	if dependencySet.Applier == nil {
		return nil, ErrFastForwardApplierNotConfigured
	}
	if dependencySet.Sink == nil {
		return nil, ErrLogSinkNotConfigured
	}
	return &Orchestrator{
		fileSystem:   dependencies.ResolveFileSystem(dependencySet.FileSystem),
		opener:       dependencySet.Opener,
		synchronizer: dependencySet.Synchronizer,
		applier:      dependencySet.Applier,
		sink:         dependencySet.Sink,
		clock:        dependencies.ResolveClock(dependencySet.Clock),
		hookRunner:   dependencySet.HookRunner,
	}, nil
}

// Run processes targets sequentially in order and returns one report per target.
// A failing repository never stops the pass. Once executionContext ends, every
// remaining repository is reported as Failed.
func (orchestrator *Orchestrator) Run(executionContext context.Context, targets []RepositoryTarget, options Options) BatchReport {
	batch := newBatchReport(len(targets))
	for _, target := range targets {
		startedAt := orchestrator.clock.Now()

		var outcome Outcome
		if contextError := executionContext.Err(); contextError != nil {
			outcome = Failed{Err: fmt.Errorf(contextualErrorTemplateConstant, cancelledBeforeInspectionMessage, contextError)}
		} else {
			orchestrator.record(logsink.SeverityInfo, inspectingRepositoryMessageConstant, target)
			outcome = orchestrator.synchronizeTarget(executionContext, target, options)
		}

		report := Report{Target: target, Outcome: outcome, StartedAt: startedAt, FinishedAt: orchestrator.clock.Now()}
		orchestrator.recordTerminal(report)

		if updated, isUpdated := outcome.(Updated); isUpdated && options.HookPolicy.RunHooks() && orchestrator.hookRunner != nil {
			updated.HookError = orchestrator.hookRunner.RunHook(executionContext, target, updated)
			report.Outcome = updated
		}

		batch.add(report)
	}

	orchestrator.sink.Record(
		orchestrator.clock.Now(),
		logsink.SeverityNotice,
		batchSummaryMessageConstant,
		zap.Int(logFieldRepositoriesConstant, len(batch.Reports)),
		zap.Int(logFieldUpdatedCountConstant, batch.Count(OutcomeKindUpdated)),
		zap.Int(logFieldNoUpdateCountConstant, batch.Count(OutcomeKindNoUpdate)),
		zap.Int(logFieldSkippedCountConstant, batch.Count(OutcomeKindSkipped)),
		zap.Int(logFieldFailedCountConstant, batch.Count(OutcomeKindFailed)),
	)
	return batch
}

func (orchestrator *Orchestrator) synchronizeTarget(executionContext context.Context, target RepositoryTarget, options Options) Outcome {
	if _, statError := orchestrator.fileSystem.Stat(target.Path); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return Skipped{
				Reason: SkipReasonPathNotFound,
				Detail: target.Path,
				Cause:  fmt.Errorf(pathErrorTemplateConstant, ErrPathNotFound, target.Path),
			}
		}
		return Failed{Err: fmt.Errorf(statErrorTemplateConstant, target.Path, statError)}
	}

	repository, openError := orchestrator.opener.Open(target.Path)
	if openError != nil {
		return Failed{Err: openError}
	}

	status, synchronizeError := orchestrator.synchronizer.Synchronize(executionContext, repository, target.Branch)
	if synchronizeError != nil {
		return Failed{Err: synchronizeError}
	}

	availableUpdates, hasUpdates := status.(UpdatesAvailable)
	if !hasUpdates {
		if upToDate, isUpToDate := status.(RemoteUpToDate); isUpToDate {
			return NoUpdate{Tip: upToDate.Tip}
		}
		return Failed{Err: fmt.Errorf(pathErrorTemplateConstant, ErrRepositoryCorrupt, target.Path)}
	}

	switch typedVerdict := Classify(availableUpdates.LocalTip, availableUpdates.RemoteTip, availableUpdates.Relation).(type) {
	case VerdictUpToDate:
		return NoUpdate{Tip: availableUpdates.LocalTip}
	case VerdictDiverged:
		return Skipped{
			Reason: SkipReasonNonFastForward,
			Detail: fmt.Sprintf(divergedDetailTemplateConstant, shortHash(typedVerdict.Local.String()), shortHash(typedVerdict.Remote.String())),
		}
	case VerdictFastForward:
		if !options.UpdatePolicy.ShouldApply() {
			return Skipped{
				Reason: SkipReasonDryRun,
				Detail: fmt.Sprintf(dryRunDetailTemplateConstant, shortHash(typedVerdict.From.String()), shortHash(typedVerdict.Target.String())),
			}
		}
		updated, applyError := orchestrator.applier.Apply(executionContext, repository, target.Branch, typedVerdict)
		if applyError != nil {
			return Failed{Err: applyError}
		}
		return updated
	default:
		return Failed{Err: fmt.Errorf(pathErrorTemplateConstant, ErrRepositoryCorrupt, target.Path)}
	}
}

func (orchestrator *Orchestrator) recordTerminal(report Report) {
	duration := zap.Duration(logFieldDurationConstant, report.FinishedAt.Sub(report.StartedAt))
	outcomeField := zap.String(logFieldOutcomeConstant, string(report.Outcome.Kind()))

	switch outcome := report.Outcome.(type) {
	case NoUpdate:
		orchestrator.record(logsink.SeverityInfo, noUpdateMessageConstant, report.Target, outcomeField, duration,
			zap.String(logFieldTipConstant, outcome.Tip.String()))
	case Updated:
		orchestrator.record(logsink.SeverityInfo, updatedMessageConstant, report.Target, outcomeField, duration,
			zap.String(logFieldFromConstant, outcome.From.String()),
			zap.String(logFieldToConstant, outcome.To.String()),
			zap.Bool(logFieldWorktreeRefreshedConstant, outcome.WorktreeRefreshed))
	case Skipped:
		severity := logsink.SeverityInfo
		if outcome.Reason == SkipReasonNonFastForward {
			severity = logsink.SeverityWarning
		}
		orchestrator.record(severity, skippedMessageConstant, report.Target, outcomeField, duration,
			zap.String(logFieldReasonConstant, string(outcome.Reason)),
			zap.String(logFieldDetailConstant, outcome.Detail))
	case Failed:
		orchestrator.record(logsink.SeverityError, failedMessageConstant, report.Target, outcomeField, duration,
			zap.String(logFieldErrorKindConstant, ErrorKind(outcome.Err)),
			zap.Error(outcome.Err))
	}
}

func (orchestrator *Orchestrator) record(severity logsink.Severity, message string, target RepositoryTarget, fields ...zap.Field) {
	recordFields := make([]zap.Field, 0, len(fields)+3)
	recordFields = append(recordFields,
		zap.String(logFieldRepositoryConstant, target.Path),
		zap.String(logFieldConfiguredPathConstant, target.ConfiguredPath),
		zap.String(logFieldBranchConstant, target.Branch),
	)
	recordFields = append(recordFields, fields...)
	orchestrator.sink.Record(orchestrator.clock.Now(), severity, message, recordFields...)
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLength {
		return hash
	}
	return hash[:shortHashLength]
}
