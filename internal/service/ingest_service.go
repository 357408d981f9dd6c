package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarkerAnn/wine-backend/internal/constant"
	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/pkg/logger"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
	"github.com/MarkerAnn/wine-backend/pkg/embedding"
	"github.com/MarkerAnn/wine-backend/pkg/lock"
)

// ingestAbortAfterFailures stops a run once this many wines in a row fail
// to embed. Isolated failures are counted and skipped; an unbroken streak
// means the provider is down and 130k more calls would all fail.
const ingestAbortAfterFailures = 10

type IIngestService interface {
	// TriggerRebuild accepts an ingestion run and queues it. Returns the
	// conflict sentinel when another run holds the corpus lock.
	TriggerRebuild(ctx context.Context, req *dto.RebuildIndexRequest) (*dto.RebuildIndexResponse, error)

	// ExecuteRun performs a previously accepted run and releases the corpus
	// lock when it finishes, whatever the outcome.
	ExecuteRun(ctx context.Context, runId uuid.UUID, force bool, batchSize int) error

	// Rebuild runs ingestion synchronously: acquire, execute, report. Used
	// by the CLI.
	Rebuild(ctx context.Context, force bool, batchSize int) (*dto.IngestRunResponse, error)

	Status(ctx context.Context) (*dto.IndexStatusResponse, error)
}

type ingestService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	publisherService  IPublisherService
	ingestLock        lock.IngestLock
	defaultBatchSize  int
	logger            logger.ILogger
}

func NewIngestService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	publisherService IPublisherService,
	ingestLock lock.IngestLock,
	defaultBatchSize int,
	logger logger.ILogger,
) IIngestService {
	if defaultBatchSize <= 0 {
		defaultBatchSize = 1000
	}
	return &ingestService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisherService:  publisherService,
		ingestLock:        ingestLock,
		defaultBatchSize:  defaultBatchSize,
		logger:            logger,
	}
}

func (c *ingestService) TriggerRebuild(ctx context.Context, req *dto.RebuildIndexRequest) (*dto.RebuildIndexResponse, error) {
	acquired, err := c.ingestLock.Acquire(ctx, constant.IngestLockKey)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperror.ErrIngestRunning
	}

	run, err := c.createRun(ctx, req.Force, req.BatchSize)
	if err != nil {
		c.releaseLock(ctx)
		return nil, err
	}

	payload, err := json.Marshal(dto.RebuildIndexMessage{
		RunId:     run.Id,
		Force:     req.Force,
		BatchSize: req.BatchSize,
	})
	if err == nil {
		err = c.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		run.Details["error"] = fmt.Sprintf("failed to queue run: %v", err)
		if ferr := c.finalizeRun(ctx, run, entity.IngestStatusFailed); ferr != nil {
			c.logger.Error("ingest_service", "failed to finalize unqueued run", map[string]interface{}{
				"run_id":    run.Id.String(),
				"error_ref": ferr,
			})
		}
		c.releaseLock(ctx)
		return nil, err
	}

	c.logger.Info("ingest_service", "ingestion run queued", map[string]interface{}{
		"run_id": run.Id.String(),
		"model":  run.Model,
		"force":  req.Force,
	})

	return &dto.RebuildIndexResponse{
		RunId:  run.Id,
		Status: run.Status,
	}, nil
}

func (c *ingestService) ExecuteRun(ctx context.Context, runId uuid.UUID, force bool, batchSize int) error {
	// The trigger acquired the lock; the run releases it. Release uses a
	// fresh context so a cancelled run still unlocks the corpus.
	defer c.releaseLock(context.Background())

	if batchSize <= 0 {
		batchSize = c.defaultBatchSize
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	run, err := uow.IngestRunRepository().FindOne(ctx, specification.ByID{ID: runId})
	if err != nil {
		return err
	}
	if run == nil {
		return apperror.Wrap(apperror.ErrNotFound, fmt.Errorf("ingest run %s", runId))
	}

	c.logger.Info("ingest_service", "ingestion run started", map[string]interface{}{
		"run_id":     runId.String(),
		"model":      run.Model,
		"batch_size": batchSize,
		"force":      force,
	})

	runErr := c.processCorpus(ctx, uow, run, force, batchSize)

	status := entity.IngestStatusCompleted
	if runErr != nil {
		status = entity.IngestStatusFailed
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			status = entity.IngestStatusCancelled
		}
		if run.Details == nil {
			run.Details = map[string]interface{}{}
		}
		run.Details["error"] = runErr.Error()
	}

	// Finalize on a fresh context for the same reason as the lock release.
	if err := c.finalizeRun(context.Background(), run, status); err != nil {
		c.logger.Error("ingest_service", "failed to finalize ingest run", map[string]interface{}{
			"run_id":    runId.String(),
			"error_ref": err,
		})
		if runErr == nil {
			runErr = err
		}
	}

	c.logger.Info("ingest_service", "ingestion run finished", map[string]interface{}{
		"run_id":   runId.String(),
		"status":   status,
		"scanned":  run.Scanned,
		"embedded": run.Embedded,
		"skipped":  run.Skipped,
		"failed":   run.Failed,
	})

	return runErr
}

func (c *ingestService) Rebuild(ctx context.Context, force bool, batchSize int) (*dto.IngestRunResponse, error) {
	acquired, err := c.ingestLock.Acquire(ctx, constant.IngestLockKey)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperror.ErrIngestRunning
	}

	run, err := c.createRun(ctx, force, batchSize)
	if err != nil {
		c.releaseLock(ctx)
		return nil, err
	}

	runErr := c.ExecuteRun(ctx, run.Id, force, batchSize)

	// Reload on a fresh context so a cancelled run still reports its
	// final counters.
	reloadCtx := context.Background()
	uow := c.uowFactory.NewUnitOfWork(reloadCtx)
	final, err := uow.IngestRunRepository().FindOne(reloadCtx, specification.ByID{ID: run.Id})
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, apperror.Wrap(apperror.ErrNotFound, fmt.Errorf("ingest run %s", run.Id))
	}

	res := toIngestRunResponse(final)
	return &res, runErr
}

func (c *ingestService) Status(ctx context.Context) (*dto.IndexStatusResponse, error) {
	running, err := c.ingestLock.Held(ctx, constant.IngestLockKey)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	latest, err := uow.IngestRunRepository().FindLatest(ctx, constant.CorpusName)
	if err != nil {
		return nil, err
	}

	res := &dto.IndexStatusResponse{Running: running}
	if latest != nil {
		runRes := toIngestRunResponse(latest)
		res.LatestRun = &runRes
	}
	return res, nil
}

// processCorpus walks the corpus in keyset batches and embeds every wine
// that needs it. Counters accumulate on the run and are checkpointed after
// each batch so progress survives a crash.
func (c *ingestService) processCorpus(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	run *entity.IngestRun,
	force bool,
	batchSize int,
) error {

	cursor := int64(0)
	consecutiveFailures := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wines, err := uow.WineRepository().FindAll(ctx,
			specification.AfterWineID{ID: cursor},
			specification.OrderBy{Field: "id"},
			specification.Pagination{Limit: batchSize},
		)
		if err != nil {
			return apperror.Wrap(apperror.ErrRetrievalUnavailable, err)
		}
		if len(wines) == 0 {
			return nil
		}

		skip := make(map[int64]bool)
		if !force {
			ids := make([]int64, len(wines))
			for i, wine := range wines {
				ids[i] = wine.Id
			}
			embedded, err := uow.WineEmbeddingRepository().EmbeddedWineIds(ctx, run.Model, ids)
			if err != nil {
				return apperror.Wrap(apperror.ErrRetrievalUnavailable, err)
			}
			for _, id := range embedded {
				skip[id] = true
			}
		}

		for _, wine := range wines {
			run.Scanned++

			if skip[wine.Id] || strings.TrimSpace(wine.Description) == "" {
				run.Skipped++
				continue
			}

			if err := c.embedWine(ctx, uow, wine, run.Model); err != nil {
				run.Failed++
				consecutiveFailures++
				c.logger.Warn("ingest_service", "failed to embed wine", map[string]interface{}{
					"wine_id":   wine.Id,
					"error_ref": err,
				})
				if consecutiveFailures >= ingestAbortAfterFailures {
					return fmt.Errorf("aborting after %d consecutive embedding failures: %w", consecutiveFailures, err)
				}
				continue
			}
			consecutiveFailures = 0
			run.Embedded++
		}

		cursor = wines[len(wines)-1].Id

		if err := uow.IngestRunRepository().Update(ctx, run); err != nil {
			c.logger.Warn("ingest_service", "failed to checkpoint run progress", map[string]interface{}{
				"run_id":    run.Id.String(),
				"error_ref": err,
			})
		}
	}
}

func (c *ingestService) embedWine(ctx context.Context, uow unitofwork.UnitOfWork, wine *entity.Wine, model string) error {
	document := buildDocument(wine)

	res, err := c.embeddingProvider.Generate(ctx, document, embedding.TaskTypeDocument)
	if err != nil {
		return err
	}

	return uow.WineEmbeddingRepository().Upsert(ctx, &entity.WineEmbedding{
		Id:        uuid.New(),
		WineId:    wine.Id,
		Document:  document,
		Embedding: res.Embedding.Values,
		Model:     model,
		CreatedAt: time.Now(),
	})
}

// buildDocument is the canonical embedding input: title then review text.
// Changing this invalidates every stored vector, which is why the document
// is persisted next to each embedding.
func buildDocument(wine *entity.Wine) string {
	return fmt.Sprintf("%s\n\n%s", wine.Title, wine.Description)
}

func (c *ingestService) createRun(ctx context.Context, force bool, batchSize int) (*entity.IngestRun, error) {
	if batchSize <= 0 {
		batchSize = c.defaultBatchSize
	}

	run := &entity.IngestRun{
		Id:        uuid.New(),
		Corpus:    constant.CorpusName,
		Model:     c.embeddingProvider.ModelName(),
		Status:    entity.IngestStatusRunning,
		StartedAt: time.Now(),
		Details: map[string]interface{}{
			"force":      force,
			"batch_size": batchSize,
		},
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.IngestRunRepository().Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (c *ingestService) finalizeRun(ctx context.Context, run *entity.IngestRun, status string) error {
	now := time.Now()
	run.Status = status
	run.FinishedAt = &now

	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.IngestRunRepository().Update(ctx, run)
}

func (c *ingestService) releaseLock(ctx context.Context) {
	if err := c.ingestLock.Release(ctx, constant.IngestLockKey); err != nil {
		c.logger.Warn("ingest_service", "failed to release ingest lock", map[string]interface{}{
			"error_ref": err,
		})
	}
}

func toIngestRunResponse(run *entity.IngestRun) dto.IngestRunResponse {
	return dto.IngestRunResponse{
		RunId:      run.Id,
		Corpus:     run.Corpus,
		Model:      run.Model,
		Status:     run.Status,
		Scanned:    run.Scanned,
		Embedded:   run.Embedded,
		Skipped:    run.Skipped,
		Failed:     run.Failed,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Details:    run.Details,
	}
}
