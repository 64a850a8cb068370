package services

import (
	"context"
	"errors"

	"volunvibe/app/config"
	apperrors "volunvibe/app/errors"
	"volunvibe/app/models"
	"volunvibe/app/repositories"
	"volunvibe/app/telemetry"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Ledger keeps each post's slotsRemaining in step with the requests made
// against it. The mode decides how:
//
//   - counter: insert then adjust, two independent writes that can drift
//   - transactional: both writes commit together, full posts are refused
//   - derived: nothing is stored, slots are computed from the request count
type Ledger struct {
	store  repositories.Store
	mode   string
	logger *zap.Logger
	tracer trace.Tracer
}

// NewLedger creates a Ledger. An empty mode means counter.
func NewLedger(store repositories.Store, mode string, logger *zap.Logger) *Ledger {
	if mode == "" {
		mode = config.LedgerCounter
	}
	return &Ledger{
		store:  store,
		mode:   mode,
		logger: logger.Named("ledger"),
		tracer: telemetry.GetTracer("volunvibe/ledger"),
	}
}

// Mode returns the bookkeeping mode in use.
func (l *Ledger) Mode() string {
	return l.mode
}

// CreateRequest records a volunteer request and claims one slot on its post.
func (l *Ledger) CreateRequest(ctx context.Context, request *models.Request) (*models.InsertResult, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.CreateRequest",
		trace.WithAttributes(telemetry.String("ledger.mode", l.mode), telemetry.String("post.id", request.PostID)))
	defer span.End()

	request.ID = bson.NilObjectID
	request.BeforeCreate()
	if err := request.Validate(); err != nil {
		return nil, apperrors.InvalidInput("invalid request", err)
	}

	var err error
	switch l.mode {
	case config.LedgerTransactional:
		err = l.createTransactional(ctx, request)
	case config.LedgerDerived:
		if err = l.store.Requests().Create(ctx, request); err != nil {
			err = storeError("failed to create request", err)
		}
	default:
		err = l.createCounter(ctx, span, request)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(telemetry.String("request.id", request.ID.Hex()))
	return &models.InsertResult{Acknowledged: true, InsertedID: request.ID.Hex()}, nil
}

func (l *Ledger) createCounter(ctx context.Context, span trace.Span, request *models.Request) error {
	if err := l.store.Requests().Create(ctx, request); err != nil {
		return storeError("failed to create request", err)
	}

	matched, err := l.store.Posts().AdjustSlots(ctx, request.PostID, -1)
	if err != nil {
		l.inconsistency(span, "decrement", request, err)
		return apperrors.Internal("request saved but volunteer slot was not claimed", err)
	}
	if !matched {
		l.dangling(span, "decrement", request)
	}
	return nil
}

func (l *Ledger) createTransactional(ctx context.Context, request *models.Request) error {
	err := l.store.RunInTransaction(ctx, func(ctx context.Context, posts repositories.PostRepository, requests repositories.RequestRepository) error {
		post, err := posts.GetByID(ctx, request.PostID)
		if err != nil {
			if errors.Is(err, models.ErrInvalidID) || errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NotFound("post not found", err)
			}
			return err
		}
		if !post.HasSlots() {
			return apperrors.Conflict("no volunteer slots remaining", nil)
		}

		if err := requests.Create(ctx, request); err != nil {
			return err
		}
		_, err = posts.AdjustSlots(ctx, request.PostID, -1)
		return err
	})
	if err != nil {
		return storeError("failed to create request", err)
	}
	return nil
}

// DeleteRequest withdraws a volunteer request and releases its slot.
func (l *Ledger) DeleteRequest(ctx context.Context, id string) (*models.DeleteResult, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.DeleteRequest",
		trace.WithAttributes(telemetry.String("ledger.mode", l.mode), telemetry.String("request.id", id)))
	defer span.End()

	var (
		deleted bool
		err     error
	)
	switch l.mode {
	case config.LedgerTransactional:
		deleted, err = l.deleteTransactional(ctx, id)
	case config.LedgerDerived:
		deleted, err = l.deleteDerived(ctx, id)
	default:
		deleted, err = l.deleteCounter(ctx, span, id)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &models.DeleteResult{Acknowledged: true}
	if deleted {
		result.DeletedCount = 1
	}
	span.SetAttributes(telemetry.Int("request.deleted_count", int(result.DeletedCount)))
	return result, nil
}

func (l *Ledger) deleteCounter(ctx context.Context, span trace.Span, id string) (bool, error) {
	request, err := l.store.Requests().GetByID(ctx, id)
	if err != nil {
		return false, storeError("request not found", err)
	}

	matched, err := l.store.Posts().AdjustSlots(ctx, request.PostID, 1)
	if err != nil {
		return false, storeError("failed to release volunteer slot", err)
	}
	if !matched {
		l.dangling(span, "increment", request)
	}

	deleted, err := l.store.Requests().Delete(ctx, id)
	if err != nil {
		l.inconsistency(span, "delete", request, err)
		return false, apperrors.Internal("volunteer slot released but request was not deleted", err)
	}
	if !deleted {
		l.inconsistency(span, "delete", request, repositories.ErrNotFound)
	}
	return deleted, nil
}

func (l *Ledger) deleteTransactional(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := l.store.RunInTransaction(ctx, func(ctx context.Context, posts repositories.PostRepository, requests repositories.RequestRepository) error {
		request, err := requests.GetByID(ctx, id)
		if err != nil {
			return storeError("request not found", err)
		}
		if _, err := posts.AdjustSlots(ctx, request.PostID, 1); err != nil {
			return err
		}
		deleted, err = requests.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, storeError("failed to delete request", err)
	}
	return deleted, nil
}

func (l *Ledger) deleteDerived(ctx context.Context, id string) (bool, error) {
	deleted, err := l.store.Requests().Delete(ctx, id)
	if err != nil {
		return false, storeError("failed to delete request", err)
	}
	if !deleted {
		return false, apperrors.NotFound("request not found", nil)
	}
	return true, nil
}

// ListRequests returns every request.
func (l *Ledger) ListRequests(ctx context.Context) ([]*models.Request, error) {
	requests, err := l.store.Requests().List(ctx, models.RequestFilter{})
	if err != nil {
		return nil, storeError("failed to list requests", err)
	}
	return requests, nil
}

// ListRequestsByVolunteer returns the requests made by email. Only that
// volunteer may list them.
func (l *Ledger) ListRequestsByVolunteer(ctx context.Context, caller, email string) ([]*models.Request, error) {
	if caller != email {
		return nil, apperrors.Forbidden("forbidden access", nil)
	}
	requests, err := l.store.Requests().List(ctx, models.RequestFilter{VolunteerEmail: email})
	if err != nil {
		return nil, storeError("failed to list requests", err)
	}
	return requests, nil
}

// Project fills in slotsRemaining from the live request count when slots
// are derived. In the other modes the stored value is already current.
func (l *Ledger) Project(ctx context.Context, posts ...*models.Post) error {
	if l.mode != config.LedgerDerived {
		return nil
	}
	for _, post := range posts {
		if post == nil {
			continue
		}
		count, err := l.store.Requests().CountByPost(ctx, post.ID.Hex())
		if err != nil {
			return storeError("failed to count requests", err)
		}
		capacity := post.Capacity
		if capacity == 0 {
			capacity = post.SlotsRemaining
		}
		post.SlotsRemaining = capacity - count
	}
	return nil
}

func (l *Ledger) dangling(span trace.Span, step string, request *models.Request) {
	span.AddEvent("dangling post reference", trace.WithAttributes(telemetry.String("step", step)))
	l.logger.Warn("request references a missing post",
		zap.String("request_id", request.ID.Hex()),
		zap.String("post_id", request.PostID),
		zap.String("step", step),
	)
}

func (l *Ledger) inconsistency(span trace.Span, step string, request *models.Request, err error) {
	span.AddEvent("ledger inconsistency", trace.WithAttributes(telemetry.String("step", step)))
	l.logger.Error("ledger inconsistency",
		zap.String("request_id", request.ID.Hex()),
		zap.String("post_id", request.PostID),
		zap.String("step", step),
		zap.Error(err),
	)
}
