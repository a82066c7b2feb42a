package checksum

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recalculator recomputes checksum tokens from the current state of the
// underlying collections. Recomputation is idempotent for collection
// scopes: two recomputations over the same state produce interchangeable
// tokens, so duplicate event delivery is harmless.
type Recalculator struct {
	source Source
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRecalculator(source Source, store Store, logger *zap.Logger) *Recalculator {
	return &Recalculator{
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Recompute refreshes the token for one scope. Errors are returned for
// the caller to log; a failed recomputation must never fail the primary
// write that triggered it.
func (r *Recalculator) Recompute(ctx context.Context, scope Scope) error {
	switch scope.Type {
	case ScopeReports:
		return r.recomputeReports(ctx)
	case ScopeComments:
		return r.recomputeComments(ctx, scope.ReportID)
	case ScopeCommentsPurge:
		return r.store.DeleteToken(ctx, CommentsKey(scope.ReportID))
	case ScopeGlobalComments:
		return r.recomputeGlobalComments(ctx)
	case ScopeUser:
		return r.recomputeUser(ctx, scope.UserID)
	case ScopeUsersVersion:
		_, err := r.store.BumpUsersVersion(ctx)
		return err
	default:
		return fmt.Errorf("unknown checksum scope %q", scope.Type)
	}
}

func (r *Recalculator) recomputeReports(ctx context.Context) error {
	count, latest, err := r.source.ReportSet(ctx)
	if err != nil {
		return err
	}
	version, err := r.store.UsersVersion(ctx)
	if err != nil {
		return err
	}

	token := collectionToken(count, latest, version)
	if err := r.store.SetToken(ctx, KeyReports, token); err != nil {
		return err
	}
	r.logger.Info("reports checksum updated", zap.String("token", token))
	return nil
}

func (r *Recalculator) recomputeComments(ctx context.Context, reportID uuid.UUID) error {
	count, latest, err := r.source.CommentSet(ctx, reportID)
	if err != nil {
		return err
	}
	version, err := r.store.UsersVersion(ctx)
	if err != nil {
		return err
	}

	token := collectionToken(count, latest, version)
	if err := r.store.SetToken(ctx, CommentsKey(reportID), token); err != nil {
		return err
	}
	r.logger.Info("comments checksum updated",
		zap.String("report_id", reportID.String()),
		zap.String("token", token),
	)
	return nil
}

func (r *Recalculator) recomputeGlobalComments(ctx context.Context) error {
	count, err := r.source.GlobalCommentCount(ctx)
	if err != nil {
		return err
	}
	return r.store.SetToken(ctx, KeyCommentsGlobal, globalCommentsToken(count, r.now().UnixMilli()))
}

func (r *Recalculator) recomputeUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := r.source.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return r.store.SetToken(ctx, UserKey(userID), userToken(userID, r.now().UnixMilli()))
}
