package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/converselab/converse-api/internal/api/shared"
	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/service"
)

// fakeMessageService implements service.MessageService with injectable
// behavior per test.
type fakeMessageService struct {
	sendFunc func(ctx context.Context, userID, conversationID int64, content string) (*domain.Task, error)
	taskFunc func(ctx context.Context, token uuid.UUID, userID int64) (*domain.Task, error)
}

var _ service.MessageService = (*fakeMessageService)(nil)

func (s *fakeMessageService) SendMessage(
	ctx context.Context,
	userID, conversationID int64,
	content string,
) (*domain.Task, error) {
	return s.sendFunc(ctx, userID, conversationID, content)
}

func (s *fakeMessageService) GetTaskStatus(
	ctx context.Context,
	token uuid.UUID,
	userID int64,
) (*domain.Task, error) {
	return s.taskFunc(ctx, token, userID)
}

// newRequest builds a request carrying chi URL params and, when userID is
// positive, the authenticated-user context the middleware would set.
func newRequest(method, target string, body io.Reader, userID int64, params map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, body)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)

	if userID > 0 {
		ctx = context.WithValue(ctx, shared.UserIDContextKey, userID)
	}

	return r.WithContext(ctx)
}
