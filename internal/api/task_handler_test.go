package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
)

func TestTaskHandlerGetStatus(t *testing.T) {
	t.Parallel()

	token := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	serveTask := func(task *domain.Task, err error) (*TaskHandler, uuid.UUID) {
		svc := &fakeMessageService{
			taskFunc: func(ctx context.Context, got uuid.UUID, userID int64) (*domain.Task, error) {
				if err != nil {
					return nil, err
				}
				return task, nil
			},
		}
		return NewTaskHandler(svc), token
	}

	poll := func(h *TaskHandler, tokenParam string, userID int64) *httptest.ResponseRecorder {
		r := newRequest(http.MethodGet, "/api/tasks/"+tokenParam, nil,
			userID, map[string]string{"taskID": tokenParam})
		w := httptest.NewRecorder()
		h.GetStatus(w, r)
		return w
	}

	t.Run("pending task has no result or error", func(t *testing.T) {
		handler, token := serveTask(&domain.Task{
			Token:     token,
			Status:    domain.TaskStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil)

		w := poll(handler, token.String(), 1)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.JSONEq(t, fmt.Sprintf("%q", token), string(body["task_id"]))
		assert.JSONEq(t, `"pending"`, string(body["status"]))
		assert.NotContains(t, body, "result")
		assert.NotContains(t, body, "error")
	})

	t.Run("completed task carries the structured result", func(t *testing.T) {
		handler, token := serveTask(&domain.Task{
			Token:     token,
			Status:    domain.TaskStatusCompleted,
			Result:    `{"message_id":12,"content":"General Kenobi."}`,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil)

		w := poll(handler, token.String(), 1)
		require.Equal(t, http.StatusOK, w.Code)

		var resp TaskStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.Status)

		var result domain.TaskResult
		require.NoError(t, json.Unmarshal(resp.Result, &result))
		assert.Equal(t, int64(12), result.MessageID)
		assert.Equal(t, "General Kenobi.", result.Content)
	})

	t.Run("failed task carries the error message", func(t *testing.T) {
		handler, token := serveTask(&domain.Task{
			Token:        token,
			Status:       domain.TaskStatusFailed,
			ErrorMessage: "model backend unavailable",
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil)

		w := poll(handler, token.String(), 1)
		require.Equal(t, http.StatusOK, w.Code)

		var resp TaskStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "failed", resp.Status)
		assert.Equal(t, "model backend unavailable", resp.Error)
		assert.Nil(t, resp.Result)
	})

	t.Run("unknown token returns 404", func(t *testing.T) {
		handler, token := serveTask(nil, store.ErrTaskNotFound)

		w := poll(handler, token.String(), 1)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed token returns 400", func(t *testing.T) {
		handler, _ := serveTask(nil, nil)

		w := poll(handler, "not-a-uuid", 1)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing authentication returns 401", func(t *testing.T) {
		handler, token := serveTask(nil, nil)

		w := poll(handler, token.String(), 0)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
