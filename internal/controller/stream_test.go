package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/model"
)

func TestStreamRequiresToken(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/stream", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/notifications/stream?token=garbage", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamPushesNotificationStatus(t *testing.T) {
	r, db := newTestServer(t)

	boundary := time.Now().UTC().Add(-time.Hour)
	_, token := createUserWithToken(t, db, "alice", "alice@x.com", model.RoleUser, boundary)
	seedGlobalNotification(t, db, model.RoleUser, "unread", boundary.Add(time.Minute))

	req := httptest.NewRequest(http.MethodGet,
		"/api/notifications/stream?token="+token+"&max_messages=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

	body := w.Body.String()
	assert.Contains(t, body, "retry: 15000")
	assert.Equal(t, 2, strings.Count(body, "event:notification_status"))
	assert.Contains(t, body, `"has_new_global_notifications":true`)
	assert.Contains(t, body, `"has_new_personal_notifications":false`)
	// 事件ID携带接收者邮箱与时间戳
	assert.Contains(t, body, "alice@x.com-")
}

func TestStreamReflectsCursorAdvance(t *testing.T) {
	r, db := newTestServer(t)

	boundary := time.Now().UTC().Add(-time.Hour)
	user, token := createUserWithToken(t, db, "alice", "alice@x.com", model.RoleUser, boundary)
	seedGlobalNotification(t, db, model.RoleUser, "unread", boundary.Add(time.Minute))

	// 推送前游标已被推进（相当于用户在别处拉取过信息流）
	require.NoError(t, db.Model(user).
		Update("last_global_notification_at", time.Now()).Error)

	req := httptest.NewRequest(http.MethodGet,
		"/api/notifications/stream?token="+token+"&max_messages=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_new_global_notifications":false`)
}

func TestStreamStopsOnClientDisconnect(t *testing.T) {
	r, db := newTestServer(t)

	_, token := createUserWithToken(t, db, "alice", "alice@x.com", model.RoleUser, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet,
		"/api/notifications/stream?token="+token, nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	// 客户端断开后处理函数应当立即退出
	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("连接断开后推送循环未退出")
	}

	assert.Contains(t, w.Body.String(), "event:notification_status")
}
