package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/dto"
	"teamhub/internal/model"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestFetchFeedMergesCreateAndUpdateEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)

	// 普通创建事件
	first := seedGlobal(t, db, "admin@x.com", model.RoleUser, "first", base, base)
	// 创建后又被修改：应同时产生创建事件和修改事件
	edited := seedGlobal(t, db, "admin@x.com", model.RoleUser, "edited",
		base.Add(1*time.Minute), base.Add(10*time.Minute))

	items, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         FeedScope{Roles: []string{model.RoleUser}},
		StartingDate:  timePtr(base.Add(time.Hour)),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 3)

	// 倒序：修改事件最新，然后是edited的创建事件，最后是first的创建事件
	assert.Equal(t, edited.ID, items[0].ID)
	assert.Equal(t, dto.FeedEventUpdate, items[0].EventType)
	assert.Equal(t, edited.ID, items[1].ID)
	assert.Equal(t, dto.FeedEventCreate, items[1].EventType)
	assert.Equal(t, first.ID, items[2].ID)
	assert.Equal(t, dto.FeedEventCreate, items[2].EventType)

	// 事件时间：修改事件用updated_at，创建事件用created_at
	assert.WithinDuration(t, base.Add(10*time.Minute), items[0].EventTimestamp, time.Second)
	assert.WithinDuration(t, base.Add(1*time.Minute), items[1].EventTimestamp, time.Second)

	// 页内序号连续
	for i, item := range items {
		assert.Equal(t, i+1, item.RowNumber)
	}
}

func TestFetchFeedPageChunkLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		seedGlobal(t, db, "admin@x.com", model.RoleUser, "n", at, at)
	}

	items, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         FeedScope{Roles: []string{model.RoleUser}},
		StartingDate:  timePtr(time.Now().UTC()),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	assert.Len(t, items, 10)

	// 整页按事件时间单调递减
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].EventTimestamp.After(items[i-1].EventTimestamp))
	}
}

func TestFetchFeedPagingWithBoundaryAnchor(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 11; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		seedGlobal(t, db, "admin@x.com", model.RoleUser, "n", at, at)
	}

	scope := FeedScope{Roles: []string{model.RoleUser}}

	firstPage, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         scope,
		StartingDate:  timePtr(time.Now().UTC()),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, firstPage, 10)
	for i, item := range firstPage {
		assert.Equal(t, i+1, item.RowNumber)
	}
	assert.WithinDuration(t, base.Add(10*time.Minute), firstPage[0].EventTimestamp, time.Second)

	// 下一页的锚点就是上一页最后一条的事件时间：锚点行本身必须被排除
	secondPage, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         scope,
		StartingDate:  timePtr(firstPage[9].EventTimestamp),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, secondPage, 1)

	// 两页合起来恰好覆盖全部事件，无重复无遗漏
	type eventKey struct {
		id        uint
		eventType string
	}
	seen := make(map[eventKey]bool)
	for _, item := range append(firstPage, secondPage...) {
		key := eventKey{item.ID, item.EventType}
		assert.False(t, seen[key], "事件 %v 跨页重复", key)
		seen[key] = true
	}
	assert.Len(t, seen, 11)
}

func TestFetchFeedAnchorExcludesNewerEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	old := seedGlobal(t, db, "admin@x.com", model.RoleUser, "old", base, base)
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "newer",
		base.Add(10*time.Minute), base.Add(10*time.Minute))

	// 锚点落在两条之间，只有更早的一条可见
	items, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         FeedScope{Roles: []string{model.RoleUser}},
		StartingDate:  timePtr(base.Add(5 * time.Minute)),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, old.ID, items[0].ID)
}

func TestFetchFeedRoleScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "for-users", base, base)
	seedGlobal(t, db, "admin@x.com", model.RoleManager, "for-managers",
		base.Add(time.Minute), base.Add(time.Minute))
	seedGlobal(t, db, "admin@x.com", model.RoleAdmin, "for-admins",
		base.Add(2*time.Minute), base.Add(2*time.Minute))

	anchor := timePtr(time.Now().UTC())

	// 普通用户只能看到投递给user角色的
	items, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         FeedScope{Roles: model.VisibleRoles(model.RoleUser)},
		StartingDate:  anchor,
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "for-users", items[0].Title)

	// 管理员能看到全部角色的
	items, err = svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         FeedScope{Roles: model.VisibleRoles(model.RoleAdmin)},
		StartingDate:  anchor,
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestFetchFeedPersonalEmailScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	seedPersonal(t, db, "m@x.com", "alice@x.com", "for-alice", base, base)
	seedPersonal(t, db, "m@x.com", "bob@x.com", "for-bob",
		base.Add(time.Minute), base.Add(time.Minute))

	items, err := svc.FetchFeed(db, PersonalKind, FeedQuery{
		Scope:         FeedScope{Email: "alice@x.com"},
		StartingDate:  timePtr(time.Now().UTC()),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "for-alice", items[0].Title)
	assert.Equal(t, "alice@x.com", items[0].Receiver)
}

func TestFetchFeedByLastRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	boundary := base.Add(30 * time.Minute)

	seedGlobal(t, db, "admin@x.com", model.RoleUser, "read-already", base, base)
	unread := seedGlobal(t, db, "admin@x.com", model.RoleUser, "unread",
		boundary.Add(time.Minute), boundary.Add(time.Minute))
	// 边界之前创建但之后被修改：只产生修改事件
	editedAfter := seedGlobal(t, db, "admin@x.com", model.RoleUser, "edited-after",
		base.Add(time.Minute), boundary.Add(5*time.Minute))

	items, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:      FeedScope{Roles: []string{model.RoleUser}},
		LastReadAt: timePtr(boundary),
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, editedAfter.ID, items[0].ID)
	assert.Equal(t, dto.FeedEventUpdate, items[0].EventType)
	assert.Equal(t, unread.ID, items[1].ID)
	assert.Equal(t, dto.FeedEventCreate, items[1].EventType)
}

func TestFetchFeedTieBreakIsDeterministic(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	at := time.Now().UTC().Add(-time.Hour)
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "a", at, at)
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "b", at, at)
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "c", at, at)

	query := FeedQuery{
		Scope:         FeedScope{Roles: []string{model.RoleUser}},
		StartingDate:  timePtr(time.Now().UTC()),
		PageChunkSize: 10,
	}

	first, err := svc.FetchFeed(db, GlobalKind, query)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// 相同事件时间按ID倒序，多次查询结果一致
	for run := 0; run < 3; run++ {
		again, err := svc.FetchFeed(db, GlobalKind, query)
		require.NoError(t, err)
		require.Len(t, again, 3)
		for i := range first {
			assert.Equal(t, first[i].ID, again[i].ID)
		}
	}
	assert.True(t, first[0].ID > first[1].ID)
	assert.True(t, first[1].ID > first[2].ID)
}

func TestFetchFeedInvalidParams(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	now := time.Now().UTC()
	scope := FeedScope{Roles: []string{model.RoleUser}}

	// 两种模式都未指定
	_, err := svc.FetchFeed(db, GlobalKind, FeedQuery{Scope: scope})
	assert.ErrorIs(t, err, ErrInvalidFeedParams)

	// 两种模式同时指定
	_, err = svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:        scope,
		StartingDate: timePtr(now),
		LastReadAt:   timePtr(now),
	})
	assert.ErrorIs(t, err, ErrInvalidFeedParams)

	// 范围为空
	_, err = svc.FetchFeed(db, GlobalKind, FeedQuery{StartingDate: timePtr(now)})
	assert.ErrorIs(t, err, ErrInvalidFeedParams)
	_, err = svc.FetchFeed(db, PersonalKind, FeedQuery{StartingDate: timePtr(now)})
	assert.ErrorIs(t, err, ErrInvalidFeedParams)
}

func TestFetchFeedEmptyResult(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	items, err := svc.FetchFeed(db, GlobalKind, FeedQuery{
		Scope:         FeedScope{Roles: []string{model.RoleUser}},
		StartingDate:  timePtr(time.Now().UTC()),
		PageChunkSize: 10,
	})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHasNew(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "n", base, base)

	// 边界早于事件：有未读
	hasNew, err := svc.HasNew(db, GlobalKind,
		FeedScope{Roles: []string{model.RoleUser}}, base.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, hasNew)

	// 边界晚于事件：无未读
	hasNew, err = svc.HasNew(db, GlobalKind,
		FeedScope{Roles: []string{model.RoleUser}}, base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, hasNew)

	// 角色不在投递范围：无未读
	hasNew, err = svc.HasNew(db, GlobalKind,
		FeedScope{Roles: []string{model.RoleManager}}, base.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, hasNew)
}

func TestHasNewDetectsUpdates(t *testing.T) {
	db := newTestDB(t)
	svc := NewFeedService()

	base := time.Now().UTC().Add(-time.Hour)
	boundary := base.Add(30 * time.Minute)

	// 边界前创建、边界后修改：updated_at越过边界即算未读
	seedGlobal(t, db, "admin@x.com", model.RoleUser, "edited",
		base, boundary.Add(time.Minute))

	hasNew, err := svc.HasNew(db, GlobalKind,
		FeedScope{Roles: []string{model.RoleUser}}, boundary)
	require.NoError(t, err)
	assert.True(t, hasNew)
}
