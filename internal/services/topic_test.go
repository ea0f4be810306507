package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/forum-backend/internal/data/aggregates"
	"github.com/yungbote/forum-backend/internal/data/repos"
	repotest "github.com/yungbote/forum-backend/internal/data/repos/testutil"
	types "github.com/yungbote/forum-backend/internal/domain"
	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"github.com/yungbote/forum-backend/internal/platform/cache"
	"github.com/yungbote/forum-backend/internal/platform/dbctx"
)

// countingRelations counts descendant lookups so cache hits are observable.
// With hold set, a lookup reads its rows, signals loaded and waits on hold
// before returning them.
type countingRelations struct {
	repos.TopicRelationRepo
	byParent atomic.Int64

	loaded chan struct{}
	hold   chan struct{}
}

func (c *countingRelations) GetByParentID(dbc dbctx.Context, parentID int64, maxDepth int) ([]*types.TopicRelation, error) {
	c.byParent.Add(1)
	rows, err := c.TopicRelationRepo.GetByParentID(dbc, parentID, maxDepth)
	if c.hold != nil {
		c.loaded <- struct{}{}
		<-c.hold
	}
	return rows, err
}

type topicFixture struct {
	svc       TopicService
	cache     *cache.Memory
	relations *countingRelations
}

func newTopicFixture(t *testing.T) topicFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	topics := repos.NewTopicRepo(db, log)
	relations := &countingRelations{TopicRelationRepo: repos.NewTopicRelationRepo(db, log)}
	hierarchy := aggregates.NewHierarchyAggregate(aggregates.HierarchyAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log},
		Topics:    topics,
		Relations: relations,
	})
	mem := cache.NewMemory()
	return topicFixture{
		svc:       NewTopicService(db, log, topics, relations, hierarchy, mem, time.Minute, nil),
		cache:     mem,
		relations: relations,
	}
}

func mustCreate(t *testing.T, svc TopicService, title string, parentID *int64) *CreatedTopic {
	t.Helper()
	out, err := svc.CreateTopic(context.Background(), title, parentID)
	if err != nil {
		t.Fatalf("CreateTopic(%q): %v", title, err)
	}
	return out
}

func ids(rs []RelatedTopic) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTopicServiceCreateAndRead(t *testing.T) {
	f := newTopicFixture(t)
	ctx := context.Background()

	general := mustCreate(t, f.svc, "General", nil)
	if general.ID != 1 || general.ParentID != nil || general.CreatedAt.IsZero() {
		t.Fatalf("unexpected root: %+v", general)
	}
	ann := mustCreate(t, f.svc, "Announcements", &general.ID)
	urgent := mustCreate(t, f.svc, "Urgent", &ann.ID)
	if urgent.ParentID == nil || *urgent.ParentID != ann.ID {
		t.Fatalf("unexpected parent on result: %+v", urgent)
	}

	all, err := f.svc.ListTopics(ctx)
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(all) != 3 || all[0].Title != "General" || all[2].Title != "Urgent" {
		t.Fatalf("unexpected topics: %+v", all)
	}

	view, err := f.svc.GetTopic(ctx, urgent.ID)
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if view.ParentID == nil || *view.ParentID != ann.ID {
		t.Fatalf("declared parent: %+v", view)
	}
	rootView, err := f.svc.GetTopic(ctx, general.ID)
	if err != nil {
		t.Fatalf("GetTopic root: %v", err)
	}
	if rootView.ParentID != nil {
		t.Fatalf("root must have no parent: %+v", rootView)
	}

	anc, err := f.svc.ListAncestors(ctx, urgent.ID)
	if err != nil {
		t.Fatalf("ListAncestors: %v", err)
	}
	if !equalIDs(ids(anc), []int64{ann.ID, general.ID}) || anc[0].Depth != 1 || anc[1].Depth != 2 {
		t.Fatalf("ancestors: %+v", anc)
	}

	desc, err := f.svc.ListDescendants(ctx, general.ID, 0)
	if err != nil {
		t.Fatalf("ListDescendants: %v", err)
	}
	if !equalIDs(ids(desc), []int64{ann.ID, urgent.ID}) {
		t.Fatalf("descendants: %+v", desc)
	}
	shallow, err := f.svc.ListDescendants(ctx, general.ID, 1)
	if err != nil {
		t.Fatalf("ListDescendants depth 1: %v", err)
	}
	if !equalIDs(ids(shallow), []int64{ann.ID}) {
		t.Fatalf("bounded descendants: %+v", shallow)
	}

	kids, err := f.svc.ListChildren(ctx, ann.ID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if !equalIDs(ids(kids), []int64{urgent.ID}) {
		t.Fatalf("children: %+v", kids)
	}
	leaf, err := f.svc.ListChildren(ctx, urgent.ID)
	if err != nil {
		t.Fatalf("ListChildren leaf: %v", err)
	}
	if len(leaf) != 0 {
		t.Fatalf("leaf has children: %+v", leaf)
	}
}

func TestTopicServiceReadsUnknownTopic(t *testing.T) {
	f := newTopicFixture(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"get":         func() error { _, err := f.svc.GetTopic(ctx, 42); return err },
		"ancestors":   func() error { _, err := f.svc.ListAncestors(ctx, 42); return err },
		"descendants": func() error { _, err := f.svc.ListDescendants(ctx, 42, 0); return err },
		"children":    func() error { _, err := f.svc.ListChildren(ctx, 42); return err },
	}
	for name, fn := range checks {
		err := fn()
		if !domainagg.IsCode(err, domainagg.CodeNotFound) {
			t.Fatalf("%s: expected not_found, got %v", name, err)
		}
		if domainagg.MessageOf(err) != "Theme not found" {
			t.Fatalf("%s: unexpected message %q", name, domainagg.MessageOf(err))
		}
	}
	if keys := f.cache.Keys(); len(keys) != 0 {
		t.Fatalf("misses must not be cached: %v", keys)
	}
}

func TestTopicServiceCreatePropagatesAggregateErrors(t *testing.T) {
	f := newTopicFixture(t)

	_, err := f.svc.CreateTopic(context.Background(), "", nil)
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	_, err = f.svc.CreateTopic(context.Background(), "Orphan", repotest.PtrInt64(999))
	if !domainagg.IsCode(err, domainagg.CodeNotFound) || domainagg.MessageOf(err) != "Parent theme not found" {
		t.Fatalf("expected parent not found, got %v", err)
	}
}

func TestTopicServiceCachesAndInvalidatesDescendants(t *testing.T) {
	f := newTopicFixture(t)
	ctx := context.Background()

	root := mustCreate(t, f.svc, "General", nil)
	mid := mustCreate(t, f.svc, "Mid", &root.ID)

	first, err := f.svc.ListDescendants(ctx, root.ID, 0)
	if err != nil {
		t.Fatalf("ListDescendants: %v", err)
	}
	second, err := f.svc.ListDescendants(ctx, root.ID, 0)
	if err != nil {
		t.Fatalf("ListDescendants cached: %v", err)
	}
	if got := f.relations.byParent.Load(); got != 1 {
		t.Fatalf("second read should hit cache, lookups=%d", got)
	}
	if !equalIDs(ids(first), ids(second)) {
		t.Fatalf("cached value differs: %+v vs %+v", first, second)
	}
	if _, err := f.svc.ListChildren(ctx, mid.ID); err != nil {
		t.Fatalf("ListChildren: %v", err)
	}

	leaf := mustCreate(t, f.svc, "Leaf", &mid.ID)

	for _, k := range f.cache.Keys() {
		if k == "forum:descendants:1:0" || k == "forum:children:2" {
			t.Fatalf("stale key survived create: %s", k)
		}
	}
	after, err := f.svc.ListDescendants(ctx, root.ID, 0)
	if err != nil {
		t.Fatalf("ListDescendants after create: %v", err)
	}
	if !equalIDs(ids(after), []int64{mid.ID, leaf.ID}) {
		t.Fatalf("descendants after create: %+v", after)
	}
	if got := f.relations.byParent.Load(); got != 2 {
		t.Fatalf("expected reload after invalidation, lookups=%d", got)
	}
}

type failingCache struct{ cache.Cache }

func (failingCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("redis down")
}
func (failingCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("redis down")
}

func TestTopicServiceSurvivesCacheFailure(t *testing.T) {
	db := repotest.DB(t)
	log := repotest.Logger(t)
	topics := repos.NewTopicRepo(db, log)
	relations := repos.NewTopicRelationRepo(db, log)
	hierarchy := aggregates.NewHierarchyAggregate(aggregates.HierarchyAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log},
		Topics:    topics,
		Relations: relations,
	})
	svc := NewTopicService(db, log, topics, relations, hierarchy, failingCache{Cache: cache.NewNoop()}, time.Minute, nil)

	root := mustCreate(t, svc, "General", nil)
	child := mustCreate(t, svc, "Child", &root.ID)
	anc, err := svc.ListAncestors(context.Background(), child.ID)
	if err != nil {
		t.Fatalf("ListAncestors with failing cache: %v", err)
	}
	if !equalIDs(ids(anc), []int64{root.ID}) {
		t.Fatalf("ancestors: %+v", anc)
	}
}

func hasKey(m *cache.Memory, key string) bool {
	for _, k := range m.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func TestTopicServiceDropsFillThatRacedACreate(t *testing.T) {
	f := newTopicFixture(t)
	ctx := context.Background()

	root := mustCreate(t, f.svc, "General", nil)
	first := mustCreate(t, f.svc, "First", &root.ID)

	f.relations.loaded = make(chan struct{})
	f.relations.hold = make(chan struct{})
	done := make(chan []RelatedTopic, 1)
	go func() {
		out, err := f.svc.ListDescendants(ctx, root.ID, 0)
		if err != nil {
			t.Errorf("ListDescendants: %v", err)
		}
		done <- out
	}()

	<-f.relations.loaded
	second := mustCreate(t, f.svc, "Second", &root.ID)
	close(f.relations.hold)
	racing := <-done
	f.relations.hold = nil

	if !equalIDs(ids(racing), []int64{first.ID}) {
		t.Fatalf("in-flight read: %+v", racing)
	}
	if hasKey(f.cache, "forum:descendants:1:0") {
		t.Fatalf("fill that started before the create was cached")
	}
	after, err := f.svc.ListDescendants(ctx, root.ID, 0)
	if err != nil {
		t.Fatalf("ListDescendants after create: %v", err)
	}
	if !equalIDs(ids(after), []int64{first.ID, second.ID}) {
		t.Fatalf("descendants after create: %+v", after)
	}
}

// cancelAfterAttach cancels the caller's context once a child attach commits.
type cancelAfterAttach struct {
	domainagg.HierarchyAggregate
	cancel context.CancelFunc
}

func (c cancelAfterAttach) AttachTopic(ctx context.Context, in domainagg.AttachTopicInput) (domainagg.AttachTopicResult, error) {
	res, err := c.HierarchyAggregate.AttachTopic(ctx, in)
	if in.ParentID != nil {
		c.cancel()
	}
	return res, err
}

// ctxCache refuses deletes on a canceled context, like a network-backed cache.
type ctxCache struct{ *cache.Memory }

func (c ctxCache) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Memory.Delete(ctx, keys...)
}

func (c ctxCache) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Memory.DeletePrefix(ctx, prefix)
}

func TestTopicServiceInvalidatesAfterCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := repotest.DB(t)
	log := repotest.Logger(t)
	topics := repos.NewTopicRepo(db, log)
	relations := repos.NewTopicRelationRepo(db, log)
	hierarchy := aggregates.NewHierarchyAggregate(aggregates.HierarchyAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log},
		Topics:    topics,
		Relations: relations,
	})
	mem := cache.NewMemory()
	svc := NewTopicService(db, log, topics, relations, cancelAfterAttach{HierarchyAggregate: hierarchy, cancel: cancel}, ctxCache{Memory: mem}, time.Minute, nil)
	bg := context.Background()

	root := mustCreate(t, svc, "General", nil)
	if _, err := svc.ListChildren(bg, root.ID); err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if !hasKey(mem, "forum:children:1") {
		t.Fatalf("children listing not cached")
	}

	if _, err := svc.CreateTopic(ctx, "Child", &root.ID); err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatalf("caller context should be canceled")
	}
	if hasKey(mem, "forum:children:1") {
		t.Fatalf("children listing survived a create whose caller went away")
	}
}
