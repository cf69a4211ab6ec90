// Package audit records admin mutations in the audit_logs collection.
package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Actions.
const (
	ActionCompanyUpdate = "company.update"
	ActionCompanyDelete = "company.delete"
	ActionWalletCredit  = "wallet.credit"
	ActionWalletDebit   = "wallet.debit"
	ActionMarkupUpsert  = "markup.upsert"
	ActionMarkupDelete  = "markup.delete"
	ActionConfigUpdate  = "config.update"
	ActionAdminLogin    = "admin.login"
)

type Entry struct {
	ID         string                 `bson:"_id" json:"id"`
	ActorID    string                 `bson:"actorId" json:"actorId"`
	ActorName  string                 `bson:"actorName,omitempty" json:"actorName,omitempty"`
	Action     string                 `bson:"action" json:"action"`
	TargetType string                 `bson:"targetType" json:"targetType"`
	TargetID   string                 `bson:"targetId" json:"targetId"`
	Details    map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	RequestID  string                 `bson:"requestId,omitempty" json:"requestId,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
}

type Filter struct {
	ActorID  string
	Action   string
	TargetID string
}

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter, page models.Page) ([]*Entry, int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, e *Entry) error {
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *MongoRepository) List(ctx context.Context, f Filter, page models.Page) ([]*Entry, int64, error) {
	q := bson.M{}
	if f.ActorID != "" {
		q["actorId"] = f.ActorID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.TargetID != "" {
		q["targetId"] = f.TargetID
	}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	p := page.Normalize()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(p.Skip()).SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type MemoryRepository struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (m *MemoryRepository) Insert(ctx context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MemoryRepository) List(ctx context.Context, f Filter, page models.Page) ([]*Entry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Entry
	for _, e := range m.entries {
		if (f.ActorID != "" && e.ActorID != f.ActorID) || (f.Action != "" && e.Action != f.Action) || (f.TargetID != "" && e.TargetID != f.TargetID) {
			continue
		}
		cp := *e
		all = append(all, &cp)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	p := page.Normalize()
	start := int(p.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// Logger writes audit entries. Write failures are logged, never returned.
type Logger struct {
	repo Repository
}

func NewLogger(r Repository) *Logger { return &Logger{repo: r} }

// Record stores an entry for an action taken by actor on a target.
func (l *Logger) Record(ctx context.Context, actor models.Principal, action, targetType, targetID, requestID string, details map[string]interface{}) {
	if l == nil || l.repo == nil {
		return
	}
	e := &Entry{
		ID:         uuid.NewString(),
		ActorID:    actor.Subject,
		ActorName:  actor.Name,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		RequestID:  requestID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Insert(ctx, e); err != nil {
		logger.Errorf("audit %s on %s/%s by %s not recorded: %v", action, targetType, targetID, actor.Subject, err)
	}
}

func (l *Logger) List(ctx context.Context, f Filter, page models.Page) ([]*Entry, int64, error) {
	return l.repo.List(ctx, f, page)
}
