package repository

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aerolabel/pkg/config"
	mongotx "aerolabel/pkg/db/mongo"
	"aerolabel/pkg/model"
)

const (
	LabelsCollection   = "Labels"
	CountersCollection = "Label_counters"
)

// LabelRepository persists materialized labels. Create assigns ID and FileName
// on the given label and returns the ID.
type LabelRepository interface {
	Create(ctx context.Context, label *model.Label) (string, error)
}

var unsafeNameChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// LabelFileName names an annotated image after its aircraft class and the
// per-class sequence number, keeping the original extension. Path separators
// in the class are replaced so the result is always a single path element.
func LabelFileName(class string, seq int64, originalName string) string {
	return fmt.Sprintf("%s-%04d%s", unsafeNameChars.Replace(class), seq, path.Ext(originalName))
}

type mongoLabelRepository struct {
	cfg       *config.Config
	labels    *mongo.Collection
	counters  *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoLabelRepository(cfg *config.Config) LabelRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLabelRepository{
		cfg:       cfg,
		labels:    db.Collection(LabelsCollection),
		counters:  db.Collection(CountersCollection),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

type counter struct {
	Class string `bson:"_id"`
	Seq   int64  `bson:"seq"`
}

func (r *mongoLabelRepository) Create(ctx context.Context, label *model.Label) (string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var id, fileName string
	err := r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		opts := options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After)

		var c counter
		if err := r.counters.FindOneAndUpdate(sessCtx,
			bson.M{"_id": label.TypeID},
			bson.M{"$inc": bson.M{"seq": 1}},
			opts,
		).Decode(&c); err != nil {
			return fmt.Errorf("failed to advance label counter: %w", err)
		}

		doc := *label
		doc.ID = uuid.NewString()
		doc.FileName = LabelFileName(label.TypeID, c.Seq, label.OriginalFileName)
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		}

		if _, err := r.labels.InsertOne(sessCtx, doc); err != nil {
			return fmt.Errorf("failed to insert label: %w", err)
		}

		id, fileName = doc.ID, doc.FileName
		return nil
	})
	if err != nil {
		return "", err
	}

	label.ID = id
	label.FileName = fileName
	return id, nil
}

type MemoryLabelRepository struct {
	mu       sync.Mutex
	labels   map[string]*model.Label
	counters map[string]int64
}

func NewMemoryLabelRepository() *MemoryLabelRepository {
	return &MemoryLabelRepository{
		labels:   make(map[string]*model.Label),
		counters: make(map[string]int64),
	}
}

func (r *MemoryLabelRepository) Create(ctx context.Context, label *model.Label) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[label.TypeID]++
	label.ID = uuid.NewString()
	label.FileName = LabelFileName(label.TypeID, r.counters[label.TypeID], label.OriginalFileName)
	if label.CreatedAt.IsZero() {
		label.CreatedAt = time.Now().UTC()
	}

	stored := *label
	r.labels[label.ID] = &stored
	return label.ID, nil
}

func (r *MemoryLabelRepository) Get(id string) (*model.Label, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.labels[id]
	if !ok {
		return nil, false
	}
	cp := *l
	return &cp, true
}

func (r *MemoryLabelRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.labels)
}
