package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/artci/feedback-api/internal/repository/models"
)

const (
	feedbackCollection = "feedbacks"
	nperfCollection    = "nperf_results"
	countersCollection = "counters"
)

type feedbackDocument struct {
	ID          int64      `bson:"_id"`
	Type        string     `bson:"type"`
	Provider    string     `bson:"provider"`
	Ratings     any        `bson:"ratings"`
	NPerfTestID string     `bson:"nperf_test_id,omitempty"`
	Sector      string     `bson:"sector,omitempty"`
	CreatedAt   *time.Time `bson:"created_at,omitempty"`
}

// storedFeedback mirrors feedbackDocument for reads. Every field stays raw:
// ratings keep their key order, and a field of the wrong BSON type reads as
// empty instead of failing the whole cursor.
type storedFeedback struct {
	ID          bson.RawValue `bson:"_id"`
	Type        bson.RawValue `bson:"type"`
	Provider    bson.RawValue `bson:"provider"`
	Ratings     bson.RawValue `bson:"ratings"`
	NPerfTestID bson.RawValue `bson:"nperf_test_id"`
	Sector      bson.RawValue `bson:"sector"`
	CreatedAt   bson.RawValue `bson:"created_at"`
}

type nperfDocument struct {
	ID           int64      `bson:"_id"`
	NPerfTestID  string     `bson:"nperf_test_id"`
	ExternalUUID string     `bson:"external_uuid,omitempty"`
	Sector       string     `bson:"sector"`
	CreatedAt    *time.Time `bson:"created_at,omitempty"`
}

// MongoFeedbackRepository stores feedback in MongoDB. Integer ids come from
// a counters collection so records look the same as in the SQL stores.
type MongoFeedbackRepository struct {
	feedback *mongo.Collection
	nperf    *mongo.Collection
	counters *mongo.Collection
}

func NewMongoFeedbackRepository(db *mongo.Database) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{
		feedback: db.Collection(feedbackCollection),
		nperf:    db.Collection(nperfCollection),
		counters: db.Collection(countersCollection),
	}
}

func (r *MongoFeedbackRepository) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (r *MongoFeedbackRepository) CreateFeedback(ctx context.Context, rec models.FeedbackRecord) (models.FeedbackRecord, error) {
	ratings, err := ratingsToBSON(rec.Ratings)
	if err != nil {
		return models.FeedbackRecord{}, err
	}

	id, err := r.nextID(ctx, feedbackCollection)
	if err != nil {
		return models.FeedbackRecord{}, err
	}

	doc := feedbackDocument{
		ID:          id,
		Type:        rec.Type,
		Provider:    rec.Provider,
		Ratings:     ratings,
		NPerfTestID: rec.NPerfTestID,
		Sector:      rec.Sector,
		CreatedAt:   timePtr(rec.CreatedAt),
	}
	if _, err := r.feedback.InsertOne(ctx, doc); err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("insert feedback: %w", err)
	}

	rec.ID = id
	return rec, nil
}

func (r *MongoFeedbackRepository) ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.feedback.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find ListFeedback: %w", err)
	}
	return decodeFeedback(ctx, cur, "ListFeedback")
}

func (r *MongoFeedbackRepository) GetFeedback(ctx context.Context, id int64) (models.FeedbackRecord, error) {
	var doc storedFeedback
	err := r.feedback.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.FeedbackRecord{}, fmt.Errorf("feedback %d: %w", id, ErrNotFound)
		}
		return models.FeedbackRecord{}, fmt.Errorf("find GetFeedback: %w", err)
	}
	return doc.record(), nil
}

func (r *MongoFeedbackRepository) AllFeedback(ctx context.Context) ([]models.FeedbackRecord, error) {
	cur, err := r.feedback.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find AllFeedback: %w", err)
	}
	return decodeFeedback(ctx, cur, "AllFeedback")
}

func (r *MongoFeedbackRepository) CreateNPerfResult(ctx context.Context, res models.NPerfResult) (models.NPerfResult, error) {
	id, err := r.nextID(ctx, nperfCollection)
	if err != nil {
		return models.NPerfResult{}, err
	}

	doc := nperfDocument{
		ID:           id,
		NPerfTestID:  res.NPerfTestID,
		ExternalUUID: res.ExternalUUID,
		Sector:       res.Sector,
		CreatedAt:    timePtr(res.CreatedAt),
	}
	if _, err := r.nperf.InsertOne(ctx, doc); err != nil {
		return models.NPerfResult{}, fmt.Errorf("insert nperf result: %w", err)
	}

	res.ID = id
	return res, nil
}

func decodeFeedback(ctx context.Context, cur *mongo.Cursor, op string) ([]models.FeedbackRecord, error) {
	defer cur.Close(ctx)

	results := []models.FeedbackRecord{}
	for cur.Next(ctx) {
		var doc storedFeedback
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", op, err)
		}
		results = append(results, doc.record())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}

// record never fails. Unreadable ratings become nil, which analytics treats
// as a record without criteria.
func (d storedFeedback) record() models.FeedbackRecord {
	id, _ := d.ID.AsInt64OK()
	rec := models.FeedbackRecord{
		ID:          id,
		Type:        rawString(d.Type),
		Provider:    rawString(d.Provider),
		NPerfTestID: rawString(d.NPerfTestID),
		Sector:      rawString(d.Sector),
	}
	if ratings, err := ratingsFromBSON(d.Ratings); err == nil {
		rec.Ratings = ratings
	}
	if d.CreatedAt.Type == bson.TypeDateTime {
		if ts, ok := d.CreatedAt.TimeOK(); ok {
			rec.CreatedAt = ts.UTC()
		}
	}
	return rec
}

func rawString(v bson.RawValue) string {
	s, _ := v.StringValueOK()
	return s
}

// ratingsToBSON converts a JSON ratings payload into ordered BSON values.
func ratingsToBSON(raw json.RawMessage) (any, error) {
	wrapped := make([]byte, 0, len(raw)+12)
	wrapped = append(wrapped, `{"ratings":`...)
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, '}')

	var doc bson.D
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return nil, fmt.Errorf("convert ratings to bson: %w", err)
	}
	if len(doc) != 1 {
		return nil, fmt.Errorf("convert ratings to bson: unexpected document shape")
	}
	return doc[0].Value, nil
}

// ratingsFromBSON renders a stored ratings value back to JSON. A missing
// value yields nil.
func ratingsFromBSON(v bson.RawValue) (json.RawMessage, error) {
	if v.Type == 0 {
		return nil, nil
	}
	out, err := bson.MarshalExtJSON(bson.D{{Key: "ratings", Value: v}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert ratings to json: %w", err)
	}
	var wrapper struct {
		Ratings json.RawMessage `json:"ratings"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil {
		return nil, fmt.Errorf("convert ratings to json: %w", err)
	}
	return wrapper.Ratings, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
