// internal/app/store/calllog/calllogstore.go
package calllogstore

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection that holds backend call records.
const CollectionName = "backend_calls"

// Entry records one outbound call to the backend.
type Entry struct {
	ID primitive.ObjectID `bson:"_id"`

	// Call identification
	RequestID  string `bson:"request_id"`            // X-Request-ID sent to the backend
	OriginPath string `bson:"origin_path,omitempty"` // app page that made the call

	// HTTP request metadata
	Method string `bson:"method"`
	Host   string `bson:"host"`
	Path   string `bson:"path"`
	Query  string `bson:"query,omitempty"`

	// Request body handling
	RequestBodySize    int64  `bson:"request_body_size"`
	RequestBodyHash    string `bson:"request_body_hash,omitempty"`    // SHA256 first 8 chars
	RequestBodyPreview string `bson:"request_body_preview,omitempty"` // First N chars

	// Response metadata
	StatusCode   int    `bson:"status_code"` // 0 when no response arrived
	ResponseSize int64  `bson:"response_size"`
	ErrorKind    string `bson:"error_kind,omitempty"`    // "network", "http", "rejected", "not_found"
	ErrorMessage string `bson:"error_message,omitempty"` // transport error text

	// Timing
	DurationMs  float64   `bson:"duration_ms"`
	StartedAt   time.Time `bson:"started_at"`
	CompletedAt time.Time `bson:"completed_at"`
}

// Failed reports whether the call failed at transport level or with a
// non-2xx status.
func (e Entry) Failed() bool {
	return e.StatusCode == 0 || e.StatusCode >= 300
}

// Store provides call log persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new call log store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a new entry.
func (s *Store) Create(ctx context.Context, entry Entry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// GetByID retrieves an entry by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*Entry, error) {
	var entry Entry
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListFilter specifies criteria for listing entries.
type ListFilter struct {
	StartTime *time.Time
	EndTime   *time.Time

	Method     string
	PathPrefix string
	ErrorKind  string
	FailedOnly bool

	Search string // matches request_id or path
}

// ListResult contains a page of entries with pagination info.
type ListResult struct {
	Entries    []Entry
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

// List returns entries matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter, page, pageSize int) (ListResult, error) {
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	query := BuildQuery(filter)

	total, err := s.c.CountDocuments(ctx, query)
	if err != nil {
		return ListResult{}, err
	}

	totalPages := paging.TotalPages(int(total), pageSize)
	page = paging.Clamp(page, totalPages)

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return ListResult{}, err
	}
	defer cur.Close(ctx)

	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Entries:    entries,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// BuildQuery constructs a MongoDB query from ListFilter.
func BuildQuery(filter ListFilter) bson.M {
	query := bson.M{}

	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["started_at"] = timeQuery
	}

	if filter.Method != "" {
		query["method"] = filter.Method
	}
	if filter.PathPrefix != "" {
		query["path"] = bson.M{"$regex": "^" + regexp.QuoteMeta(filter.PathPrefix)}
	}
	if filter.ErrorKind != "" {
		query["error_kind"] = filter.ErrorKind
	}
	if filter.FailedOnly {
		query["$or"] = []bson.M{
			{"status_code": 0},
			{"status_code": bson.M{"$gte": 300}},
		}
	}

	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		search := []bson.M{
			{"request_id": bson.M{"$regex": pattern, "$options": "i"}},
			{"path": bson.M{"$regex": pattern, "$options": "i"}},
		}
		if or, ok := query["$or"]; ok {
			delete(query, "$or")
			query["$and"] = []bson.M{{"$or": or}, {"$or": search}}
		} else {
			query["$or"] = search
		}
	}

	return query
}

// DeleteOlderThan deletes entries started before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{
		"started_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// CountByStatus returns counts grouped by status class. Calls that got
// no response are counted under "failed".
func (s *Store) CountByStatus(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	pipeline := []bson.M{
		{
			"$match": bson.M{
				"started_at": bson.M{"$gte": start, "$lte": end},
			},
		},
		{
			"$group": bson.M{
				"_id": bson.M{
					"$switch": bson.M{
						"branches": []bson.M{
							{"case": bson.M{"$eq": []any{"$status_code", 0}}, "then": "failed"},
							{"case": bson.M{"$lt": []any{"$status_code", 300}}, "then": "2xx"},
							{"case": bson.M{"$lt": []any{"$status_code", 400}}, "then": "3xx"},
							{"case": bson.M{"$lt": []any{"$status_code", 500}}, "then": "4xx"},
						},
						"default": "5xx",
					},
				},
				"count": bson.M{"$sum": 1},
			},
		},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make(map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		result[doc.ID] = doc.Count
	}

	return result, nil
}

// AverageDuration returns the mean call duration in milliseconds.
func (s *Store) AverageDuration(ctx context.Context, start, end time.Time) (float64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"started_at": bson.M{"$gte": start, "$lte": end}}},
		{"$group": bson.M{"_id": nil, "avg": bson.M{"$avg": "$duration_ms"}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var doc struct {
			Avg float64 `bson:"avg"`
		}
		if err := cur.Decode(&doc); err != nil {
			return 0, err
		}
		return doc.Avg, nil
	}
	return 0, nil
}
