package indexes_test

import (
	"context"
	"testing"

	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/indexes"
	"github.com/dalemusser/stratastock/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestKeySig(t *testing.T) {
	got := indexes.KeySig(bson.D{{Key: "path", Value: 1}, {Key: "started_at", Value: -1}})
	if got != "path:1, started_at:-1" {
		t.Errorf("KeySig() = %q", got)
	}
}

func TestDesired_BackendCalls(t *testing.T) {
	models := indexes.Desired()[calllogstore.CollectionName]
	if len(models) == 0 {
		t.Fatal("no indexes for backend calls")
	}

	var haveUniqueRequestID bool
	for _, m := range models {
		if indexes.KeySig(m.Keys.(bson.D)) == "request_id:1" && m.Options.Unique != nil && *m.Options.Unique {
			haveUniqueRequestID = true
		}
	}
	if !haveUniqueRequestID {
		t.Error("request_id should carry a unique index")
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
			t.Fatalf("EnsureAll() run %d error = %v", i+1, err)
		}
	}

	cur, err := db.Collection(calllogstore.CollectionName).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var idx []bson.M
	if err := cur.All(ctx, &idx); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	// _id plus the desired set.
	if want := len(indexes.Desired()[calllogstore.CollectionName]) + 1; len(idx) != want {
		t.Errorf("index count = %d, want %d", len(idx), want)
	}
}
