// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown.
//
// The MongoDB fields are nil when no mongo_uri is configured; the app then
// runs without a call log. The backend client is built in Startup because
// its transport depends on the call log store.
type DBDeps struct {
	// MongoDB client and database (optional)
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// CallLog records outbound backend calls (nil when disabled)
	CallLog *calllogstore.Store
}
