package database

import (
	"context"
	"errors"
	"log"
	"time"

	"traceaq/config"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// PostgresDB is the global Postgres handle, set when DATABASE_DRIVER=postgres.
var PostgresDB *sqlx.DB

// InitDB connects the configured backend.
func InitDB() {
	if config.AppConfig.DatabaseDriver == DriverPostgres {
		InitPostgres()
		return
	}
	InitMongo()
}

// InitMongo initializes the MongoDB connection.
func InitMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping MongoDB: %v", err)
	}
	MongoClient = client
	log.Println("Connected to MongoDB successfully!")
}

// InitPostgres opens the Postgres pool through lib/pq.
func InitPostgres() {
	db, err := sqlx.Open("postgres", config.AppConfig.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to open Postgres: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping Postgres: %v", err)
	}
	PostgresDB = db
	log.Println("Connected to Postgres successfully!")
}

// MongoDatabase returns the application database on the global client.
func MongoDatabase() *mongo.Database {
	return MongoClient.Database(config.AppConfig.DatabaseName)
}

// Close releases whichever backend is open.
func Close(ctx context.Context) {
	if MongoClient != nil {
		_ = MongoClient.Disconnect(ctx)
	}
	if PostgresDB != nil {
		_ = PostgresDB.Close()
	}
}

// Ping checks the active backend. Used by the health monitor.
func Ping(ctx context.Context) error {
	switch {
	case PostgresDB != nil:
		return PostgresDB.PingContext(ctx)
	case MongoClient != nil:
		return MongoClient.Ping(ctx, nil)
	}
	return errors.New("no database connection")
}

// IsDuplicate reports a unique constraint violation from either backend.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// NewContext derives a bounded context for a single query.
func NewContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}
